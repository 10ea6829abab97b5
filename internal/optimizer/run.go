package optimizer

import (
	"context"
	"fmt"
	"math/rand"

	"ration/internal/domain"
)

// Result is one completed optimizer run: the final, evaluated population
// sorted into Pareto fronts (rank 0 first, crowding-distance order within a
// front), ready for C8 (SolutionSelector).
type Result struct {
	Population []Individual
	Bounds     Bounds
	Generation int
}

// Run executes the full NSGA-II search (§4.7) for one animal against one
// feed catalog. feeds must already be derived (C3); req is the animal's
// requirements (C2).
func Run(ctx context.Context, feeds []domain.EnrichedFeed, req domain.Requirements, cfg Config) (Result, error) {
	if len(feeds) == 0 {
		return Result{}, fmt.Errorf("%w: empty feed catalog", domain.ErrInvalidInput)
	}

	b := ComputeBounds(feeds, req)
	rng := rand.New(rand.NewSource(cfg.Seed))

	pop := make([]Individual, cfg.PopulationSize)
	for i := range pop {
		pop[i] = Individual{X: sampleIndividual(rng, b)}
	}

	epsilon := domain.EpsilonForGeneration(0, cfg.Generations)
	evaluated, err := evaluatePopulation(ctx, pop, b, feeds, req, epsilon, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrEvaluationFailed, err)
	}
	pop = evaluated
	assignRanksAndCrowding(pop)

	for gen := 1; gen <= cfg.Generations; gen++ {
		offspringX := makeOffspring(rng, pop, b, cfg)
		offspring := make([]Individual, len(offspringX))
		for i, x := range offspringX {
			offspring[i] = Individual{X: x}
		}

		epsilon = domain.EpsilonForGeneration(gen, cfg.Generations)
		evaluatedOffspring, err := evaluatePopulation(ctx, offspring, b, feeds, req, epsilon, cfg)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", domain.ErrEvaluationFailed, err)
		}

		combined := make([]Individual, 0, len(pop)+len(evaluatedOffspring))
		combined = append(combined, pop...)
		combined = append(combined, evaluatedOffspring...)

		pop = selectNextGeneration(combined, cfg.PopulationSize)
	}

	fronts := fastNonDominatedSort(pop)
	for _, front := range fronts {
		crowdingDistance(pop, front)
	}
	sortPopulationByRankAndCrowding(pop)

	return Result{Population: pop, Bounds: b, Generation: cfg.Generations}, nil
}

func assignRanksAndCrowding(pop []Individual) {
	fronts := fastNonDominatedSort(pop)
	for _, front := range fronts {
		crowdingDistance(pop, front)
	}
}

// makeOffspring produces len(pop) children via tournament selection, SBX
// crossover, polynomial mutation, and simplex+bounds repair (§4.7).
func makeOffspring(rng *rand.Rand, pop []Individual, b Bounds, cfg Config) [][]float64 {
	children := make([][]float64, 0, len(pop))
	for len(children) < len(pop) {
		p1 := tournamentSelect(rng, pop)
		p2 := tournamentSelect(rng, pop)

		c1, c2 := sbxCrossover(rng, p1.X, p2.X, cfg.CrossoverProb, cfg.CrossoverEta, b)
		polynomialMutation(rng, c1, cfg.MutationProb, cfg.MutationEta, b)
		polynomialMutation(rng, c2, cfg.MutationProb, cfg.MutationEta, b)

		children = append(children, repair(c1, b), repair(c2, b))
	}
	return children[:len(pop)]
}

func sortPopulationByRankAndCrowding(pop []Individual) {
	for i := 1; i < len(pop); i++ {
		for j := i; j > 0 && crowdedBetter(pop[j], pop[j-1]); j-- {
			pop[j], pop[j-1] = pop[j-1], pop[j]
		}
	}
}
