package optimizer

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ration/internal/domain"
)

// penaltyObjective is the f1/f2/f3 value assigned to a candidate whose
// evaluation fails outright (shape mismatch, non-finite supply, etc.), so one
// bad candidate never aborts the generation (§7, ErrEvaluationFailed).
const penaltyObjective = 1e9

const objectiveEpsilon = 1e-3

// evaluateOne computes one individual's objectives, constraint violations,
// and severity classification (§4.7's three objectives; §4.5/§4.6 for
// constraints/severity). meanCostPerDMKg and targetDMI are diet-level
// normalizers shared across the whole population.
func evaluateOne(x []float64, b Bounds, feeds []domain.EnrichedFeed, req domain.Requirements, epsilon, meanCostPerDMKg float64) Individual {
	ind := Individual{X: x, Objectives: []float64{penaltyObjective, penaltyObjective, penaltyObjective}}

	n := b.NIngredients()
	p := x[:n]
	t := x[n]

	q := make([]float64, n)
	for i, pi := range p {
		q[i] = pi * t
	}

	supply, err := domain.EvaluateSupply(q, feeds, req)
	if err != nil {
		ind.Feasible = false
		ind.Violation = penaltyObjective
		return ind
	}

	targetEnergy := req.NELTotal
	if req.EnergyBasis == "ME" {
		targetEnergy = req.METotal
	}
	targetMP := req.MPLactation + req.MPGrowth + req.MPPregnancy + supply.MPMaintenance

	totalCost := 0.0
	for i, qi := range q {
		totalCost += qi * feeds[i].CostPerDMKg
	}
	costScale := math.Max(meanCostPerDMKg*req.TargetDMI, objectiveEpsilon)
	f1 := (totalCost / costScale) * 0.1

	f2 := math.Abs(req.TargetDMI-supply.DMI) / math.Max(req.TargetDMI, objectiveEpsilon)

	devEnergy := math.Abs(supply.Energy-targetEnergy) / math.Max(targetEnergy, objectiveEpsilon)
	devMP := math.Abs(supply.MP-targetMP) / math.Max(targetMP, objectiveEpsilon)
	f3 := devEnergy + devMP

	constraints := domain.BuildConstraints(supply, req, feeds, q, epsilon)
	violation := 0.0
	for _, c := range constraints {
		violation += c.NormalizedViolation()
	}

	severity := domain.ClassifySeverities(constraints, supply, req)

	ind.Objectives = []float64{f1, f2, f3}
	ind.Feasible = violation == 0
	ind.Violation = violation
	ind.Supply = supply
	ind.Severity = severity
	return ind
}

// evaluatePopulation scores every individual concurrently, bounded by
// cfg.Workers (GOMAXPROCS if zero), via a small errgroup worker pool (§5
// concurrency model: one bounded pool per generation, no goroutine-per-candidate
// fan-out).
func evaluatePopulation(ctx context.Context, pop []Individual, b Bounds, feeds []domain.EnrichedFeed, req domain.Requirements, epsilon float64, cfg Config) ([]Individual, error) {
	meanCost := meanCostPerDMKg(feeds)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	out := make([]Individual, len(pop))
	for i := range pop {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			out[i] = evaluateOne(pop[i].X, b, feeds, req, epsilon, meanCost)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func meanCostPerDMKg(feeds []domain.EnrichedFeed) float64 {
	if len(feeds) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range feeds {
		sum += f.CostPerDMKg
	}
	return sum / float64(len(feeds))
}
