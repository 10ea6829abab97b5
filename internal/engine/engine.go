// Package engine wires C2 through C9 into the single entry point external
// callers use: AnimalInputs + a feed catalog in, a DietResult out (§3, §6).
package engine

import (
	"context"
	"fmt"

	"ration/internal/domain"
	"ration/internal/optimizer"
	"ration/internal/postanalysis"
	"ration/internal/selector"
)

// Config is the external, JSON-shaped tuning surface for one run (§6). Zero
// fields are filled from DefaultConfig, which mirrors the source's own
// defaults exactly. InitialEpsilon and FinalEpsilon are filled but not passed
// to the optimizer, whose epsilon schedule always runs from
// domain.InitialEpsilon to domain.FinalEpsilon.
type Config struct {
	PopulationSize int     `json:"pop_size"`
	Generations    int     `json:"generations"`
	InitialEpsilon float64 `json:"initial_epsilon"`
	FinalEpsilon   float64 `json:"final_epsilon"`
	CrossoverProb  float64 `json:"crossover_prob"`
	CrossoverEta   float64 `json:"crossover_eta"`
	MutationProb   float64 `json:"mutation_prob"`
	MutationEta    float64 `json:"mutation_eta"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"n_workers"`
}

// DefaultConfig returns the source's own tuning defaults (§6, §9 Design notes).
func DefaultConfig() Config {
	return Config{
		PopulationSize: 100,
		Generations:    200,
		InitialEpsilon: domain.InitialEpsilon,
		FinalEpsilon:   domain.FinalEpsilon,
		CrossoverProb:  0.9,
		CrossoverEta:   5,
		MutationProb:   0.3,
		MutationEta:    5,
		Seed:           42,
		Workers:        7,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PopulationSize <= 0 {
		c.PopulationSize = d.PopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = d.Generations
	}
	if c.InitialEpsilon <= 0 {
		c.InitialEpsilon = d.InitialEpsilon
	}
	if c.FinalEpsilon <= 0 {
		c.FinalEpsilon = d.FinalEpsilon
	}
	if c.CrossoverProb <= 0 {
		c.CrossoverProb = d.CrossoverProb
	}
	if c.CrossoverEta <= 0 {
		c.CrossoverEta = d.CrossoverEta
	}
	if c.MutationProb <= 0 {
		c.MutationProb = d.MutationProb
	}
	if c.MutationEta <= 0 {
		c.MutationEta = d.MutationEta
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

func (c Config) toOptimizerConfig() optimizer.Config {
	return optimizer.Config{
		PopulationSize: c.PopulationSize,
		Generations:    c.Generations,
		CrossoverProb:  c.CrossoverProb,
		CrossoverEta:   c.CrossoverEta,
		MutationProb:   c.MutationProb,
		MutationEta:    c.MutationEta,
		Workers:        c.Workers,
		Seed:           c.Seed,
	}
}

// Run is the single entry point: AnimalInputs plus a feed catalog and mode
// in, a fully-populated DietResult out. It never panics; every error
// returned is one of the domain package's sentinel kinds (§7).
func Run(ctx context.Context, animal domain.AnimalInputs, catalog []domain.FeedRow, mode domain.Mode, cfg Config) (domain.DietResult, error) {
	animal = animal.Normalize()
	cfg = cfg.withDefaults()

	req, err := domain.CalculateRequirements(animal)
	if err != nil {
		return domain.DietResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// Baby Calf short-circuit: milk schedule only, no ration optimization (§3, §4.2, S5).
	if req.IsBabyCalf() {
		return domain.DietResult{
			Status:                domain.StatusOptimal,
			MilkScheduleMorningLD: req.MilkMorningLD,
			MilkScheduleEveningLD: req.MilkEveningLD,
		}, nil
	}

	feeds := domain.DeriveFeeds(catalog)
	if len(feeds) == 0 {
		return domain.DietResult{}, fmt.Errorf("%w: empty feed catalog", domain.ErrInvalidInput)
	}

	var quantities []float64
	if mode == domain.ModeEvaluate {
		quantities = fixedDietQuantities(catalog, feeds)
	} else {
		result, err := optimizer.Run(ctx, feeds, req, cfg.toOptimizerConfig())
		if err != nil {
			return domain.DietResult{}, err
		}
		picked := selector.Select(result.Population)
		quantities = picked.Solution.Quantities()
	}

	return finalize(quantities, feeds, req, animal, mode)
}

// fixedDietQuantities converts Evaluate mode's as-fed fixed amounts into the
// DM-kg quantities C4 expects (§6: "each feed also carries quantity_as_fed").
func fixedDietQuantities(catalog []domain.FeedRow, feeds []domain.EnrichedFeed) []float64 {
	q := make([]float64, len(feeds))
	for i := range feeds {
		if i >= len(catalog) {
			break
		}
		q[i] = catalog[i].QuantityAsFedKg * (feeds[i].DM / 100)
	}
	return q
}

// finalize cleans the chosen (or fixed) diet, runs C4/C5/C6 once against the
// cleaned vector, and builds the full DietResult (§4.9).
func finalize(quantities []float64, feeds []domain.EnrichedFeed, req domain.Requirements, animal domain.AnimalInputs, mode domain.Mode) (domain.DietResult, error) {
	cleaned, cleaningLog := postanalysis.CleanSolution(quantities, feeds)

	supply, err := domain.EvaluateSupply(cleaned, feeds, req)
	if err != nil {
		return domain.DietResult{
			Status:   domain.StatusInfeasible,
			Warnings: []string{"no usable diet remained after cleanup"},
			Messages: []domain.Message{{Level: "error", Code: "RFT-ANL-001", Where: "diet_supply", Summary: err.Error()}},
		}, nil
	}

	constraints := domain.BuildConstraints(supply, req, feeds, cleaned, domain.FinalEpsilon)
	severity := domain.ClassifySeverities(constraints, supply, req)

	breakdown, totalCost := postanalysis.BuildBreakdown(cleaned, feeds)
	comparisons := postanalysis.NutrientComparisons(supply, req, severity)
	water := postanalysis.WaterIntakeLD(cleaned, feeds, req.State, animal.EnvTempC)
	methane := postanalysis.Methane(cleaned, feeds, req, animal.MilkFatPct, animal.MilkTrueProteinPct)
	warnings, recommendations, messages := postanalysis.Guidance(constraints, severity, cleaningLog)

	result := domain.DietResult{
		Status:               severity.Status,
		TotalCostAsFed:       totalCost,
		Breakdown:            breakdown,
		NutrientComparisons:  comparisons,
		Methane:              methane,
		WaterIntakeLD:        water,
		ConstraintSeverities: severity.ByConstraint,
		Warnings:             warnings,
		Recommendations:      recommendations,
		Messages:             messages,
	}

	if mode == domain.ModeEvaluate {
		limiting, milkByEnergy, milkByProtein, costPerKgMilk := postanalysis.EvaluateExtras(supply, req, totalCost)
		result.LimitingNutrient = limiting
		result.MilkSupportedByEnergyL = milkByEnergy
		result.MilkSupportedByProteinL = milkByProtein
		result.CostPerKgMilk = costPerKgMilk
	}

	for _, conflict := range severity.Conflicts {
		result.Warnings = append(result.Warnings, conflict)
	}

	return result, nil
}
