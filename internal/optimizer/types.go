// Package optimizer implements C7: an NSGA-II multi-objective search over
// the feed-proportions simplex plus a total-intake scalar, repairing and
// scoring candidates against the domain package's supply/constraint/severity
// evaluators (§4.7).
package optimizer

import "ration/internal/domain"

// Bounds holds per-decision-variable lower/upper limits. Len(Lo)==Len(Hi)==
// n+1: n feed proportions followed by the total-DMI scalar (§4.7).
type Bounds struct {
	Lo []float64
	Hi []float64
}

// NIngredients returns the number of feed proportions (excluding the
// trailing DMI scalar).
func (b Bounds) NIngredients() int {
	return len(b.Lo) - 1
}

// Individual is one candidate in the population: a decision vector plus its
// evaluated objectives and constraint state.
type Individual struct {
	X []float64 // len n+1: proportions then total DMI

	Objectives []float64 // 3 objectives, all minimize (§4.7)
	Feasible   bool
	Violation  float64 // sum of normalized constraint violations

	Rank     int
	Crowding float64

	Supply   domain.SupplyResult
	Severity domain.SeverityResult
}

// Proportions returns X without the trailing DMI scalar.
func (ind Individual) Proportions() []float64 {
	n := len(ind.X) - 1
	return ind.X[:n]
}

// TotalDMI returns the trailing decision variable.
func (ind Individual) TotalDMI() float64 {
	return ind.X[len(ind.X)-1]
}

// Quantities returns per-feed kg/d (proportions * total DMI).
func (ind Individual) Quantities() []float64 {
	p := ind.Proportions()
	t := ind.TotalDMI()
	q := make([]float64, len(p))
	for i, pi := range p {
		q[i] = pi * t
	}
	return q
}

// Config bundles the optimizer's run parameters (§4.7, §4.5 defaults).
type Config struct {
	PopulationSize int
	Generations    int
	CrossoverProb  float64
	CrossoverEta   float64 // SBX distribution index
	MutationProb   float64 // per-gene; defaults to 1/n
	MutationEta    float64 // polynomial-mutation distribution index
	Workers        int     // bounded evaluation concurrency; 0 = GOMAXPROCS
	Seed           int64
}

// DefaultConfig returns generic NSGA-II settings for a run over nVars
// decision variables (n feeds + 1 DMI scalar), with per-gene mutation
// probability 1/nVars. engine.DefaultConfig holds the engine's own defaults
// and does not use these.
func DefaultConfig(nVars int) Config {
	return Config{
		PopulationSize: 80,
		Generations:    120,
		CrossoverProb:  0.9,
		CrossoverEta:   15,
		MutationProb:   1.0 / float64(nVars),
		MutationEta:    20,
		Workers:        0,
		Seed:           1,
	}
}
