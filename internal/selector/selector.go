// Package selector implements C8: picking one diet out of the optimizer's
// final population (§4.8).
package selector

import (
	"ration/internal/domain"
	"ration/internal/optimizer"
)

// Result is C8's output: the chosen diet plus the status the solution was
// selected under. INFEASIBLE is still returned, never an error (§7).
type Result struct {
	Solution domain.Solution
	Severity domain.SeverityResult
	Status   domain.Status
}

// bandOrder is the preference order spec.md §4.8 walks: pick the lowest-cost
// member of the best non-empty band.
var bandOrder = []domain.Status{domain.StatusOptimal, domain.StatusGood, domain.StatusMarginal}

// Select groups the final population by its overall severity status and
// returns the lowest-cost member of the best non-empty group. If every
// individual is INFEASIBLE, it falls back to the lowest combined
// intake/energy/protein deviation (objectives[1]+objectives[2]) and labels
// the result INFEASIBLE for C9 to diagnose.
func Select(population []optimizer.Individual) Result {
	if len(population) == 0 {
		return Result{Status: domain.StatusInfeasible}
	}
	for _, status := range bandOrder {
		best, ok := cheapestInBand(population, status)
		if ok {
			return toResult(best, status)
		}
	}
	return toResult(leastDeviant(population), domain.StatusInfeasible)
}

func cheapestInBand(population []optimizer.Individual, status domain.Status) (optimizer.Individual, bool) {
	var best optimizer.Individual
	found := false
	for _, ind := range population {
		if ind.Severity.Status != status {
			continue
		}
		if !found || ind.Objectives[0] < best.Objectives[0] {
			best = ind
			found = true
		}
	}
	return best, found
}

func leastDeviant(population []optimizer.Individual) optimizer.Individual {
	var best optimizer.Individual
	found := false
	for _, ind := range population {
		dev := ind.Objectives[1] + ind.Objectives[2]
		if !found || dev < best.Objectives[1]+best.Objectives[2] {
			best = ind
			found = true
		}
	}
	return best
}

func toResult(ind optimizer.Individual, status domain.Status) Result {
	return Result{
		Solution: domain.Solution{Proportions: ind.Proportions(), TotalDMI: ind.TotalDMI()},
		Severity: ind.Severity,
		Status:   status,
	}
}
