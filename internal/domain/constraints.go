package domain

import "math"

// Decision-space and tolerance-offset defaults (§4.5, §4.7).
const (
	DMILo        = 0.90
	DMIHi        = 1.05
	EnergyOffset = 1.0  // Mcal/d
	MPOffset     = 0.10 // kg/d

	InitialEpsilon = 3.0
	FinalEpsilon   = 0.05

	minScale = 1e-3
)

// Constraint is one evaluated inequality `G <= 0` (§4.5, §4.7 sign
// convention), carrying the absolute scale used to normalize it for the
// optimizer's penalty aggregation, and the raw actual/target pair
// SeverityClassifier (C6) needs to compute a percent deviation independent
// of G's epsilon-loosened form.
type Constraint struct {
	Name   string
	G      float64
	Scale  float64
	Actual float64
	Target float64
}

// EpsilonForGeneration linearly decays the slack term from InitialEpsilon at
// generation 0 to FinalEpsilon at the final generation (§4.5). Constraints
// start loose so early, mostly-infeasible populations can still be ranked
// and tighten as the search converges.
func EpsilonForGeneration(gen, maxGen int) float64 {
	if maxGen <= 0 {
		return FinalEpsilon
	}
	frac := float64(gen) / float64(maxGen)
	if frac > 1 {
		frac = 1
	}
	return InitialEpsilon + (FinalEpsilon-InitialEpsilon)*frac
}

func scaleOf(v float64) float64 {
	v = math.Abs(v)
	if v < minScale {
		return minScale
	}
	return v
}

// BuildConstraints produces the always-on constraint list plus any
// conditional constraints whose category mask has at least one true entry
// in feeds (§4.5). quantities is aligned by index with feeds.
func BuildConstraints(supply SupplyResult, req Requirements, feeds []EnrichedFeed, quantities []float64, epsilon float64) []Constraint {
	thr := Thresholds[req.State]
	targetDMI := req.TargetDMI

	var targetEnergy float64
	if req.EnergyBasis == "ME" {
		targetEnergy = req.METotal
	} else {
		targetEnergy = req.NELTotal
	}
	targetMP := req.MPLactation + req.MPGrowth + req.MPPregnancy + supply.MPMaintenance

	cs := make([]Constraint, 0, 16)

	add := func(name string, g, scaleBasis, actual, target float64) {
		cs = append(cs, Constraint{Name: name, G: g, Scale: scaleOf(scaleBasis), Actual: actual, Target: target})
	}

	add("DMI_max", supply.DMI-(DMIHi+epsilon)*targetDMI, targetDMI, supply.DMI, DMIHi*targetDMI)
	add("DMI_min", (DMILo-epsilon)*targetDMI-supply.DMI, targetDMI, supply.DMI, DMILo*targetDMI)

	add("Energy_max", supply.Energy-(1.20+epsilon)*(targetEnergy+EnergyOffset), targetEnergy, supply.Energy, 1.20*targetEnergy)
	add("Energy_min", 0.95*targetEnergy-epsilon-supply.Energy, targetEnergy, supply.Energy, targetEnergy)

	add("MP_max", supply.MP-(1.20+epsilon)*(targetMP+MPOffset), targetMP, supply.MP, 1.20*targetMP)
	add("MP_min", 0.95*targetMP-epsilon-supply.MP, targetMP, supply.MP, targetMP)

	add("Ca_min", req.CaReqKg-supply.Ca, req.CaReqKg, supply.Ca, req.CaReqKg)
	add("P_min", req.PReqKg-supply.P, req.PReqKg, supply.P, req.PReqKg)

	add("NDF_max", supply.NDF-req.NDFMax, req.NDFMax, supply.NDF, req.NDFMax)
	add("NDFfor_min", req.NDFForMin-supply.NDFForage, req.NDFForMin, supply.NDFForage, req.NDFForMin)
	add("Starch_max", supply.Starch-req.StarchMax, req.StarchMax, supply.Starch, req.StarchMax)
	add("EE_max", supply.EE-req.EEMax, req.EEMax, supply.EE, req.EEMax)

	maskSum := func(pred func(EnrichedFeed) bool) (sum float64, present bool) {
		for i, f := range feeds {
			if pred(f) {
				present = true
				sum += quantities[i]
			}
		}
		return sum, present
	}

	if sum, present := maskSum(func(f EnrichedFeed) bool { return f.MaskStraw }); present {
		lim := thr.ForageStrawMax * targetDMI
		add("Straw_max", sum-lim, lim, sum, lim)
	}
	if sum, present := maskSum(func(f EnrichedFeed) bool { return f.MaskMoistForage }); present {
		lim := thr.MoistForageMin * targetDMI
		add("MoistForage_min", lim-sum, lim, sum, lim)
	}
	if sum, present := maskSum(func(f EnrichedFeed) bool { return f.MaskLQF }); present {
		lim := thr.ForageFibrousMax * targetDMI
		add("LQF_max", sum-lim, lim, sum, lim)
	}
	if sum, present := maskSum(func(f EnrichedFeed) bool { return f.MaskWetByprod }); present {
		lim := thr.ConcByprodMax * targetDMI
		add("Byprod_max", sum-lim, lim, sum, lim)
	}
	if sum, present := maskSum(func(f EnrichedFeed) bool { return f.MaskWetOther }); present {
		lim := thr.OtherWetIngrMax * targetDMI
		add("WetOther_max", sum-lim, lim, sum, lim)
	}
	if sum, present := maskSum(func(f EnrichedFeed) bool { return f.MaskConcAll }); present {
		lim := thr.ConcMax * targetDMI
		add("Conc_max", sum-lim, lim, sum, lim)
	}

	return cs
}

// Violated reports whether this constraint's G value is positive, i.e. the
// `G <= 0` inequality fails.
func (c Constraint) Violated() bool {
	return c.G > 0
}

// NormalizedViolation returns max(0, G)/Scale, the nonnegative, scale-free
// penalty contribution used by the optimizer's aggregate objective.
func (c Constraint) NormalizedViolation() float64 {
	if c.G <= 0 {
		return 0
	}
	return c.G / c.Scale
}
