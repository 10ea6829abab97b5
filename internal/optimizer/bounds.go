package optimizer

import (
	"strings"

	"ration/internal/domain"
)

// ComputeBounds builds the per-decision-variable bounds for one animal's
// feed catalog (§4.7): proportions default to [0,1], mineral-category feeds
// are additionally bounded by the state's kg/d mineral floor/ceiling
// converted to a proportion of target DMI, urea-named feeds are capped at
// the state's urea_max proportion, and the trailing DMI scalar is bounded to
// [dmi_lo, dmi_hi] * target DMI.
func ComputeBounds(feeds []domain.EnrichedFeed, req domain.Requirements) Bounds {
	n := len(feeds)
	lo := make([]float64, n+1)
	hi := make([]float64, n+1)
	for i := range hi[:n] {
		hi[i] = 1.0
	}

	trg := req.TargetDMI
	lo[n] = domain.DMILo * trg
	hi[n] = domain.DMIHi * trg

	thr := domain.Thresholds[req.State]
	mineralMinP := 0.0
	mineralMaxP := 1.0
	if trg > 0 {
		mineralMinP = thr.MineralMinKg / trg
		mineralMaxP = thr.MineralMaxKg / trg
	}

	for i, f := range feeds {
		if f.IsMineral {
			if mineralMaxP < hi[i] {
				hi[i] = mineralMaxP
			}
			if mineralMinP > lo[i] {
				lo[i] = mineralMinP
			}
			if lo[i] > hi[i] {
				lo[i] = hi[i]
			}
		}
		if strings.Contains(strings.ToLower(f.Name), "urea") && thr.UreaMax > 0 {
			if thr.UreaMax < hi[i] {
				hi[i] = thr.UreaMax
			}
		}
	}

	totalLo := 0.0
	for _, v := range lo[:n] {
		totalLo += v
	}
	if totalLo > 1.0 {
		scale := 0.95 / totalLo
		for i := range lo[:n] {
			lo[i] *= scale
		}
	}

	return Bounds{Lo: lo, Hi: hi}
}
