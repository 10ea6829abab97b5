// Package postanalysis implements C9: cleaning the selected diet, recomputing
// its realized supply, and producing the user-facing tables, warnings, and
// recommendations that make up DietResult (§4.9).
package postanalysis

import (
	"fmt"
	"math"
	"strings"

	"ration/internal/domain"
)

const (
	cleanThresholdForageConcKg     = 0.1   // 100 g
	cleanThresholdMineralAdditiveKg = 0.005 // 5 g
)

// CleanSolution zeroes any ingredient amount below its category threshold
// and returns the cleaned quantities plus a human-readable cleanup log
// (§4.9 Clean).
func CleanSolution(quantities []float64, feeds []domain.EnrichedFeed) ([]float64, []string) {
	cleaned := make([]float64, len(quantities))
	var log []string

	for i, q := range quantities {
		if i >= len(feeds) {
			break
		}
		f := feeds[i]
		if q < 0 || math.IsNaN(q) {
			q = 0
		}
		th := cleanThresholdForageConcKg
		if isMineralOrAdditive(f) {
			th = cleanThresholdMineralAdditiveKg
		}
		if q < th {
			if q > 0 {
				log = append(log, fmt.Sprintf("%s %.3f kg -> 0.000 kg", f.Name, q))
			}
			cleaned[i] = 0
			continue
		}
		cleaned[i] = q
	}
	return cleaned, log
}

func isMineralOrAdditive(f domain.EnrichedFeed) bool {
	if f.Type == domain.FeedTypeMinerals || f.Type == domain.FeedTypeAdditive {
		return true
	}
	if f.Category == domain.CategoryMinerals || f.Category == domain.CategoryAdditive {
		return true
	}
	name := strings.ToLower(f.Name)
	return strings.Contains(name, "urea") || strings.Contains(name, "premix")
}

// dietComposition returns the feed-weighted diet-level percentages (of DM)
// and gross energy that the water-intake and methane equations consume.
func dietComposition(quantities []float64, feeds []domain.EnrichedFeed) (dmi, ashPct, cpPct, ndfPct, eePct, faPct, geMcalD float64) {
	var ashKg, cpKg, ndfKg, eeKg, faKg float64
	for i, q := range quantities {
		if i >= len(feeds) {
			break
		}
		f := feeds[i]
		dmi += q
		ashKg += q * f.Ash / 100
		cpKg += q * f.CP / 100
		ndfKg += q * f.NDF / 100
		eeKg += q * f.EE / 100
		faKg += q * f.FA / 100
		geMcalD += q * f.GE
	}
	if dmi <= 0 {
		return dmi, 0, 0, 0, 0, 0, geMcalD
	}
	return dmi, ashKg / dmi * 100, cpKg / dmi * 100, ndfKg / dmi * 100, eeKg / dmi * 100, faKg / dmi * 100, geMcalD
}

// WaterIntakeLD computes free-water intake (L/d) using the lactating-cow
// regression for lactating animals and the dry/heifer regression otherwise
// (§4.9 Water intake).
func WaterIntakeLD(quantities []float64, feeds []domain.EnrichedFeed, state domain.PhysiologicalState, envTempC float64) float64 {
	dmi, ashPct, cpPct, _, _, _, _ := dietComposition(quantities, feeds)
	if dmi <= 0 {
		return 0
	}
	dmPctOfAF := dmPercentOfAsFed(quantities, feeds, dmi)

	if state == domain.StateLactatingCow {
		return -68.8 + 2.89*dmi + 0.44*dmPctOfAF + 5.60*ashPct + 1.81*cpPct
	}
	return 1.16*dmi + 0.23*dmPctOfAF + 0.44*envTempC + 0.061*math.Pow(envTempC-16.4, 2)
}

func dmPercentOfAsFed(quantities []float64, feeds []domain.EnrichedFeed, dmi float64) float64 {
	var afKg float64
	for i, q := range quantities {
		if i >= len(feeds) || feeds[i].DM <= 0 {
			continue
		}
		afKg += q / (feeds[i].DM / 100)
	}
	if afKg <= 0 {
		return 0
	}
	return dmi / afKg * 100
}

// Methane computes enteric-methane production and its derived indicators
// using the state-specific regressions (§4.9 Methane).
func Methane(quantities []float64, feeds []domain.EnrichedFeed, req domain.Requirements, milkFatPct, milkTPPct float64) domain.MethaneIndicators {
	dmi, _, cpPct, ndfPct, eePct, faPct, geMcalD := dietComposition(quantities, feeds)

	var ch4 float64
	switch req.State {
	case domain.StateLactatingCow:
		ch4 = 76.0 + 13.5*dmi - 9.55*eePct + 2.24*ndfPct
	case domain.StateDryCow:
		ch4 = (0.69 + 0.053*geMcalD - 0.0789*faPct) * 4184 / 55.5
	case domain.StateHeifer:
		ch4 = (-0.038 + 0.051*geMcalD - 0.0091*ndfPct) * 4184 / 55.5
	}

	var yield float64
	if dmi > 0 {
		yield = ch4 / dmi
	}

	// Ported verbatim from the source's regression; despite the field name
	// this is a methane-intensity index, not a per-kg-milk quantity (§9 open
	// question: the source never reconciled the two).
	intensity := -0.101 - 0.215*dmi - 0.118*cpPct - 0.323*eePct + 0.120*ndfPct -
		0.253*milkFatPct + 3.44*milkTPPct + 0.00947*req.AnBW

	ch4MJ := ch4 * 55.5 / 1000
	geMJ := geMcalD * 4.184
	var conversionRate float64
	if geMJ > 0 {
		conversionRate = (ch4MJ / geMJ) * 100
	}

	return domain.MethaneIndicators{
		ProductionGD:        ch4,
		YieldGPerKgDMI:      yield,
		IntensityGPerKgMilk: intensity,
		ConversionRatePct:   conversionRate,
	}
}

// BuildBreakdown returns one row per ingredient actually fed (post-cleanup).
func BuildBreakdown(quantities []float64, feeds []domain.EnrichedFeed) ([]domain.BreakdownRow, float64) {
	var rows []domain.BreakdownRow
	var totalCost float64
	for i, q := range quantities {
		if i >= len(feeds) || q <= 0 {
			continue
		}
		f := feeds[i]
		afKg := q
		if f.DM > 0 {
			afKg = q / (f.DM / 100)
		}
		cost := afKg * f.PriceAsFedPerKg
		totalCost += cost
		rows = append(rows, domain.BreakdownRow{
			Name: f.Name, Category: f.Category, Type: f.Type,
			DMKg: q, AFKg: afKg, PricePerKg: f.PriceAsFedPerKg, Cost: cost,
		})
	}
	return rows, totalCost
}

// NutrientComparisons builds the supply-vs-target table (§4.9 Tables).
func NutrientComparisons(supply domain.SupplyResult, req domain.Requirements, severity domain.SeverityResult) []domain.NutrientComparison {
	energyTarget := req.NELTotal
	energyUnit := "Mcal/d (NEL)"
	if req.EnergyBasis == "ME" {
		energyTarget = req.METotal
		energyUnit = "Mcal/d (ME)"
	}

	rows := []struct {
		name, unit       string
		supplied, target float64
		under, over      string
	}{
		{"DMI", "kg/d", supply.DMI, req.TargetDMI, "DMI_min", "DMI_max"},
		{"Energy", energyUnit, supply.Energy, energyTarget, "Energy_min", "Energy_max"},
		{"MP", "kg/d", supply.MP, supply.TotalMPRequired, "MP_min", "MP_max"},
		{"Ca", "kg/d", supply.Ca, req.CaReqKg, "Ca_min", ""},
		{"P", "kg/d", supply.P, req.PReqKg, "P_min", ""},
		{"NDF", "kg/d", supply.NDF, req.NDFMax, "", "NDF_max"},
		{"NDF forage", "kg/d", supply.NDFForage, req.NDFForMin, "NDFfor_min", ""},
		{"Starch", "kg/d", supply.Starch, req.StarchMax, "", "Starch_max"},
		{"Fat", "kg/d", supply.EE, req.EEMax, "", "EE_max"},
	}

	out := make([]domain.NutrientComparison, 0, len(rows))
	for _, r := range rows {
		var name string
		switch {
		case r.under != "" && r.over != "":
			name = r.under
			if r.supplied > r.target {
				name = r.over
			}
		case r.under != "":
			name = r.under
		default:
			name = r.over
		}
		sev := severity.ByConstraint[name]
		out = append(out, domain.NutrientComparison{
			Nutrient: r.name, Supplied: r.supplied, Target: r.target, Unit: r.unit, Severity: sev,
		})
	}
	return out
}

type actionTemplate struct {
	under, over string
}

// actionTemplates ports ACTION_TEMPLATES: one recommendation string per
// constraint category and direction (§4.9 Warnings/recommendations).
var actionTemplates = map[string]actionTemplate{
	"dmi":                {under: "Swap to more digestible forages; reduce straw/low-quality fibrous forages.", over: "Increase nutrient density: replace some forage with concentrates."},
	"energy":             {under: "Add high-energy concentrates (e.g., corn/barley).", over: "Reduce cereal grains; or add fibrous by-products/forage."},
	"protein":            {under: "Add true-protein meals (e.g., soybean meal).", over: "Trim protein supplements; replace with energy sources."},
	"ca":                 {under: "Increase mineral premix."},
	"p":                  {under: "Increase mineral premix."},
	"ndf_for":            {under: "Add forage ingredients (hay/silage)."},
	"ndf":                {over: "Dilute fiber: reduce straw/low-quality fibrous forages; replace with higher-energy forage or concentrates."},
	"starch":             {over: "Cut cereal grains; use digestible fiber sources to dilute starch."},
	"fat":                {over: "Reduce high-fat ingredients (oils/whole oilseeds/bypass fat)."},
	"conc_max":           {over: "Lower total concentrates; replace with high-quality forage."},
	"conc_byprod_max":    {over: "Reduce wet by-products; shift to dry concentrates or forage."},
	"other_wet_ingr_max": {over: "Reduce wet non-forage ingredients; replace with dry concentrates/forage."},
	"forage_straw_max":   {over: "Cut straw; use moderate-NDF forage for structure instead."},
	"forage_fibrous_max": {over: "Replace low-quality fibrous forage with higher-quality forage."},
	"moist_forage_min":   {under: "Add moist forages (e.g., silage/pasture)."},
}

type constraintMapping struct {
	key, direction string
}

// constraintCategories maps a ConstraintBuilder constraint name to its
// ACTION_TEMPLATES key and over/under direction.
var constraintCategories = map[string]constraintMapping{
	"DMI_min":         {"dmi", "under"},
	"DMI_max":         {"dmi", "over"},
	"Energy_min":      {"energy", "under"},
	"Energy_max":      {"energy", "over"},
	"MP_min":          {"protein", "under"},
	"MP_max":          {"protein", "over"},
	"Ca_min":          {"ca", "under"},
	"P_min":           {"p", "under"},
	"NDFfor_min":      {"ndf_for", "under"},
	"NDF_max":         {"ndf", "over"},
	"Starch_max":      {"starch", "over"},
	"EE_max":          {"fat", "over"},
	"Conc_max":        {"conc_max", "over"},
	"Byprod_max":      {"conc_byprod_max", "over"},
	"WetOther_max":    {"other_wet_ingr_max", "over"},
	"Straw_max":       {"forage_straw_max", "over"},
	"LQF_max":         {"forage_fibrous_max", "over"},
	"MoistForage_min": {"moist_forage_min", "under"},
}

// Guidance builds one warning/recommendation/message per critical violated
// constraint, with a handful of context-aware overrides so conflicting
// advice ("add concentrates" while concentrates are already capped) never
// surfaces together (§4.9 Warnings/recommendations).
func Guidance(constraints []domain.Constraint, severity domain.SeverityResult, cleaningLog []string) (warnings, recommendations []string, messages []domain.Message) {
	isBad := func(name string) bool {
		sev, ok := severity.ByConstraint[name]
		return ok && (sev == domain.SeverityMarginal || sev == domain.SeverityInfeasible)
	}

	for _, c := range constraints {
		sev, ok := severity.ByConstraint[c.Name]
		if !ok || (sev != domain.SeverityMarginal && sev != domain.SeverityInfeasible) {
			continue
		}
		mapping, ok := constraintCategories[c.Name]
		if !ok {
			continue
		}
		tmpl, ok := actionTemplates[mapping.key]
		if !ok {
			continue
		}
		text := tmpl.under
		if mapping.direction == "over" {
			text = tmpl.over
		}
		if text == "" {
			continue
		}

		switch {
		case mapping.key == "dmi" && mapping.direction == "under" && isBad("Conc_max"):
			text = "Raise forage energy density (corn silage/high-digestibility forage); trim cereal grains to free space for long-fiber forage; maintain energy with fibrous by-products, not more grain."
		case mapping.key == "protein" && mapping.direction == "over" && isBad("Energy_max"):
			text = strings.Replace(text, "replace with energy sources", "replace with forage or fibrous by-products", 1)
		case mapping.key == "energy" && mapping.direction == "under" && isBad("Conc_max"):
			text = "Prefer higher-NEL forage (corn silage) over adding more concentrates."
		}

		level := "warning"
		if sev == domain.SeverityInfeasible {
			level = "error"
		}
		warning := fmt.Sprintf("%s is %s (actual %.2f, target %.2f)", c.Name, sev, c.Actual, c.Target)
		warnings = append(warnings, warning)
		messages = append(messages, domain.Message{Level: level, Code: "RFT-SEV-" + c.Name, Where: "severity_classifier", Summary: warning, Hint: text})
		recommendations = append(recommendations, text)
	}

	recommendations = resolveActionConflicts(recommendations, isBad)

	for _, entry := range cleaningLog {
		messages = append(messages, domain.Message{Level: "info", Code: "RFT-CLN-001", Where: "clean_solution", Summary: entry})
	}

	return warnings, recommendations, messages
}

// resolveActionConflicts drops recommendations that contradict a
// already-violated constraint in the opposite direction.
func resolveActionConflicts(recommendations []string, isBad func(string) bool) []string {
	concOver := isBad("Conc_max")
	energyOver := isBad("Energy_max")

	out := make([]string, 0, len(recommendations))
	seen := make(map[string]bool, len(recommendations))
	for _, r := range recommendations {
		if concOver && strings.Contains(r, "Add high-energy concentrates") {
			continue
		}
		if energyOver && strings.Contains(r, "replace with energy sources") {
			continue
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// EvaluateExtras computes the evaluate-mode-only limiting-nutrient analysis
// (§6, scenario S6): how much milk the realized diet's energy and protein
// supply could each support, which one is binding, and feed cost per kg of
// milk. Returns all-zero outside StateLactatingCow.
func EvaluateExtras(supply domain.SupplyResult, req domain.Requirements, totalCostAsFed float64) (limitingNutrient string, milkByEnergyL, milkByProteinL, costPerKgMilk float64) {
	if req.State != domain.StateLactatingCow || req.NELPerKgMilk <= 0 {
		return "", 0, 0, 0
	}

	nelAvailable := supply.NELBalance + req.NELPerKgMilk*req.TargetMilkLD
	milkByEnergyL = math.Max(0, nelAvailable/req.NELPerKgMilk)

	mpPerKgMilkG := (req.MilkTrueProteinPct / 100) / domain.CPToMPEfficiency * 1000
	mpAvailableForMilkG := supply.ProteinBalance*1000 + req.MPLactation*1000
	if mpPerKgMilkG > 0 {
		milkByProteinL = math.Max(0, mpAvailableForMilkG/mpPerKgMilkG)
	}

	limitingNutrient = "Protein"
	if milkByEnergyL < milkByProteinL {
		limitingNutrient = "Energy"
	}

	milkProduced := math.Min(milkByEnergyL, milkByProteinL)
	if milkProduced > 0 {
		costPerKgMilk = totalCostAsFed / milkProduced
	}
	return limitingNutrient, milkByEnergyL, milkByProteinL, costPerKgMilk
}
