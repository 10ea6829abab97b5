package domain

// =============================================================================
// PHYSIOLOGICAL-STATE THRESHOLDS (C1)
// =============================================================================
//
// StateThresholds carries the per-state ingredient-mix and nutrient caps used
// by ConstraintBuilder (§4.5) to build bounds and limits. All limits are
// fractions of target DMI (0.10 = 10%) unless the field name says otherwise.

type StateThresholds struct {
	ForageStrawMax     float64 // fraction of DMI
	ForageWetMax       float64
	ForageFibrousMax   float64
	NDF                float64 // NDF cap, fraction of DMI
	NDFFor             float64 // minimum forage-NDF, fraction of DMI
	StarchMax          float64
	EEMax              float64
	ConcByprodMax      float64
	ConcMax            float64
	OtherWetIngrMax    float64
	MineralMinKg       float64 // kg/d
	MineralMaxKg       float64 // kg/d
	UreaMax            float64 // fraction of DMI
	MoistForageMin     float64 // fraction of DMI
}

// Thresholds holds the static per-state threshold table (§4.1). Values
// follow NASEM-style dairy ration formulation practice: lactating cows carry
// the widest energy/starch allowances, dry cows and heifers are fiber-first.
var Thresholds = map[PhysiologicalState]StateThresholds{
	StateLactatingCow: {
		ForageStrawMax:   0.10,
		ForageWetMax:     0.50,
		ForageFibrousMax: 0.60,
		NDF:              0.36,
		NDFFor:           0.21,
		StarchMax:        0.26,
		EEMax:            0.06,
		ConcByprodMax:    0.30,
		ConcMax:          0.55,
		OtherWetIngrMax:  0.15,
		MineralMinKg:     0.050,
		MineralMaxKg:     0.250,
		UreaMax:          0.015,
		MoistForageMin:   0.20,
	},
	StateDryCow: {
		ForageStrawMax:   0.25,
		ForageWetMax:     0.45,
		ForageFibrousMax: 0.70,
		NDF:              0.40,
		NDFFor:           0.27,
		StarchMax:        0.18,
		EEMax:            0.045,
		ConcByprodMax:    0.20,
		ConcMax:          0.35,
		OtherWetIngrMax:  0.10,
		MineralMinKg:     0.040,
		MineralMaxKg:     0.180,
		UreaMax:          0.010,
		MoistForageMin:   0.15,
	},
	StateHeifer: {
		ForageStrawMax:   0.20,
		ForageWetMax:     0.45,
		ForageFibrousMax: 0.65,
		NDF:              0.38,
		NDFFor:           0.24,
		StarchMax:        0.22,
		EEMax:            0.05,
		ConcByprodMax:    0.25,
		ConcMax:          0.45,
		OtherWetIngrMax:  0.12,
		MineralMinKg:     0.030,
		MineralMaxKg:     0.150,
		UreaMax:          0.010,
		MoistForageMin:   0.15,
	},
}

// =============================================================================
// SEVERITY TOLERANCE TABLES (C1, used by C6)
// =============================================================================

// ToleranceBasis says whether a constraint's percent deviation is measured
// against a target (both-sided or one-sided) or a hard upper limit.
type ToleranceBasis string

const (
	BasisTarget ToleranceBasis = "target"
	BasisLimit  ToleranceBasis = "limit"
)

// ToleranceType narrows how a target-basis deviation counts.
type ToleranceType string

const (
	ToleranceMinimum ToleranceType = "minimum"
	ToleranceMaximum ToleranceType = "maximum"
	ToleranceBoth    ToleranceType = "both"
)

// Band is an absolute percent-deviation interval, inclusive of Lo, exclusive
// of Hi (the first band whose interval contains the magnitude wins; see
// SeverityClassifier, §4.6).
type Band struct {
	Lo, Hi float64
}

// Contains reports whether v falls in [Lo, Hi).
func (b Band) Contains(v float64) bool {
	return v >= b.Lo && v < b.Hi
}

// ToleranceEntry is one constraint's full classification rule (§4.1).
//
// CountMarginalUnder/Over and CountInfeasibleUnder/Over are the sparse
// "COUNT_OVERRIDES" escape hatch from the source: most constraints count
// every marginal/infeasible classification toward the overall INFEASIBLE
// tally, but a few (e.g. a forage-fibrous cap that's merely a soft
// preference) are marked not to count on one side.
type ToleranceEntry struct {
	Basis     ToleranceBasis
	Type      ToleranceType
	Perfect, Good, Marginal, Infeasible Band

	CountMarginalUnder   bool
	CountMarginalOver    bool
	CountInfeasibleUnder bool
	CountInfeasibleOver  bool

	// Critical marks constraints that drive overall INFEASIBLE the moment a
	// single instance classifies as infeasible (DMI/Energy/MP in §4.6).
	Critical bool
}

func fullCount(e ToleranceEntry) ToleranceEntry {
	e.CountMarginalUnder = true
	e.CountMarginalOver = true
	e.CountInfeasibleUnder = true
	e.CountInfeasibleOver = true
	return e
}

// defaultTolerances builds the shared skeleton tolerance table for critical
// nutrients; per-state tables clone and adjust it.
func defaultTolerances() map[string]ToleranceEntry {
	return map[string]ToleranceEntry{
		"DMI_max": fullCount(ToleranceEntry{
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 2}, Good: Band{2, 5}, Marginal: Band{5, 10}, Infeasible: Band{10, 1e9},
			Critical: true,
		}),
		"DMI_min": fullCount(ToleranceEntry{
			Basis: BasisTarget, Type: ToleranceMinimum,
			Perfect: Band{0, 2}, Good: Band{2, 5}, Marginal: Band{5, 10}, Infeasible: Band{10, 1e9},
			Critical: true,
		}),
		// energy: marg_over=False, everything else True (a marginal oversupply
		// is a warn-only; a marginal shortfall still counts).
		"Energy_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 3}, Good: Band{3, 8}, Marginal: Band{8, 20}, Infeasible: Band{20, 1e9},
			Critical:             true,
			CountMarginalUnder:   true,
			CountInfeasibleUnder: true,
			CountInfeasibleOver:  true,
		},
		"Energy_min": {
			Basis: BasisTarget, Type: ToleranceMinimum,
			Perfect: Band{0, 2}, Good: Band{2, 5}, Marginal: Band{5, 10}, Infeasible: Band{10, 1e9},
			Critical:             true,
			CountMarginalUnder:   true,
			CountInfeasibleUnder: true,
			CountInfeasibleOver:  true,
		},
		// protein: same shape as energy.
		"MP_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 3}, Good: Band{3, 8}, Marginal: Band{8, 20}, Infeasible: Band{20, 1e9},
			Critical:             true,
			CountMarginalUnder:   true,
			CountInfeasibleUnder: true,
			CountInfeasibleOver:  true,
		},
		"MP_min": {
			Basis: BasisTarget, Type: ToleranceMinimum,
			Perfect: Band{0, 2}, Good: Band{2, 5}, Marginal: Band{5, 10}, Infeasible: Band{10, 1e9},
			Critical:             true,
			CountMarginalUnder:   true,
			CountInfeasibleUnder: true,
			CountInfeasibleOver:  true,
		},
		// ca/p: ok if over; only an infeasible shortfall counts.
		"Ca_min": {
			Basis: BasisTarget, Type: ToleranceMinimum,
			Perfect: Band{0, 5}, Good: Band{5, 15}, Marginal: Band{15, 30}, Infeasible: Band{30, 1e9},
			CountInfeasibleUnder: true,
		},
		"P_min": {
			Basis: BasisTarget, Type: ToleranceMinimum,
			Perfect: Band{0, 5}, Good: Band{5, 15}, Marginal: Band{15, 30}, Infeasible: Band{30, 1e9},
			CountInfeasibleUnder: true,
		},
		// ndf: total-fiber cap; marginal-over is warn-only, infeasible-over counts.
		"NDF_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 3}, Good: Band{3, 10}, Marginal: Band{10, 20}, Infeasible: Band{20, 1e9},
			CountInfeasibleOver: true,
		},
		// ndf_for: structural-fiber minimum; only an infeasible shortfall counts.
		"NDFfor_min": {
			Basis: BasisTarget, Type: ToleranceMinimum,
			Perfect: Band{0, 5}, Good: Band{5, 15}, Marginal: Band{15, 30}, Infeasible: Band{30, 1e9},
			CountInfeasibleUnder: true,
		},
		// starch/fat: rapid-carb and fat caps; marginal-over is warn-only.
		"Starch_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 5}, Good: Band{5, 15}, Marginal: Band{15, 30}, Infeasible: Band{30, 1e9},
			CountInfeasibleOver: true,
		},
		"EE_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 5}, Good: Band{5, 15}, Marginal: Band{15, 30}, Infeasible: Band{30, 1e9},
			CountInfeasibleOver: true,
		},
		// forage_straw_max: a blown straw cap is a quality nuisance at the
		// marginal band, but an infeasible overage still counts.
		"Straw_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 10}, Good: Band{10, 25}, Marginal: Band{25, 50}, Infeasible: Band{50, 1e9},
			CountInfeasibleOver: true,
		},
		// moist_forage_min: only a severe shortfall counts.
		"MoistForage_min": {
			Basis: BasisTarget, Type: ToleranceMinimum,
			Perfect: Band{0, 10}, Good: Band{10, 25}, Marginal: Band{25, 50}, Infeasible: Band{50, 1e9},
			CountInfeasibleUnder: true,
		},
		// forage_fibrous_max: same shape as the other fiber/wet caps.
		"LQF_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 10}, Good: Band{10, 25}, Marginal: Band{25, 50}, Infeasible: Band{50, 1e9},
			CountInfeasibleOver: true,
		},
		// conc_byprod_max.
		"Byprod_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 10}, Good: Band{10, 25}, Marginal: Band{25, 50}, Infeasible: Band{50, 1e9},
			CountInfeasibleOver: true,
		},
		// other_wet_ingr_max.
		"WetOther_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 10}, Good: Band{10, 25}, Marginal: Band{25, 50}, Infeasible: Band{50, 1e9},
			CountInfeasibleOver: true,
		},
		// conc_max: marginal-over is warn-only, infeasible-over counts.
		"Conc_max": {
			Basis: BasisLimit, Type: ToleranceMaximum,
			Perfect: Band{0, 5}, Good: Band{5, 15}, Marginal: Band{15, 30}, Infeasible: Band{30, 1e9},
			CountInfeasibleOver: true,
		},
	}
}

// ToleranceTables is the per-state severity tolerance table (§4.1, §4.6).
// Dry cows and heifers get a slightly wider Energy/MP band since they carry
// no lactation penalty for a marginal shortfall.
var ToleranceTables = buildToleranceTables()

func buildToleranceTables() map[PhysiologicalState]map[string]ToleranceEntry {
	lactating := defaultTolerances()

	dry := defaultTolerances()
	widen(dry, "Energy_min", 1.5)
	widen(dry, "MP_min", 1.5)

	heifer := defaultTolerances()
	widen(heifer, "Energy_min", 1.25)
	widen(heifer, "MP_min", 1.25)

	return map[PhysiologicalState]map[string]ToleranceEntry{
		StateLactatingCow: lactating,
		StateDryCow:       dry,
		StateHeifer:       heifer,
	}
}

// widen scales the Good/Marginal/Infeasible band edges of entry name by
// factor, used to give non-lactating states more slack on soft targets.
func widen(table map[string]ToleranceEntry, name string, factor float64) {
	e := table[name]
	e.Good.Hi *= factor
	e.Marginal.Lo = e.Good.Hi
	e.Marginal.Hi *= factor
	e.Infeasible.Lo = e.Marginal.Hi
	table[name] = e
}
