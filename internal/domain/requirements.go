package domain

import (
	"fmt"
	"math"
)

// NASEM gestation growth-rate constants (§4.2). Named after the source's
// variable names for traceability; see DESIGN.md note on Gest_REgain.
const (
	fetBWbrthHeiferFrac = 0.058
	fetBWbrthCowFrac    = 0.063

	grUterWtFetBWbrth = 1.816
	neGrUtWt          = 0.950

	grUterKsyn      = 2.43e-2
	grUterKsynDecay = 2.45e-5

	kyMEgestPositive = 0.14
	kyMEgestNegative = 0.89

	// KlMEtoNE converts gestation/growth ME to NE for non-heifer states.
	// Preserved as an explicit, overridable constant per the source's
	// undocumented 0.554 multiplier (DESIGN.md Open Question 1).
	KlMEtoNE = 0.554

	bodyNPtoCP  = 0.86
	kmMPNP      = 0.69
	cpGrUterWt  = 0.123
	kyMPNPTrg   = 0.33

	// CPToMPEfficiency is the fixed dietary-CP-to-MP conversion used by
	// SupplyEvaluator. Flagged "high" in the source; preserved and exposed
	// rather than silently corrected (DESIGN.md Open Question 3).
	CPToMPEfficiency = 0.67
)

// CalculateRequirements is the pure AnimalInputs -> Requirements mapping
// (§4.2). Inputs MUST already be normalized (see AnimalInputs.Normalize).
func CalculateRequirements(a AnimalInputs) (Requirements, error) {
	if !ValidPhysiologicalStates[a.State] {
		return Requirements{}, fmt.Errorf("%w: unrecognized state %q", ErrInvalidInput, a.State)
	}
	if a.BodyWeightKg <= 0 {
		return Requirements{}, fmt.Errorf("%w: body_weight_kg must be > 0", ErrInvalidInput)
	}

	bwMature := a.MatureBodyWeightKg()
	mbw := math.Pow(a.BodyWeightKg, 0.75)

	r := Requirements{
		State:      a.State,
		AnBW:       a.BodyWeightKg,
		AnBWMature: bwMature,
		AnMBW:      mbw,
	}

	if a.State == StateBabyCalf {
		r.MilkTotalLD = 0.10 * a.BodyWeightKg
		r.MilkMorningLD = r.MilkTotalLD / 2
		r.MilkEveningLD = r.MilkTotalLD / 2
		r.TargetDMI = 0.10 * a.BodyWeightKg
		return r, nil
	}

	target := dmiForState(a, mbw)
	r.TargetDMI = target

	neMilk := 9.29*(a.MilkFatPct/100) + 5.85*(a.MilkTrueProteinPct/100) + 3.95*(a.MilkLactosePct/100)
	neMilkTotal := neMilk * a.TargetMilkLD

	gest := gestationRequirements(a, bwMature)
	growth := growthRequirements(a, bwMature)

	var kmMEtoNE float64
	switch a.State {
	case StateHeifer:
		kmMEtoNE = 0.63
	default:
		kmMEtoNE = 0.66
	}

	elevM := TopographyElevationM[a.Topography]
	distM := a.DistanceKm * 1000
	maintWalk := 0.00035*distM*a.BodyWeightKg/1000 + 0.0067*elevM/1000*a.BodyWeightKg

	switch a.State {
	case StateLactatingCow:
		maintNEL := 0.08 * mbw
		r.EnergyBasis = "NEL"
		r.NELTotal = maintNEL + maintWalk + neMilkTotal + gest.anNEgest + growth.anNELgain
		r.NELPerKgMilk = neMilk
		r.MilkTrueProteinPct = a.MilkTrueProteinPct
		r.TargetMilkLD = a.TargetMilkLD
	case StateHeifer:
		maintNE := 0.15 * mbw * kmMEtoNE
		r.EnergyBasis = "ME"
		r.METotal = maintNE/kmMEtoNE + maintWalk + gest.anMEgest + growth.anMEgain
	default: // Dry Cow
		maintNEL := 0.15 * mbw * kmMEtoNE
		r.EnergyBasis = "NEL"
		r.NELTotal = maintNEL + maintWalk + gest.anNEgest + growth.anNELgain
	}

	prot := proteinRequirements(a, bwMature, gest, growth)
	r.MPLactation = prot.mpLactation
	r.MPGrowth = prot.mpGrowth
	r.MPPregnancy = prot.mpPregnancy

	r.CaReqKg, r.PReqKg = mineralCaP(a)
	r.MgReq, r.NaReq, r.ClReq, r.KReq = mineralMacros(a)
	r.SReq, r.CoReq, r.CuReq, r.IReq, r.FeReq, r.MnReq, r.SeReq, r.ZnReq = mineralTrace(a)
	r.VitAReq, r.VitDReq, r.VitEReq = vitamins(a)

	thr := Thresholds[a.State]
	r.NDFMax = thr.NDF * target
	r.NDFForMin = thr.NDFFor * target
	r.StarchMax = thr.StarchMax * target
	r.EEMax = thr.EEMax * target

	return r, nil
}

// dmiForState implements the per-state DMI equations and temperature
// adjustment (§4.2). mbw is BW^0.75, precomputed once by the caller.
func dmiForState(a AnimalInputs, mbw float64) float64 {
	var dmi float64

	switch a.State {
	case StateLactatingCow:
		neMilk := 9.29*(a.MilkFatPct/100) + 5.85*(a.MilkTrueProteinPct/100) + 3.95*(a.MilkLactosePct/100)
		neMilkTotal := neMilk * a.TargetMilkLD
		parityTerm := float64(a.Parity - 1)

		dmi = (3.7 + 5.7*parityTerm + 0.305*neMilkTotal + 0.022*a.BodyWeightKg +
			(-0.689-1.87*parityTerm)*a.BodyConditionScore) *
			(1 - (0.212+0.136*parityTerm)*math.Exp(-0.053*float64(a.LactationDay)))
		// Trailing -1: present in the source with no explanation, preserved
		// exactly for numeric compatibility (DESIGN.md Open Question 4).
		dmi -= 1

		if a.Breed == BreedIndigenous {
			fcm := 0.4*a.TargetMilkLD + 15*a.MilkFatPct*a.TargetMilkLD/100
			dmiNRC := (0.372*fcm+0.0968*mbw)*(1-math.Exp(-0.192*(float64(a.LactationDay)/7+3.67))) - 1
			dmi = 0.87*dmiNRC + 1.3131
		}

		if a.EnvTempC > 20 {
			dmi *= 1 - (a.EnvTempC-20)*0.005922
		} else if a.EnvTempC < 5 {
			dmi *= 1 - (5-a.EnvTempC)*0.004644
		}

	case StateDryCow:
		dmi = 1.979 * a.BodyWeightKg / 100
		diff := float64(a.GestationDay - a.GestationLength)
		if diff >= -21 {
			dmi += a.BodyWeightKg * (-0.756 * math.Exp(0.154*diff)) / 100
		}

	case StateHeifer:
		if a.Breed == BreedHolstein {
			dmi = 15.36 * (1 - math.Exp(-0.0022*a.BodyWeightKg))
		} else {
			dmi = 12.91 * (1 - math.Exp(-0.00295*a.BodyWeightKg))
		}
	}

	return dmi
}

// gestResult carries the NASEM gravid-uterus growth outputs needed by both
// the energy and protein sections (§4.2).
type gestResult struct {
	grUterBWgain float64
	anMEgest     float64
	anNEgest     float64
	gestNPuseG   float64
}

// gestationRequirements implements the NASEM 2021 gravid-uterus growth
// equations, active only while 0 < GestDay <= GestLen (§4.2). Only the
// gravid-uterus curve (GrUter_*) is computed: its weight is an exponential of
// the days remaining to term, scaled by a synthesis rate (GrUter_Ksyn) that
// decays with gestation day (GrUter_KsynDecay). The day-over-day weight gain
// drives the energy/protein cost of pregnancy; separate fetal and uterine
// weight curves are not computed.
func gestationRequirements(a AnimalInputs, bwMature float64) gestResult {
	if a.GestationDay <= 0 || a.GestationDay > a.GestationLength {
		return gestResult{}
	}
	gestDay := float64(a.GestationDay)

	fetBWbrthFrac := fetBWbrthCowFrac
	if a.State == StateHeifer {
		fetBWbrthFrac = fetBWbrthHeiferFrac
	}
	fetBWbrth := fetBWbrthFrac * bwMature

	gestLen := float64(a.GestationLength)
	grUterWtPrev := grUterWtFetBWbrth * fetBWbrth * math.Exp(-(grUterKsyn-grUterKsynDecay*(gestDay-1))*(gestLen-(gestDay-1)))
	grUterWt := grUterWtFetBWbrth * fetBWbrth * math.Exp(-(grUterKsyn-grUterKsynDecay*gestDay)*(gestLen-gestDay))
	grUterBWgain := grUterWt - grUterWtPrev

	gestREgain := grUterBWgain * neGrUtWt
	kyMEgest := kyMEgestPositive
	if gestREgain < 0 {
		kyMEgest = kyMEgestNegative
	}
	anMEgest := gestREgain / kyMEgest
	anNEgest := anMEgest * KlMEtoNE

	gestNPuseG := cpGrUterWt * grUterBWgain * 1000

	return gestResult{
		grUterBWgain: grUterBWgain,
		anMEgest:     anMEgest,
		anNEgest:     anNEgest,
		gestNPuseG:   gestNPuseG,
	}
}

// growthResult carries the body-composition partitioning outputs (§4.2).
type growthResult struct {
	anMEgain  float64
	anNELgain float64
	bodyNPgainG float64
}

// growthRequirements implements frame/reserve gain partitioning and its
// conversion to ME/NEL via the NASEM efficiency coefficients (§4.2).
func growthRequirements(a AnimalInputs, bwMature float64) growthResult {
	bwRatio := a.BodyWeightKg / bwMature

	fatGainFrm := 0.067 + 0.375*bwRatio
	cpGainFrm := 0.201 - 0.081*bwRatio

	frmFatGain := fatGainFrm * a.TargetFrameGainKgD
	frmCPGain := cpGainFrm * a.TargetFrameGainKgD
	frmNEgain := 9.4*frmFatGain + 5.55*frmCPGain

	bodyFatEBW := 0.067 + 0.188*bwRatio
	rsrvFatGain := bodyFatEBW * a.TargetReserveGainKgD
	rsrvCPGain := (a.TargetReserveGainKgD - rsrvFatGain) * bodyNPtoCP
	rsrvNEgain := 9.4*rsrvFatGain + 5.55*rsrvCPGain

	var kfMERE float64
	if a.State == StateHeifer {
		if a.BodyWeightKg < 250 {
			kfMERE = 0.4
		} else {
			kfMERE = 0.63
		}
	} else {
		kfMERE = 0.66
	}

	krMERE := 0.60
	if a.State != StateHeifer {
		if a.TargetReserveGainKgD > 0 {
			krMERE = 0.75
		} else if a.TargetReserveGainKgD < 0 {
			krMERE = 0.89
		}
	}

	frmMEgain := frmNEgain / kfMERE
	rsrvMEgain := rsrvNEgain / krMERE
	anMEgain := frmMEgain + rsrvMEgain

	var anNELgain float64
	if a.State == StateHeifer {
		anNELgain = anMEgain * kfMERE
	} else {
		anNELgain = anMEgain * KlMEtoNE
	}

	bodyNPgainG := (frmCPGain + rsrvCPGain) * 1000

	return growthResult{
		anMEgain:    anMEgain,
		anNELgain:   anNELgain,
		bodyNPgainG: bodyNPgainG,
	}
}

type proteinResult struct {
	mpLactation float64
	mpGrowth    float64
	mpPregnancy float64
}

// proteinRequirements implements lactation/growth/pregnancy MP requirements
// (§4.2); maintenance MP is computed by SupplyEvaluator since it depends on
// dietary NDF and DMI.
func proteinRequirements(a AnimalInputs, bwMature float64, g gestResult, gr growthResult) proteinResult {
	var mpl float64
	if a.State == StateLactatingCow && a.TargetMilkLD > 0 {
		mpl = a.TargetMilkLD * a.MilkTrueProteinPct / 100 / CPToMPEfficiency
	}

	var kgMPNP float64
	if a.State == StateHeifer {
		emptyBWRatio := a.BodyWeightKg / bwMature
		kgMPNP = 0.60 * bodyNPtoCP * (1 - 0.4*emptyBWRatio)
		floor := 0.394 * bodyNPtoCP
		if kgMPNP < floor {
			kgMPNP = floor
		}
	} else {
		kgMPNP = kmMPNP
	}
	var mpg float64
	if gr.bodyNPgainG != 0 {
		mpg = (gr.bodyNPgainG / kgMPNP) / 1000
	}

	var mpp float64
	if g.gestNPuseG != 0 {
		mpp = (g.gestNPuseG / kyMPNPTrg) / 1000
	}

	return proteinResult{mpLactation: mpl, mpGrowth: mpg, mpPregnancy: mpp}
}

// mineralCaP implements Ca/P requirements (§4.2). Required for reporting
// completeness; not on the optimizer's energy/protein hot path. The source
// drives its endogenous-excretion terms off realized DMI; this calculator
// runs before that's known, so it uses the same DMI-proportional-to-BW
// approximation the source itself falls back on pre-optimization.
func mineralCaP(a AnimalInputs) (caKg, pKg float64) {
	bw := a.BodyWeightKg
	dmi := a.dmiEstimate()
	gain := a.TargetFrameGainKgD + a.TargetReserveGainKgD
	gestDay := float64(a.GestationDay)
	gestActive := a.GestationDay > 0 && a.GestationDay <= a.GestationLength

	feCaM := 0.9 * dmi
	caGrowth := 9.83 * gain
	caGest := 0.0
	if gestActive {
		caGest = (0.02456*math.Exp((0.05581-0.00007*gestDay)*gestDay) -
			0.02456*math.Exp((0.05581-0.00007*(gestDay-1))*(gestDay-1))) * bw / 715
	}
	caLact := 0.0
	if a.TargetMilkLD > 0 {
		caLact = 1.22 * a.TargetMilkLD
	}
	caKg = (feCaM + caGrowth + caGest + caLact) / 1000

	urPM := 0.0006 * bw
	fePM := 0.8 * dmi
	anPm := urPM + fePM
	pGrowth := (1.2 + 4.635*math.Pow(a.MatureBodyWeightKg(), 0.22)*math.Pow(bw, -0.22)) * gain
	pGest := 0.0
	if gestActive {
		pGest = (0.02743*math.Exp((0.05527-0.000075*gestDay)*gestDay) -
			0.02743*math.Exp((0.05527-0.000075*(gestDay-1))*(gestDay-1))) * bw / 715
	}
	pLact := 0.0
	if a.TargetMilkLD > 0 {
		pLact = (0.48 + 0.13*a.MilkTrueProteinPct) * a.TargetMilkLD
	}
	pKg = (anPm + pGrowth + pGest + pLact) / 1000

	return caKg, pKg
}

// dmiEstimate gives mineral-requirement formulas a DMI figure without
// depending on the full calculator's own output; the minerals scale the
// same way regardless of physiological state's exact DMI equation.
func (a AnimalInputs) dmiEstimate() float64 {
	return 0.02 * a.BodyWeightKg
}

// mineralMacros implements Mg/Na/Cl/K requirements (§4.2), lighter-weight
// than Ca/P per spec.md ("required for completeness but not on the hot
// path").
func mineralMacros(a AnimalInputs) (mg, na, cl, k float64) {
	bw := a.BodyWeightKg
	dmi := a.dmiEstimate()
	gestActive := a.GestationDay > 190

	urMgM := 0.0007 * bw
	feMgM := 0.3 * dmi
	mgM := urMgM + feMgM
	mgG := 0.45 * (a.TargetFrameGainKgD + a.TargetReserveGainKgD)
	mgY := 0.0
	if gestActive {
		mgY = 0.3 * (bw / 715)
	}
	mgL := 0.0
	if a.TargetMilkLD > 0 {
		mgL = 0.11 * a.TargetMilkLD
	}
	mg = mgM + mgG + mgY + mgL

	feNaM := 1.45 * dmi
	naG := 1.4 * (a.TargetFrameGainKgD + a.TargetReserveGainKgD)
	naY := 0.0
	if gestActive {
		naY = 1.4 * bw / 715
	}
	naL := 0.0
	if a.TargetMilkLD > 0 {
		naL = 0.4 * a.TargetMilkLD
	}
	na = feNaM + naG + naY + naL

	feClM := 1.11 * dmi
	clG := 1.0 * (a.TargetFrameGainKgD + a.TargetReserveGainKgD)
	clY := 0.0
	if gestActive {
		clY = 1.0 * bw / 715
	}
	clL := 0.0
	if a.TargetMilkLD > 0 {
		clL = 1.0 * a.TargetMilkLD
	}
	cl = feClM + clG + clY + clL

	urKM := 0.07 * bw
	if a.TargetMilkLD > 0 {
		urKM = 0.2 * bw
	}
	feKM := 2.5 * dmi
	kM := urKM + feKM
	kG := 2.5 * (a.TargetFrameGainKgD + a.TargetReserveGainKgD)
	kY := 0.0
	if gestActive {
		kY = 1.03 * (bw / 715)
	}
	kL := 0.0
	if a.TargetMilkLD > 0 {
		kL = 1.5 * a.TargetMilkLD
	}
	k = kM + kG + kY + kL

	return mg, na, cl, k
}

// mineralTrace implements S/Co/Cu/I/Fe/Mn/Se/Zn requirements (§4.2).
func mineralTrace(a AnimalInputs) (s, co, cu, iod, fe, mn, se, zn float64) {
	bw := a.BodyWeightKg
	dmi := a.dmiEstimate()
	gain := a.TargetFrameGainKgD + a.TargetReserveGainKgD
	gestDay := a.GestationDay
	milk := a.TargetMilkLD

	s = 2 * dmi
	co = 0.2 * dmi

	cu = 0.0145*bw + 2.0*gain
	switch {
	case gestDay < 90:
	case gestDay > 190:
		cu += 0.0023 * bw
	default:
		cu += 0.0003 * bw
	}
	if milk > 0 {
		cu += 0.04 * milk
	}

	iod = 0.216*math.Pow(bw, 0.528) + 0.1*milk

	fe = 34 * gain
	if gestDay > 190 {
		fe += 0.025 * bw
	}
	if milk > 0 {
		fe += 1.0 * milk
	}

	mn = 0.0026*bw + 2.0*gain
	if gestDay > 190 {
		mn += 0.00042 * bw
	}
	if milk > 0 {
		mn += 0.03 * milk
	}

	se = 0.3 * dmi

	zn = 5.0*dmi + 24*gain
	if gestDay > 190 {
		zn += 0.017 * bw
	}
	if milk > 0 {
		zn += 4.0 * milk
	}

	return s, co, cu, iod, fe, mn, se, zn
}

// vitamins implements Vitamin A/D/E requirements (§4.2), lighter-weight.
func vitamins(a AnimalInputs) (vitA, vitD, vitE float64) {
	vitA = 110 * a.BodyWeightKg
	if a.TargetMilkLD > 35 {
		vitA += 1000 * (a.TargetMilkLD - 35)
	}
	vitD = 30 * a.BodyWeightKg
	vitE = 3 * a.BodyWeightKg
	return vitA, vitD, vitE
}
