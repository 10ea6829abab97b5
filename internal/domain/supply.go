package domain

import (
	"fmt"
	"math"
)

// Fixed minimum TDN concentration (% of DM) below which the nutritional
// discount never applies (§4.4).
const discountMinTDNConc = 60.0

// Maintenance-protein equation constants (§4.4); kept distinct from the
// kmMPNP used in requirements.go for lactation/growth/pregnancy MP since the
// source uses a slightly different efficiency here (0.65 vs 0.69).
const (
	kmMPNPMaintenance = 0.65
	scurfNPtoCP       = 0.86
	fecalNPtoCP       = 0.73
	heiferMPFloorK1   = 53.0
	heiferMPFloorK2   = 25.0
)

// EvaluateSupply computes the realized nutrient supply of a candidate diet
// (§4.4). quantities is kg DM/d per feed, aligned by index
// with feeds. Returns ErrInvalidDiet if the lengths mismatch, any quantity is
// negative, or total DMI is effectively zero.
func EvaluateSupply(quantities []float64, feeds []EnrichedFeed, req Requirements) (SupplyResult, error) {
	if len(quantities) != len(feeds) {
		return SupplyResult{}, fmt.Errorf("%w: %d quantities for %d feeds", ErrInvalidDiet, len(quantities), len(feeds))
	}

	dmi := 0.0
	for _, q := range quantities {
		if q < 0 {
			return SupplyResult{}, fmt.Errorf("%w: negative feed quantity", ErrInvalidDiet)
		}
		dmi += q
	}
	if dmi < 1e-6 {
		return SupplyResult{}, fmt.Errorf("%w: total DMI is zero", ErrInvalidDiet)
	}

	var totalTDN float64
	for i, f := range feeds {
		totalTDN += quantities[i] * (f.TDN / 100)
	}

	discount := calculateDiscount(totalTDN, dmi, req.AnMBW)

	var nelDiet, totalDE, totalCa, totalP, totalNDF, totalNDFFor, totalStarch, totalEE, totalNDFDiet, totalCPg, totalMEMJ float64
	for i, f := range feeds {
		q := quantities[i]
		deAct := f.DE * discount

		meAct := actualME(deAct, f)

		nelDiet += q * meAct
		totalDE += q * deAct
		totalCa += q * f.CaKgPerKgDM
		totalP += q * f.PKgPerKgDM
		totalNDF += q * f.NDFKgPerKgDM
		totalNDFFor += q * f.ForageNDFKgPerKgDM
		totalStarch += q * f.STKgPerKgDM
		totalEE += q * f.EEKgPerKgDM
		totalNDFDiet += q * f.NDF
		cpGD := f.CP / 100 * q * 1000
		totalCPg += cpGD
		totalMEMJ += meAct * 4.184 * q
	}
	nelDiet *= 0.66

	ndfPctDiet := 0.0
	if dmi > 0 {
		ndfPctDiet = totalNDFDiet / dmi
	}

	scurfCPg := 0.20 * math.Pow(req.AnBW, 0.60)
	scurfNPg := scurfCPg * scurfNPtoCP
	fecalCPendg := (12 + 0.12*ndfPctDiet) * dmi
	fecalNPendg := fecalCPendg * fecalNPtoCP
	urinaryNPendg := 0.053 * req.AnBW * 6.25

	anNPmUseG := scurfNPg + urinaryNPendg + fecalNPendg
	mpMaintKg := (anNPmUseG / kmMPNPMaintenance) / 1000

	totalMPReqKg := mpMaintKg + req.MPGrowth + req.MPPregnancy + req.MPLactation

	isHeifer := req.State == StateHeifer
	var energy, me, meBalance float64
	me = (totalDE * 0.82)
	if isHeifer {
		energy = me
		// The source scales this floor by An_NEL/0.66, i.e. the ME-equivalent of
		// the animal's NEL requirement; heifers here only carry an ME
		// requirement, which is that same quantity, so it is used directly.
		mpFloorKg := (heiferMPFloorK1 - heiferMPFloorK2*(req.AnBW/req.AnBWMature)) * req.METotal / 1000
		if totalMPReqKg < mpFloorKg {
			totalMPReqKg = mpFloorKg
		}
		meBalance = me - req.METotal
	} else {
		energy = nelDiet
	}

	utilCP := 8.76*totalMEMJ + 0.36*totalCPg
	mpGERKg := (utilCP * 0.73 * 0.85) / 1000
	proteinBalance := mpGERKg - totalMPReqKg

	mp := (totalCPg * CPToMPEfficiency) / 1000

	result := SupplyResult{
		DMI:             dmi,
		Energy:          energy,
		MP:              mp,
		Ca:              totalCa,
		P:               totalP,
		NDF:             totalNDF,
		NDFForage:       totalNDFFor,
		Starch:          totalStarch,
		EE:              totalEE,
		NEL:             nelDiet,
		ME:              me,
		NELBalance:      nelDiet - req.NELTotal,
		MEBalance:       meBalance,
		ProteinBalance:  proteinBalance,
		TotalMPRequired: totalMPReqKg,
		MPMaintenance:   mpMaintKg,
		Discount:        discount,
	}
	return result, nil
}

// calculateDiscount derives the TDN-overestimation correction applied across
// the diet when energy density is high relative to what the animal can use
// at its actual intake (§4.4; An_MBW is the metabolic body weight, BW^0.75).
func calculateDiscount(totalTDN, dmi, anMBW float64) float64 {
	if dmi < 1e-6 || totalTDN < 0 {
		return 1.0
	}
	tdnConc := totalTDN / dmi * 100
	if tdnConc < discountMinTDNConc {
		return 1.0
	}
	maintTDN := 0.035 * anMBW
	dmiToMaint := 1.0
	if totalTDN >= maintTDN && maintTDN > 0 {
		dmiToMaint = totalTDN / maintTDN
	}
	return (tdnConc - (0.18*tdnConc-10.3)*(dmiToMaint-1)) / tdnConc
}

// actualME applies the per-feed DE->ME adjustment (§4.4): a fat correction
// above 3% EE, a straight pass-through for fat feeds, and zero for minerals.
func actualME(deAct float64, f EnrichedFeed) float64 {
	meAct := 1.01*deAct - 0.45
	if f.EE >= 3 {
		meAct += 0.0046 * (f.EE - 3)
	}
	if f.IsFat {
		meAct = deAct
	}
	if f.IsMineral {
		meAct = 0
	}
	if meAct < 0 {
		meAct = 0
	}
	return meAct
}
