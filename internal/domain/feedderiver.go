package domain

import (
	"math"
	"regexp"
	"strings"
)

// Gross/digestible energy coefficients (NRC 2001 / Weiss et al., 2018),
// Mcal per kg of the named digestible fraction (§4.3).
const (
	deNFC = 4.2
	deNDF = 4.2
	deCP  = 5.6
	deFA  = 9.4
	deLossConstant = 0.3
)

var byproductPattern = regexp.MustCompile(`(?i)\bby[-\s]?prod`)
var ureaPattern = regexp.MustCompile(`(?i)urea`)

// DeriveFeeds is the pure []FeedRow -> []EnrichedFeed mapping (§4.3). Rows
// with an empty name are dropped.
func DeriveFeeds(rows []FeedRow) []EnrichedFeed {
	out := make([]EnrichedFeed, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		out = append(out, deriveFeed(row))
	}
	return out
}

func deriveFeed(row FeedRow) EnrichedFeed {
	clampNonNeg := func(v float64) float64 {
		if v < 0 || math.IsNaN(v) {
			return 0
		}
		return v
	}

	ef := EnrichedFeed{FeedRow: row}

	ef.OM = clampNonNeg(100 - row.Ash)
	ef.NFC = clampNonNeg(ef.OM - (row.NDF + row.EE + row.CP))
	ef.NDFIP = row.NDIN * 6.25
	ef.ADFIP = row.ADIN * 6.25
	ef.NDFN = clampNonNeg(row.NDF - ef.NDFIP)
	ef.TDNFC = clampNonNeg(0.98 * (100 - (ef.NDFN + row.CP + row.EE + row.Ash)))

	switch row.Category {
	case CategoryMinerals, CategoryAdditive, CategorySugarSugarAlcohol:
		ef.TDCP = 0
	default:
		if row.Type == FeedTypeForage || row.Type == FeedTypeConcentrate {
			if row.CP != 0 {
				ef.TDCP = row.CP * math.Exp(-1.2*(ef.ADFIP/row.CP))
			}
		}
	}

	ef.FA = clampNonNeg(row.EE - 1)

	if ef.NDFN > 0 {
		ef.TDNDF = clampNonNeg(0.75 * (ef.NDFN - row.LG) * (1 - math.Pow(row.LG/ef.NDFN, 0.667)))
	}

	ef.GE = clampNonNeg(row.CP*deCP/100 + ef.FA*deFA/100 + (100-row.CP-ef.FA-row.Ash)*0.042)
	if row.Category == CategoryMinerals {
		ef.GE = 0
	}

	ef.DE = clampNonNeg(ef.TDNFC/100*deNFC + ef.TDNDF/100*deNDF + ef.TDCP/100*deCP + ef.FA/100*deFA - deLossConstant)
	if row.Category == CategoryAdditive && row.NPNCP > 0 {
		ef.DE *= 1 - row.CP*row.NPNCP/28200
	}
	if row.Category == CategoryMinerals {
		ef.DE = 0
	}

	ef.ME = clampNonNeg(0.82 * ef.DE)
	ef.TDN = clampNonNeg(100 * ef.DE / 4.4)
	ef.NEL = clampNonNeg(0.0245*ef.TDN - 0.12)
	if row.Category == CategoryMinerals {
		ef.ME, ef.TDN, ef.NEL = 0, 0, 0
	}

	acCa := row.ACCa
	if acCa == 0 {
		switch {
		case row.Category == CategoryMinerals:
			acCa = 0.6
		case row.Type == FeedTypeForage:
			acCa = 0.4
		default:
			acCa = 0.6
		}
	}
	acP := row.ACP
	if acP == 0 {
		switch {
		case row.Category == CategoryMinerals:
			acP = 0.7
		case row.Type == FeedTypeForage:
			acP = 0.64
		default:
			acP = 0.7
		}
	}

	if row.Type == FeedTypeConcentrate && row.Category == CategoryMinerals {
		ef.Type = FeedTypeMinerals
	}

	ef.IsFat = row.EE > 50
	ef.IsMineral = ef.Type == FeedTypeMinerals
	ef.IsConcentrate = ef.Type == FeedTypeConcentrate
	ef.IsByproduct = byproductPattern.MatchString(row.Category)

	ef.MaskStraw = ef.Type == FeedTypeForage && row.DM > 85
	ef.MaskMoistForage = ef.Type == FeedTypeForage && row.DM < 80
	ef.MaskLQF = ef.Type == FeedTypeForage && row.CP < 7 && row.NDF > 72 && !ef.MaskStraw
	ef.MaskWetByprod = ef.IsByproduct && row.DM < 30
	ef.MaskWetOther = ef.Type != FeedTypeForage && row.DM < 21
	ef.MaskConcAll = ef.IsConcentrate
	ef.MaskUrea = ureaPattern.MatchString(row.Name)

	ef.CPKgPerKgDM = row.CP / 100
	ef.NDFKgPerKgDM = row.NDF / 100
	ef.STKgPerKgDM = row.ST / 100
	ef.EEKgPerKgDM = row.EE / 100
	ef.CaKgPerKgDM = row.Ca * acCa / 100
	ef.PKgPerKgDM = row.P * acP / 100
	if ef.Type == FeedTypeForage {
		ef.ForageNDFKgPerKgDM = ef.NDFKgPerKgDM
	}

	dmFrac := row.DM / 100
	if dmFrac > 0 {
		ef.CostPerDMKg = row.PriceAsFedPerKg / dmFrac
	}

	return ef
}
