package domain

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type FeedDeriverSuite struct {
	suite.Suite
}

func TestFeedDeriverSuite(t *testing.T) {
	suite.Run(t, new(FeedDeriverSuite))
}

func (s *FeedDeriverSuite) cornSilage() FeedRow {
	return FeedRow{
		ID: "corn-silage", Name: "Corn Silage", Type: FeedTypeForage, Category: "Forage",
		DM: 35, Ash: 4.5, CP: 8.5, EE: 3.0, CF: 22, NFE: 55, ST: 30,
		NDF: 42, ADF: 24, LG: 2.8, NDIN: 0.5, ADIN: 0.2, Ca: 0.25, P: 0.22,
		PriceAsFedPerKg: 3.5,
	}
}

func (s *FeedDeriverSuite) TestDropsEmptyNameRows() {
	rows := []FeedRow{s.cornSilage(), {Name: "  "}}
	out := DeriveFeeds(rows)
	s.Len(out, 1)
}

func (s *FeedDeriverSuite) TestDerivedFieldsAreNonNegative() {
	out := DeriveFeeds([]FeedRow{s.cornSilage()})
	s.Require().Len(out, 1)
	f := out[0]

	s.GreaterOrEqual(f.OM, 0.0)
	s.GreaterOrEqual(f.NFC, 0.0)
	s.GreaterOrEqual(f.TDNFC, 0.0)
	s.GreaterOrEqual(f.TDNDF, 0.0)
	s.GreaterOrEqual(f.GE, 0.0)
	s.GreaterOrEqual(f.DE, 0.0)
	s.GreaterOrEqual(f.ME, 0.0)
	s.GreaterOrEqual(f.TDN, 0.0)
}

func (s *FeedDeriverSuite) TestMineralCategoryZeroesEnergy() {
	row := FeedRow{ID: "min1", Name: "Mineral Premix", Type: FeedTypeMinerals, Category: CategoryMinerals, DM: 98, PriceAsFedPerKg: 40}
	out := DeriveFeeds([]FeedRow{row})
	s.Require().Len(out, 1)
	f := out[0]
	s.Equal(0.0, f.GE)
	s.Equal(0.0, f.DE)
	s.Equal(0.0, f.ME)
	s.Equal(0.0, f.TDN)
	s.Equal(0.0, f.NEL)
	s.Equal(0.0, f.TDCP)
	s.True(f.IsMineral)
}

func (s *FeedDeriverSuite) TestUreaCategoryDiscountsDigestibleEnergy() {
	withoutNPN := FeedRow{
		ID: "urea-base", Name: "Urea", Type: FeedTypeAdditive, Category: CategoryAdditive,
		DM: 99, Ash: 5, CP: 40, EE: 2, NPNCP: 0, PriceAsFedPerKg: 25,
	}
	withNPN := withoutNPN
	withNPN.NPNCP = 50

	base := DeriveFeeds([]FeedRow{withoutNPN})[0]
	discounted := DeriveFeeds([]FeedRow{withNPN})[0]

	s.Greater(base.DE, 0.0)
	s.Less(discounted.DE, base.DE)
	s.True(discounted.MaskUrea)
}

func (s *FeedDeriverSuite) TestConcentrateMineralsRetypedToMinerals() {
	row := FeedRow{ID: "limestone", Name: "Limestone", Type: FeedTypeConcentrate, Category: CategoryMinerals, DM: 98, PriceAsFedPerKg: 5}
	out := DeriveFeeds([]FeedRow{row})
	s.Equal(FeedTypeMinerals, out[0].Type)
}

func (s *FeedDeriverSuite) TestCategoryMasks() {
	straw := FeedRow{ID: "straw", Name: "Wheat Straw", Type: FeedTypeForage, Category: "Forage", DM: 90, CP: 4, NDF: 78, PriceAsFedPerKg: 1}
	moist := FeedRow{ID: "silage", Name: "Silage", Type: FeedTypeForage, Category: "Forage", DM: 35, CP: 9, NDF: 45, PriceAsFedPerKg: 3}
	lqf := FeedRow{ID: "lqf", Name: "Low Quality Forage", Type: FeedTypeForage, Category: "Forage", DM: 82, CP: 5, NDF: 75, PriceAsFedPerKg: 2}
	byprod := FeedRow{ID: "byprod", Name: "Wet Brewers Grains", Type: FeedTypeConcentrate, Category: "Byproduct", DM: 25, CP: 25, PriceAsFedPerKg: 2}
	wetOther := FeedRow{ID: "wet", Name: "Molasses", Type: FeedTypeConcentrate, Category: "Sugar/Sugar Alcohol", DM: 15, CP: 4, PriceAsFedPerKg: 4}

	out := DeriveFeeds([]FeedRow{straw, moist, lqf, byprod, wetOther})

	s.True(out[0].MaskStraw)
	s.True(out[1].MaskMoistForage)
	s.True(out[2].MaskLQF)
	s.False(out[2].MaskStraw)
	s.True(out[3].MaskWetByprod)
	s.True(out[4].MaskWetOther)
}

func (s *FeedDeriverSuite) TestCostPerDMKg() {
	row := FeedRow{ID: "c", Name: "Corn Grain", Type: FeedTypeConcentrate, Category: "Concentrate", DM: 88, CP: 9, PriceAsFedPerKg: 4.4}
	out := DeriveFeeds([]FeedRow{row})
	s.InDelta(4.4/0.88, out[0].CostPerDMKg, 1e-9)
}

// Round-trip: re-deriving an already-enriched feed's underlying FeedRow
// yields the same enriched feed (feed derivation is idempotent, §8 property 7).
func (s *FeedDeriverSuite) TestIdempotent() {
	first := DeriveFeeds([]FeedRow{s.cornSilage()})[0]
	second := DeriveFeeds([]FeedRow{first.FeedRow})[0]
	s.Equal(first, second)
}
