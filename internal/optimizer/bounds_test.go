package optimizer

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"ration/internal/domain"
)

type BoundsSuite struct {
	suite.Suite
}

func TestBoundsSuite(t *testing.T) {
	suite.Run(t, new(BoundsSuite))
}

func (s *BoundsSuite) requirements() domain.Requirements {
	a := domain.AnimalInputs{
		State: domain.StateLactatingCow, Breed: domain.BreedHolstein, BodyWeightKg: 650,
		TargetMilkLD: 25, MilkTrueProteinPct: 3.2, MilkFatPct: 3.8, EnvTempC: 20,
	}.Normalize()
	r, err := domain.CalculateRequirements(a)
	s.Require().NoError(err)
	return r
}

func (s *BoundsSuite) TestDMIBoundsMatchTargetFraction() {
	req := s.requirements()
	feeds := domain.DeriveFeeds([]domain.FeedRow{
		{ID: "a", Name: "Corn Silage", Type: domain.FeedTypeForage, Category: "Forage", DM: 35, CP: 8, PriceAsFedPerKg: 3},
	})
	b := ComputeBounds(feeds, req)
	n := b.NIngredients()
	s.InDelta(domain.DMILo*req.TargetDMI, b.Lo[n], 1e-9)
	s.InDelta(domain.DMIHi*req.TargetDMI, b.Hi[n], 1e-9)
}

func (s *BoundsSuite) TestMineralBoundsConvertedFromKg() {
	req := s.requirements()
	mineral := domain.FeedRow{ID: "min", Name: "Mineral Premix", Type: domain.FeedTypeMinerals, Category: domain.CategoryMinerals, DM: 98, PriceAsFedPerKg: 40}
	other := domain.FeedRow{ID: "a", Name: "Corn Silage", Type: domain.FeedTypeForage, Category: "Forage", DM: 35, CP: 8, PriceAsFedPerKg: 3}
	feeds := domain.DeriveFeeds([]domain.FeedRow{mineral, other})
	b := ComputeBounds(feeds, req)

	thr := domain.Thresholds[req.State]
	s.InDelta(thr.MineralMaxKg/req.TargetDMI, b.Hi[0], 1e-9)
	s.Less(b.Hi[0], 1.0)
}

func (s *BoundsSuite) TestUreaFeedCappedByUreaMax() {
	req := s.requirements()
	urea := domain.FeedRow{ID: "urea", Name: "Feed Grade Urea", Type: domain.FeedTypeAdditive, Category: domain.CategoryAdditive, DM: 99, CP: 281, PriceAsFedPerKg: 25}
	feeds := domain.DeriveFeeds([]domain.FeedRow{urea})
	b := ComputeBounds(feeds, req)

	thr := domain.Thresholds[req.State]
	s.InDelta(thr.UreaMax, b.Hi[0], 1e-9)
}

func (s *BoundsSuite) TestLowerBoundsRescaledWhenTheySumAboveOne() {
	req := s.requirements()
	// A tiny target DMI turns each mineral's kg/d floor into a proportion of
	// 0.05/0.06 (about 0.83), so two mineral feeds ask for a combined minimum
	// of about 1.67; ComputeBounds scales the floors down to sum to 0.95.
	req.TargetDMI = 0.06
	mineral := domain.FeedRow{ID: "min", Name: "Mineral Premix", Type: domain.FeedTypeMinerals, Category: domain.CategoryMinerals, DM: 98, PriceAsFedPerKg: 40}
	other := domain.FeedRow{ID: "min2", Name: "Mineral Premix B", Type: domain.FeedTypeMinerals, Category: domain.CategoryMinerals, DM: 98, PriceAsFedPerKg: 40}
	feeds := domain.DeriveFeeds([]domain.FeedRow{mineral, other})
	b := ComputeBounds(feeds, req)
	s.LessOrEqual(b.Lo[0], b.Hi[0])
	s.LessOrEqual(b.Lo[1], b.Hi[1])
	s.InDelta(0.95, b.Lo[0]+b.Lo[1], 1e-9)
}
