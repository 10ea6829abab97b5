package domain

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type SeveritySuite struct {
	suite.Suite
}

func TestSeveritySuite(t *testing.T) {
	suite.Run(t, new(SeveritySuite))
}

func (s *SeveritySuite) requirements() Requirements {
	a := AnimalInputs{
		State: StateLactatingCow, Breed: BreedHolstein, BodyWeightKg: 650,
		TargetMilkLD: 25, MilkTrueProteinPct: 3.2, MilkFatPct: 3.8, EnvTempC: 20,
	}.Normalize()
	r, err := CalculateRequirements(a)
	s.Require().NoError(err)
	return r
}

func (s *SeveritySuite) TestDeviationMagnitudeLimitBasisOnlyCountsOver() {
	entry := ToleranceEntry{Basis: BasisLimit, Type: ToleranceMaximum}
	s.Equal(0.0, deviationMagnitude(entry, -10))
	s.Equal(10.0, deviationMagnitude(entry, 10))
}

func (s *SeveritySuite) TestDeviationMagnitudeMinimumOnlyCountsUnder() {
	entry := ToleranceEntry{Basis: BasisTarget, Type: ToleranceMinimum}
	s.Equal(0.0, deviationMagnitude(entry, 10))
	s.Equal(10.0, deviationMagnitude(entry, -10))
}

func (s *SeveritySuite) TestDeviationMagnitudeBothIsAbsolute() {
	entry := ToleranceEntry{Basis: BasisTarget, Type: ToleranceBoth}
	s.Equal(10.0, deviationMagnitude(entry, -10))
	s.Equal(10.0, deviationMagnitude(entry, 10))
}

func (s *SeveritySuite) TestClassifyBandPicksFirstMatchingInterval() {
	entry := ToleranceEntry{
		Perfect: Band{0, 2}, Good: Band{2, 5}, Marginal: Band{5, 10}, Infeasible: Band{10, 1e9},
	}
	s.Equal(SeverityPerfect, classifyBand(entry, 1))
	s.Equal(SeverityGood, classifyBand(entry, 3))
	s.Equal(SeverityMarginal, classifyBand(entry, 7))
	s.Equal(SeverityInfeasible, classifyBand(entry, 50))
}

func (s *SeveritySuite) TestWellFedDietClassifiesOptimalOrGood() {
	req := s.requirements()
	rows := []FeedRow{
		{ID: "corn-silage", Name: "Corn Silage", Type: FeedTypeForage, Category: "Forage", DM: 35, Ash: 4.5, CP: 8.5, EE: 3.0, NDF: 42, ADF: 24, LG: 2.8, NDIN: 0.5, ADIN: 0.2, Ca: 0.25, P: 0.22, PriceAsFedPerKg: 3.5},
		{ID: "corn-grain", Name: "Corn Grain", Type: FeedTypeConcentrate, Category: "Concentrate", DM: 88, Ash: 1.5, CP: 9, EE: 3.8, ST: 72, NDF: 9, ADF: 3, LG: 0.5, NDIN: 0.1, ADIN: 0.05, Ca: 0.03, P: 0.28, PriceAsFedPerKg: 4.4},
		{ID: "soy", Name: "Soybean Meal", Type: FeedTypeConcentrate, Category: "Concentrate", DM: 90, Ash: 6, CP: 48, EE: 1.5, NDF: 8, ADF: 6, LG: 0.5, NDIN: 0.6, ADIN: 0.3, Ca: 0.3, P: 0.65, PriceAsFedPerKg: 9},
	}
	feeds := DeriveFeeds(rows)
	quantities := []float64{10, 6, 4}
	supply, err := EvaluateSupply(quantities, feeds, req)
	s.Require().NoError(err)

	cs := BuildConstraints(supply, req, feeds, quantities, FinalEpsilon)
	result := ClassifySeverities(cs, supply, req)

	s.NotEqual(StatusInfeasible, result.Status)
	s.Empty(result.Conflicts)
}

func (s *SeveritySuite) TestStarvedDietClassifiesInfeasible() {
	req := s.requirements()
	rows := []FeedRow{
		{ID: "straw", Name: "Wheat Straw", Type: FeedTypeForage, Category: "Forage", DM: 90, Ash: 6, CP: 4, EE: 1, NDF: 78, ADF: 50, LG: 8, Ca: 0.1, P: 0.05, PriceAsFedPerKg: 1},
	}
	feeds := DeriveFeeds(rows)
	quantities := []float64{2} // far below target DMI
	supply, err := EvaluateSupply(quantities, feeds, req)
	s.Require().NoError(err)

	cs := BuildConstraints(supply, req, feeds, quantities, FinalEpsilon)
	result := ClassifySeverities(cs, supply, req)

	s.Equal(StatusInfeasible, result.Status)
}

func (s *SeveritySuite) TestDetectConflictsEmptyWhenDensityHealthy() {
	req := s.requirements()
	supply := SupplyResult{DMI: req.TargetDMI, Energy: req.NELTotal, MP: req.MPLactation + req.MPGrowth + req.MPPregnancy}
	conflicts := detectConflicts(supply, req)
	s.Empty(conflicts)
}
