package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RequirementsSuite struct {
	suite.Suite
}

func TestRequirementsSuite(t *testing.T) {
	suite.Run(t, new(RequirementsSuite))
}

// lactatingHolstein matches spec.md S1: Lactating Holstein, adequate diet.
func (s *RequirementsSuite) lactatingHolstein() AnimalInputs {
	return AnimalInputs{
		State:              StateLactatingCow,
		Breed:              BreedHolstein,
		BodyWeightKg:       650,
		BodyConditionScore: 3.0,
		Parity:             2,
		LactationDay:       100,
		TargetMilkLD:       25,
		MilkTrueProteinPct: 3.2,
		MilkFatPct:         3.8,
		EnvTempC:           20,
		Topography:         TopographyFlat,
	}.Normalize()
}

func (s *RequirementsSuite) TestRejectsUnrecognizedState() {
	_, err := CalculateRequirements(AnimalInputs{State: "Unicorn", BodyWeightKg: 500})
	s.Require().ErrorIs(err, ErrInvalidInput)
}

func (s *RequirementsSuite) TestRejectsNonPositiveBodyWeight() {
	a := s.lactatingHolstein()
	a.BodyWeightKg = 0
	_, err := CalculateRequirements(a)
	s.Require().ErrorIs(err, ErrInvalidInput)
}

// S5 — Baby calf short-circuits to a milk-feeding schedule.
func (s *RequirementsSuite) TestBabyCalfShortCircuit() {
	a := AnimalInputs{State: StateBabyCalf, BodyWeightKg: 40}.Normalize()
	r, err := CalculateRequirements(a)
	s.Require().NoError(err)
	s.True(r.IsBabyCalf())
	s.InDelta(4.0, r.MilkTotalLD, 1e-9)
	s.InDelta(2.0, r.MilkMorningLD, 1e-9)
	s.InDelta(2.0, r.MilkEveningLD, 1e-9)
}

func (s *RequirementsSuite) TestBabyCalfBodyWeightClampedBy100() {
	a := AnimalInputs{State: StateBabyCalf, BodyWeightKg: 140}.Normalize()
	s.InDelta(100, a.BodyWeightKg, 1e-9)
}

// S1 — a lactating Holstein produces a positive DMI and an NEL-basis energy
// requirement.
func (s *RequirementsSuite) TestLactatingHolsteinBasics() {
	r, err := CalculateRequirements(s.lactatingHolstein())
	s.Require().NoError(err)
	s.Equal("NEL", r.EnergyBasis)
	s.Greater(r.TargetDMI, 0.0)
	s.Greater(r.NELTotal, 0.0)
	s.Equal(0.0, r.METotal)
	s.Greater(r.MPLactation, 0.0)
}

func (s *RequirementsSuite) TestIndigenousBreedUsesAlternateDMIEquation() {
	holstein := s.lactatingHolstein()
	rHolstein, err := CalculateRequirements(holstein)
	s.Require().NoError(err)

	indigenous := holstein
	indigenous.Breed = BreedIndigenous
	rIndigenous, err := CalculateRequirements(indigenous)
	s.Require().NoError(err)

	s.NotEqual(rHolstein.TargetDMI, rIndigenous.TargetDMI)
}

func (s *RequirementsSuite) TestHotTemperatureLowersLactatingDMI() {
	baseline := s.lactatingHolstein()
	rBaseline, err := CalculateRequirements(baseline)
	s.Require().NoError(err)

	hot := baseline
	hot.EnvTempC = 35
	rHot, err := CalculateRequirements(hot)
	s.Require().NoError(err)

	s.Less(rHot.TargetDMI, rBaseline.TargetDMI)
}

func (s *RequirementsSuite) TestColdTemperatureLowersLactatingDMI() {
	baseline := s.lactatingHolstein()
	rBaseline, err := CalculateRequirements(baseline)
	s.Require().NoError(err)

	cold := baseline
	cold.EnvTempC = -10
	rCold, err := CalculateRequirements(cold)
	s.Require().NoError(err)

	s.Less(rCold.TargetDMI, rBaseline.TargetDMI)
}

// S3 — Dry cow 7 days pre-calving.
func (s *RequirementsSuite) TestDryCowPreCalving() {
	a := AnimalInputs{
		State:        StateDryCow,
		Breed:        BreedHolstein,
		Parity:       2,
		BodyWeightKg: 650,
		GestationDay: 273,
		EnvTempC:     -5,
	}.Normalize()

	r, err := CalculateRequirements(a)
	require.NoError(s.T(), err)

	s.Less(r.TargetDMI, 0.02*a.BodyWeightKg, "dry cow DMI target should be under 2%% of BW")
	s.Equal("NEL", r.EnergyBasis)
	s.Greater(r.NELTotal, 0.0)
	s.InDelta(3*a.BodyWeightKg, r.VitEReq, 1e-6)
}

func (s *RequirementsSuite) TestDryCowDMIUnaffectedByTemperature() {
	cold := AnimalInputs{State: StateDryCow, BodyWeightKg: 650, GestationDay: 273, EnvTempC: -5}.Normalize()
	neutral := cold
	neutral.EnvTempC = 20

	rCold, err := CalculateRequirements(cold)
	s.Require().NoError(err)
	rNeutral, err := CalculateRequirements(neutral)
	s.Require().NoError(err)

	// Dry Cow DMI has no temperature term of its own (§4.2); gestation day is
	// the only driver here, so the two should match exactly.
	s.InDelta(rNeutral.TargetDMI, rCold.TargetDMI, 1e-9)
}

// S4 — Heifer.
func (s *RequirementsSuite) TestHeifer() {
	a := AnimalInputs{
		State:              StateHeifer,
		Breed:              BreedHolstein,
		BodyWeightKg:       350,
		TargetFrameGainKgD: 0.8,
		GestationDay:       0,
		EnvTempC:           20,
	}.Normalize()

	r, err := CalculateRequirements(a)
	s.Require().NoError(err)

	want := 15.36 * (1 - math.Exp(-0.0022*350))
	s.InDelta(want, r.TargetDMI, 1e-6)
	s.Equal("ME", r.EnergyBasis)
	s.Greater(r.METotal, 0.0)
	s.Equal(0.0, r.NELTotal)
}

func (s *RequirementsSuite) TestHeiferCrossbredUsesAlternateDMIEquation() {
	a := AnimalInputs{State: StateHeifer, Breed: BreedCrossbred, BodyWeightKg: 350}.Normalize()
	r, err := CalculateRequirements(a)
	s.Require().NoError(err)
	want := 12.91 * (1 - math.Exp(-0.00295*350))
	s.InDelta(want, r.TargetDMI, 1e-6)
}

func (s *RequirementsSuite) TestGestationAddsNonZeroEnergyWhenActive() {
	notPregnant := AnimalInputs{State: StateDryCow, BodyWeightKg: 650, GestationDay: 0}.Normalize()
	pregnant := notPregnant
	pregnant.GestationDay = 200

	rNot, err := CalculateRequirements(notPregnant)
	s.Require().NoError(err)
	rPregnant, err := CalculateRequirements(pregnant)
	s.Require().NoError(err)

	s.Greater(rPregnant.NELTotal, rNot.NELTotal)
}

func (s *RequirementsSuite) TestNormalizeClampsParityAndHeiferOverride() {
	heifer := AnimalInputs{State: StateHeifer, Parity: 3}.Normalize()
	s.Equal(0, heifer.Parity)

	firstCalf := AnimalInputs{State: StateDryCow, Parity: 0}.Normalize()
	s.Equal(1, firstCalf.Parity)

	multiCalf := AnimalInputs{State: StateDryCow, Parity: 5}.Normalize()
	s.Equal(2, multiCalf.Parity)
}

func (s *RequirementsSuite) TestMineralsAndVitaminsAreNonNegative() {
	r, err := CalculateRequirements(s.lactatingHolstein())
	s.Require().NoError(err)

	s.GreaterOrEqual(r.CaReqKg, 0.0)
	s.GreaterOrEqual(r.PReqKg, 0.0)
	s.GreaterOrEqual(r.MgReq, 0.0)
	s.GreaterOrEqual(r.NaReq, 0.0)
	s.GreaterOrEqual(r.ClReq, 0.0)
	s.GreaterOrEqual(r.KReq, 0.0)
	s.GreaterOrEqual(r.SReq, 0.0)
	s.GreaterOrEqual(r.CoReq, 0.0)
	s.GreaterOrEqual(r.CuReq, 0.0)
	s.GreaterOrEqual(r.IReq, 0.0)
	s.GreaterOrEqual(r.FeReq, 0.0)
	s.GreaterOrEqual(r.MnReq, 0.0)
	s.GreaterOrEqual(r.SeReq, 0.0)
	s.GreaterOrEqual(r.ZnReq, 0.0)
	s.Greater(r.VitAReq, 0.0)
	s.Greater(r.VitDReq, 0.0)
	s.Greater(r.VitEReq, 0.0)
}

func (s *RequirementsSuite) TestDerivedThresholdsScaleWithTargetDMI() {
	r, err := CalculateRequirements(s.lactatingHolstein())
	s.Require().NoError(err)

	thr := Thresholds[StateLactatingCow]
	s.InDelta(thr.NDF*r.TargetDMI, r.NDFMax, 1e-9)
	s.InDelta(thr.NDFFor*r.TargetDMI, r.NDFForMin, 1e-9)
	s.InDelta(thr.StarchMax*r.TargetDMI, r.StarchMax, 1e-9)
	s.InDelta(thr.EEMax*r.TargetDMI, r.EEMax, 1e-9)
}
