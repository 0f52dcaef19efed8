package shot

import (
	"testing"

	"github.com/gonum/floats"
	"github.com/o-murphy/py-ballisticcalc-sub000/atmosphere"
)

func baseProps() *ShotProps {
	return &ShotProps{
		TwistInPerTurn:    10,
		DiameterIn:        0.308,
		WeightGr:          168,
		LengthIn:          1.2,
		MuzzleVelocityFps: 2750,
		Atmo: atmosphere.Atmosphere{
			T0C:   15,
			P0HPa: 1013.25,
		},
	}
}

func TestStabilityCoefficientPositiveForTypicalInputs(t *testing.T) {
	s := baseProps()
	s.UpdateStabilityCoefficient()
	if s.StabilityCoefficient <= 0 {
		t.Fatalf("expected positive stability coefficient, got %v", s.StabilityCoefficient)
	}
}

func TestStabilityCoefficientZeroWhenTwistIsZero(t *testing.T) {
	s := baseProps()
	s.TwistInPerTurn = 0
	s.UpdateStabilityCoefficient()
	if s.StabilityCoefficient != 0 {
		t.Fatalf("expected zero stability coefficient with zero twist, got %v", s.StabilityCoefficient)
	}
}

func TestStabilityCoefficientZeroWhenWeightIsZero(t *testing.T) {
	s := baseProps()
	s.WeightGr = 0
	s.UpdateStabilityCoefficient()
	if s.StabilityCoefficient != 0 {
		t.Fatalf("expected zero stability coefficient with zero weight, got %v", s.StabilityCoefficient)
	}
}

func TestSpinDriftZeroWhenTwistIsZero(t *testing.T) {
	s := baseProps()
	s.TwistInPerTurn = 0
	s.UpdateStabilityCoefficient()
	if d := s.SpinDriftFt(1.5); d != 0 {
		t.Fatalf("expected zero spin drift with zero twist, got %v", d)
	}
}

func TestSpinDriftSignMatchesTwistDirection(t *testing.T) {
	s := baseProps()
	s.UpdateStabilityCoefficient()
	s.TwistInPerTurn = -10
	neg := s.SpinDriftFt(1.0)
	s.TwistInPerTurn = 10
	pos := s.SpinDriftFt(1.0)
	if !floats.EqualWithinAbs(neg, -pos, 1e-9) {
		t.Fatalf("expected spin drift to flip sign with twist direction: neg=%v pos=%v", neg, pos)
	}
}

func TestDefaultConfigInvariants(t *testing.T) {
	c := DefaultConfig()
	if c.MaximumDrop <= 0 {
		t.Fatalf("expected positive magnitude MaximumDrop, got %v", c.MaximumDrop)
	}
	if c.GravityConstant >= 0 {
		t.Fatalf("expected negative gravity constant, got %v", c.GravityConstant)
	}
}
