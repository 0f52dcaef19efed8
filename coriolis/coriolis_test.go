package coriolis

import (
	"math"
	"testing"

	"github.com/gonum/floats"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

func TestFlatFireOnlyZeroesLocalAcceleration(t *testing.T) {
	c := New(0.7, 0.3, 2800, true)
	a := c.LocalAcceleration(v3.New(1000, 10, 0))
	if a.X != 0 || a.Y != 0 || a.Z != 0 {
		t.Fatalf("expected zero acceleration when flat_fire_only, got %v", a)
	}
}

func TestLocalAccelerationNonZeroWhenEnabled(t *testing.T) {
	c := New(0.7, 0.3, 2800, false)
	a := c.LocalAcceleration(v3.New(1000, 10, 0))
	if floats.EqualWithinAbs(a.Mag(), 0, 1e-15) {
		t.Fatalf("expected non-zero coriolis acceleration for a moving round, got %v", a)
	}
}

func TestLocalAccelerationMagnitudeBoundedByOmega(t *testing.T) {
	c := New(math.Pi/4, 0, 2800, false)
	v := v3.New(3000, 0, 0)
	a := c.LocalAcceleration(v)
	bound := 2 * earthAngularRateRadPerSec * v.Mag()
	if a.Mag() > bound+1e-9 {
		t.Fatalf("coriolis acceleration magnitude %v exceeds bound %v", a.Mag(), bound)
	}
}

func TestRangeAdjustmentIdentityWhenNotFlatFireOnly(t *testing.T) {
	c := New(0.5, 0.2, 2800, false)
	dy, dz := c.RangeAdjustment(2, 1000, 10)
	if dy != 0 || dz != 0 {
		t.Fatalf("expected identity adjustment when flat_fire_only is false, got dy=%v dz=%v", dy, dz)
	}
}

func TestRangeAdjustmentIdentityAtZeroTime(t *testing.T) {
	c := New(0.5, 0.2, 2800, true)
	dy, dz := c.RangeAdjustment(0, 0, 0)
	if dy != 0 || dz != 0 {
		t.Fatalf("expected identity adjustment at t=0, x=0, y=0, got dy=%v dz=%v", dy, dz)
	}
}

func TestRangeAdjustmentHorizontalLinearInDistanceAndTime(t *testing.T) {
	c := New(0.5, 0, 1000, true)
	_, dz1 := c.RangeAdjustment(2, 1000, 0)
	_, dz2 := c.RangeAdjustment(2, 2000, 0)
	if !floats.EqualWithinAbs(dz2, 2*dz1, 1e-9) {
		t.Fatalf("expected horizontal offset linear in distance: dz1=%v dz2=%v", dz1, dz2)
	}
}

func TestRangeAdjustmentVerticalZeroWhenAzimuthIsZero(t *testing.T) {
	c := New(0.5, 0, 2800, true)
	dy, _ := c.RangeAdjustment(2, 1000, 50)
	if dy != 0 {
		t.Fatalf("expected zero vertical offset at zero azimuth, got dy=%v", dy)
	}
}

func TestRangeAdjustmentVerticalNonZeroWithAzimuthAndDrop(t *testing.T) {
	c := New(0.5, math.Pi/4, 2800, true)
	dy, _ := c.RangeAdjustment(2, 1000, -50)
	if dy == 0 {
		t.Fatalf("expected a non-zero vertical offset with nonzero azimuth and drop")
	}
}
