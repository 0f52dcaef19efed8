package atmosphere

import (
	"testing"

	"github.com/gonum/floats"
)

func standardAtmo() Atmosphere {
	return Atmosphere{
		T0C:          15.0,
		Alt0Ft:       0,
		P0HPa:        1013.25,
		Mach0Fps:     1116.45,
		DensityRatio: 1.0,
		LowestTempC:  -130,
	}
}

func TestCacheHitWithin30Feet(t *testing.T) {
	a := standardAtmo()
	dr, mach := a.UpdateDensityFactorAndMachForAltitude(20)
	if !floats.EqualWithinAbs(dr, a.DensityRatio, 1e-12) || !floats.EqualWithinAbs(mach, a.Mach0Fps, 1e-12) {
		t.Fatalf("expected cached base values within cache radius, got dr=%v mach=%v", dr, mach)
	}
}

func TestDensityAndMachPositiveAcrossAltitudes(t *testing.T) {
	a := standardAtmo()
	for _, h := range []float64{-500, 0, 500, 5000, 15000, 36089, 50000, 80000} {
		dr, mach := a.UpdateDensityFactorAndMachForAltitude(h)
		if dr <= 0 {
			t.Fatalf("density ratio not positive at h=%v: %v", h, dr)
		}
		if mach <= 0 {
			t.Fatalf("mach speed not positive at h=%v: %v", h, mach)
		}
	}
}

func TestDensityDecreasesWithAltitude(t *testing.T) {
	a := standardAtmo()
	low, _ := a.UpdateDensityFactorAndMachForAltitude(1000)
	high, _ := a.UpdateDensityFactorAndMachForAltitude(20000)
	if high >= low {
		t.Fatalf("expected density ratio to decrease with altitude: low=%v high=%v", low, high)
	}
}

func TestTemperatureClampFloor(t *testing.T) {
	a := standardAtmo()
	a.LowestTempC = -50
	_, machAtFloor := a.UpdateDensityFactorAndMachForAltitude(1e6)
	a.LowestTempC = -200
	_, machBelowFloor := a.UpdateDensityFactorAndMachForAltitude(1e6)
	if !(machBelowFloor < machAtFloor || floats.EqualWithinAbs(machBelowFloor, machAtFloor, 1e-6)) {
		t.Fatalf("lower clamp floor should allow colder (or equal) temperature and thus a lower or equal mach speed at extreme altitude")
	}
}

func TestWarnCallbackFiresAboveStratosphereBoundary(t *testing.T) {
	var fired bool
	SetWarnFunc(func(format string, args ...interface{}) { fired = true })
	defer SetWarnFunc(nil)

	a := standardAtmo()
	a.UpdateDensityFactorAndMachForAltitude(stratosphereBoundaryFt + 1000)
	if !fired {
		t.Fatalf("expected warn callback to fire above stratosphere boundary")
	}

	fired = false
	a.UpdateDensityFactorAndMachForAltitude(1000)
	if fired {
		t.Fatalf("warn callback should not fire below stratosphere boundary")
	}
}
