// Package atmosphere implements the troposphere model: altitude to density
// ratio and local Mach-1 speed, matching the ICAO-style lapse-rate formula
// the source evaluates on every integration step.
package atmosphere

import "math"

const (
	// lapseRate is the troposphere temperature lapse rate, K per foot.
	lapseRate = -0.0019812
	// pressureExponent is the barometric formula exponent.
	pressureExponent = 5.255876
	// machCoeffMPerSqrtK is the Mach-1 coefficient in m/s per sqrt(Kelvin).
	machCoeffMPerSqrtK = 20.0467
	// metersToFeet converts meters to feet.
	metersToFeet = 3.280839895
	// cacheRadiusFt is the altitude band around the base altitude within
	// which cached base values are returned instead of recomputing.
	cacheRadiusFt = 30.0
	// stratosphereBoundaryFt is the altitude above which the troposphere
	// model becomes increasingly inaccurate; crossing it only warns.
	stratosphereBoundaryFt = 36089.0
	absoluteZeroC          = -273.15
)

// Atmosphere is an immutable troposphere model anchored at a base altitude,
// temperature and pressure.
type Atmosphere struct {
	T0C          float64 // base temperature, °C
	Alt0Ft       float64 // base altitude, ft
	P0HPa        float64 // base pressure, hPa
	Mach0Fps     float64 // base Mach-1 speed, fps
	DensityRatio float64 // base density ratio
	LowestTempC  float64 // clamp floor for computed temperature, °C
}

// warnFunc is called (if non-nil) when an altitude query crosses the
// stratosphere boundary; it never prevents the computation from completing.
var warnFunc func(format string, args ...interface{})

// SetWarnFunc installs the callback used to report altitudes above the
// stratosphere boundary. Passing nil disables the warning.
func SetWarnFunc(f func(format string, args ...interface{})) { warnFunc = f }

// UpdateDensityFactorAndMachForAltitude returns the density ratio and
// Mach-1 speed (fps) at altitude h. Within cacheRadiusFt of the base
// altitude it returns the cached base values verbatim; otherwise it
// evaluates the barometric formula and lapse rate.
func (a Atmosphere) UpdateDensityFactorAndMachForAltitude(h float64) (densityRatio, machFps float64) {
	if math.Abs(h-a.Alt0Ft) < cacheRadiusFt {
		return a.DensityRatio, a.Mach0Fps
	}

	if h > stratosphereBoundaryFt && warnFunc != nil {
		warnFunc("atmosphere: altitude %.1f ft is above the troposphere boundary (%.0f ft)", h, stratosphereBoundaryFt)
	}

	deltaH := h - a.Alt0Ft
	tC := deltaH*lapseRate + a.T0C
	if floor := math.Max(absoluteZeroC, a.LowestTempC); tC < floor {
		tC = floor
	}

	t0K := a.T0C + 273.15
	tK := tC + 273.15

	p := a.P0HPa * math.Pow(1+lapseRate*deltaH/t0K, pressureExponent)

	densityRatio = a.DensityRatio * (t0K * p) / (a.P0HPa * tK)
	machFps = math.Sqrt(tK) * machCoeffMPerSqrtK * metersToFeet
	return
}
