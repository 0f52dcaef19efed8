// Package shot defines the projectile+environment aggregate (ShotProps) the
// integrators and solvers operate on, plus the Config the engine holds for
// the lifetime of a solving session.
package shot

import (
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/atmosphere"
	"github.com/o-murphy/py-ballisticcalc-sub000/coriolis"
	"github.com/o-murphy/py-ballisticcalc-sub000/drag"
	"github.com/o-murphy/py-ballisticcalc-sub000/wind"
)

// Config holds solver tuning constants. It is created once per engine and
// is never mutated except through scoped value guards inside solvers.
type Config struct {
	StepMultiplier      float64
	ZeroFindingAccuracy float64
	MinimumVelocity     float64
	MaximumDrop         float64 // magnitude, ft
	MaxIterations       int
	GravityConstant     float64 // negative, ft/s^2
	MinimumAltitude     float64
}

// DefaultConfig mirrors the source's stock tuning constants.
func DefaultConfig() Config {
	return Config{
		StepMultiplier:      1.0,
		ZeroFindingAccuracy: 0.000005,
		MinimumVelocity:     50.0,
		MaximumDrop:         15000.0,
		MaxIterations:       20,
		GravityConstant:     -32.17405,
		MinimumAltitude:     -1500.0,
	}
}

// ShotProps aggregates a projectile's geometry, muzzle conditions, and the
// environment (atmosphere, wind, coriolis, drag table) it flies through.
// The Curve/MachList/Atmosphere/Coriolis/WindSock are exclusively owned by
// the ShotProps that holds them.
type ShotProps struct {
	BC               float64
	LookAngleRad     float64
	TwistInPerTurn   float64 // sign = twist direction
	LengthIn         float64
	DiameterIn       float64
	WeightGr         float64
	BarrelElevationRad float64
	BarrelAzimuthRad   float64
	SightHeightFt    float64
	CantCosine       float64
	CantSine         float64
	Alt0Ft           float64
	CalcStep         float64 // base dt, seconds; invariant: > 0
	MuzzleVelocityFps float64

	StabilityCoefficient float64 // computed; see UpdateStabilityCoefficient

	Curve    drag.Curve
	MachList []float64

	Atmo     atmosphere.Atmosphere
	Coriolis coriolis.Coriolis
	WindSock *wind.WindSock

	FilterFlags uint32
}

// UpdateStabilityCoefficient (re)derives StabilityCoefficient via Miller's
// formula: Sg = sd * fv * ftp. Sg is zero whenever any input is zero or any
// intermediate denominator is non-finite, rather than propagating NaN/Inf.
func (s *ShotProps) UpdateStabilityCoefficient() {
	if s.TwistInPerTurn == 0 || s.DiameterIn == 0 || s.WeightGr == 0 || s.LengthIn == 0 || s.MuzzleVelocityFps == 0 {
		s.StabilityCoefficient = 0
		return
	}

	twistRatio := s.TwistInPerTurn / s.DiameterIn
	lOverD := s.LengthIn / s.DiameterIn

	sd := 30 * s.WeightGr / (twistRatio * twistRatio * s.DiameterIn * s.DiameterIn * s.DiameterIn * lOverD * (1 + lOverD*lOverD))
	fv := math.Cbrt(s.MuzzleVelocityFps / 2800)

	tempF := (s.Atmo.T0C * 9.0 / 5.0) + 32.0
	pressureInHg := s.Atmo.P0HPa * 0.02953
	if pressureInHg == 0 {
		s.StabilityCoefficient = 0
		return
	}
	ftp := ((tempF + 460) / 519) * (29.92 / pressureInHg)

	sg := sd * fv * ftp
	if !isFinite(sd) || !isFinite(fv) || !isFinite(ftp) || !isFinite(sg) {
		s.StabilityCoefficient = 0
		return
	}
	s.StabilityCoefficient = sg
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SpinDriftFt returns the Litz spin-drift lateral offset (ft) at time of
// flight t. It is zero whenever twist or the stability coefficient is zero.
func (s *ShotProps) SpinDriftFt(t float64) float64 {
	if s.TwistInPerTurn == 0 || s.StabilityCoefficient == 0 {
		return 0
	}
	sign := 1.0
	if s.TwistInPerTurn < 0 {
		sign = -1.0
	}
	return sign * 1.25 * (s.StabilityCoefficient + 1.2) * math.Pow(t, 1.83) / 12.0
}
