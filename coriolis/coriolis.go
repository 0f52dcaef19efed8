// Package coriolis precomputes the local-to-ENU basis for a firing
// latitude and azimuth and evaluates the Coriolis acceleration term the
// integrators add to gravity, following the same mat64-backed vector
// conventions the rest of this module's linear algebra uses.
package coriolis

import (
	"math"

	"github.com/gonum/matrix/mat64"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

// earthAngularRateRadPerSec is Earth's rotation rate, rad/s.
const earthAngularRateRadPerSec = 7.292115e-5

// earthGravityImperialFtS2 is the fixed standard-gravity magnitude (ft/s^2)
// the flat-fire vertical offset is scaled by. It is independent of a shot's
// Config.GravityConstant, matching the source's use of a bare physical
// constant rather than a caller-tunable one here.
const earthGravityImperialFtS2 = 32.17405

// Coriolis precomputes the local-to-ENU basis rows and latitude coefficients
// for a fixed firing latitude and azimuth. FlatFireOnly disables the
// per-step local acceleration term while leaving RangeAdjustment available.
type Coriolis struct {
	FlatFireOnly   bool
	MuzzleVelocityFps float64

	sinLat, cosLat float64
	sinAz, cosAz   float64

	// basis rows expressing the local (range, up, cross) frame in ENU:
	// rangeEast/rangeNorth give the horizontal range axis's ENU projection,
	// crossEast/crossNorth give the horizontal cross axis's ENU projection.
	rangeEast, rangeNorth float64
	crossEast, crossNorth float64
}

// New builds a Coriolis precomputation for a firing latitude (radians,
// positive north) and azimuth (radians, clockwise from north).
func New(latitudeRad, azimuthRad, muzzleVelocityFps float64, flatFireOnly bool) Coriolis {
	sinLat, cosLat := math.Sincos(latitudeRad)
	sinAz, cosAz := math.Sincos(azimuthRad)
	return Coriolis{
		FlatFireOnly:      flatFireOnly,
		MuzzleVelocityFps: muzzleVelocityFps,
		sinLat:            sinLat,
		cosLat:            cosLat,
		sinAz:             sinAz,
		cosAz:             cosAz,
		rangeEast:         sinAz,
		rangeNorth:        cosAz,
		crossEast:         cosAz,
		crossNorth:        -sinAz,
	}
}

// basisRows returns the three rows of the local-to-ENU transform, as
// mat64.Vectors, so the forward and transposed (ENU-to-local) transforms
// can be applied with the package-level mat64.Dot the way the rest of this
// module's linear algebra does.
func (c Coriolis) basisRows() (east, north, up *mat64.Vector) {
	east = mat64.NewVector(3, []float64{c.rangeEast, 0, c.crossEast})
	north = mat64.NewVector(3, []float64{c.rangeNorth, 0, c.crossNorth})
	up = mat64.NewVector(3, []float64{0, 1, 0})
	return
}

func vecToMat(v v3.Vec) *mat64.Vector {
	return mat64.NewVector(3, []float64{v.X, v.Y, v.Z})
}

func crossVec(a, b *mat64.Vector) *mat64.Vector {
	rslt := mat64.NewVector(3, nil)
	rslt.SetVec(0, a.At(1, 0)*b.At(2, 0)-a.At(2, 0)*b.At(1, 0))
	rslt.SetVec(1, a.At(2, 0)*b.At(0, 0)-a.At(0, 0)*b.At(2, 0))
	rslt.SetVec(2, a.At(0, 0)*b.At(1, 0)-a.At(1, 0)*b.At(0, 0))
	return rslt
}

// LocalAcceleration returns the Coriolis acceleration a = -2*omega x v_ENU,
// transformed back into the local frame, for current local velocity v. It
// is the zero vector whenever FlatFireOnly is set.
func (c Coriolis) LocalAcceleration(v v3.Vec) v3.Vec {
	if c.FlatFireOnly {
		return v3.Vec{}
	}

	local := vecToMat(v)
	east, north, up := c.basisRows()
	vENU := mat64.NewVector(3, []float64{
		mat64.Dot(east, local),
		mat64.Dot(north, local),
		mat64.Dot(up, local),
	})

	omega := mat64.NewVector(3, []float64{0, earthAngularRateRadPerSec * c.cosLat, earthAngularRateRadPerSec * c.sinLat})
	aENU := crossVec(omega, vENU)
	aENU.ScaleVec(-2, aENU)

	// The basis rows are orthonormal, so the ENU-to-local transform is the
	// transpose: project aENU onto each basis row's contribution per axis.
	aLocalRange := east.At(0, 0)*aENU.At(0, 0) + north.At(0, 0)*aENU.At(1, 0) + up.At(0, 0)*aENU.At(2, 0)
	aLocalUp := east.At(1, 0)*aENU.At(0, 0) + north.At(1, 0)*aENU.At(1, 0) + up.At(1, 0)*aENU.At(2, 0)
	aLocalCross := east.At(2, 0)*aENU.At(0, 0) + north.At(2, 0)*aENU.At(1, 0) + up.At(2, 0)*aENU.At(2, 0)
	return v3.New(aLocalRange, aLocalUp, aLocalCross)
}

// RangeAdjustment returns the flat-fire (y, z) offset applied to a
// trajectory point with downrange distance distanceFt, drop dropFt, at time
// of flight t. It is the identity offset (0, 0) whenever FlatFireOnly is
// false: this is the mode's whole purpose, a cheaper approximation that
// substitutes for the per-step local acceleration term rather than one that
// applies alongside it.
func (c Coriolis) RangeAdjustment(t, distanceFt, dropFt float64) (dy, dz float64) {
	if !c.FlatFireOnly {
		return 0, 0
	}

	horizontal := earthAngularRateRadPerSec * distanceFt * c.sinLat * t
	vertical := 0.0
	if c.sinAz != 0 {
		verticalFactor := -2.0 * earthAngularRateRadPerSec * c.MuzzleVelocityFps * c.cosLat * c.sinAz
		vertical = dropFt * (verticalFactor / earthGravityImperialFtS2)
	}
	return vertical, horizontal
}
