// Package v3 implements the immutable 3-vector arithmetic shared by every
// other package in the engine: range-downrange (x), up (y) and cross-range
// (z) components, plus the fused-multiply-add helper the integrators lean on
// to avoid building intermediate vectors in the hot loop.
package v3

import "math"

// nearZero is the threshold below which a magnitude is treated as zero by
// Div and Norm; both then return the input unchanged rather than dividing.
const nearZero = 1e-10

// Vec is a 3-component vector: X is downrange, Y is up, Z is crossrange.
type Vec struct {
	X, Y, Z float64
}

// New builds a Vec from its components.
func New(x, y, z float64) Vec { return Vec{X: x, Y: y, Z: z} }

// Add returns a+b.
func (a Vec) Add(b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b.
func (a Vec) Sub(b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Neg returns -a.
func (a Vec) Neg() Vec { return Vec{-a.X, -a.Y, -a.Z} }

// MulS returns a*s.
func (a Vec) MulS(s float64) Vec { return Vec{a.X * s, a.Y * s, a.Z * s} }

// DivS returns a/s. If |s| is below nearZero, a is returned unchanged rather
// than failing — division stays total at the cost of silently no-op-ing on
// degenerate scalars (matches the source's v3d operator/).
func (a Vec) DivS(s float64) Vec {
	if math.Abs(s) < nearZero {
		return a
	}
	return a.MulS(1.0 / s)
}

// Dot returns the inner product a·b.
func (a Vec) Dot(b Vec) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Mag returns the Euclidean norm ‖a‖.
func (a Vec) Mag() float64 { return math.Sqrt(a.Dot(a)) }

// Norm returns a/‖a‖, or a unchanged when ‖a‖ < nearZero.
func (a Vec) Norm() Vec {
	m := a.Mag()
	if math.Abs(m) < nearZero {
		return a
	}
	return a.MulS(1.0 / m)
}

// FusedMulAdd returns a + b*s — the `a.fused_multiply_add(b, s)` equivalent
// of `a += b * s`, kept as a value-returning helper since Vec is immutable.
func (a Vec) FusedMulAdd(b Vec, s float64) Vec {
	return Vec{a.X + b.X*s, a.Y + b.Y*s, a.Z + b.Z*s}
}

// LinearCombination returns a*sa + b*sb in one pass, matching the source's
// linear_combination(dst = a*s1 + b*s2) used to fold gravity+coriolis and
// drag into a single acceleration expression without a temporary vector.
func LinearCombination(a Vec, sa float64, b Vec, sb float64) Vec {
	return Vec{a.X*sa + b.X*sb, a.Y*sa + b.Y*sb, a.Z*sa + b.Z*sb}
}
