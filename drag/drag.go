// Package drag implements the PCHIP drag-coefficient table over Mach number
// that the engine consumes: a prebuilt Curve of cubic segments plus the
// matching MachList of knot x-values. Acquiring the table (fitting a curve
// to a named drag function like G1/G7) is a host-program concern; this
// package only evaluates an already-built one.
package drag

import "math"

// Point is one cubic segment's Horner coefficients, expressed in local dx
// from its left knot: cd(dx) = d + dx*(c + dx*(b + dx*a)).
type Point struct {
	A, B, C, D float64
}

// Curve is an ordered sequence of cubic segments. A Curve of length n is
// matched with a MachList of length n+1: MachList[i] and MachList[i+1] are
// the knots bounding Curve[i].
type Curve []Point

// linearScanThreshold is the table size at or below which ByMach uses a
// linear scan instead of a binary search to locate the containing segment.
const linearScanThreshold = 15

// segmentFor returns the index i such that machList[i] <= m <= machList[i+1],
// clamping m outside the table to the nearest segment.
func segmentFor(machList []float64, m float64) int {
	n := len(machList) - 1 // number of segments
	if m <= machList[0] {
		return 0
	}
	if m >= machList[n] {
		return n - 1
	}
	if len(machList) <= linearScanThreshold {
		for i := 0; i < n; i++ {
			if m <= machList[i+1] {
				return i
			}
		}
		return n - 1
	}
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if machList[mid+1] < m {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > n-1 {
		lo = n - 1
	}
	return lo
}

// dragCoefficientConstant absorbs air density, cross-section and mass unit
// conversions into the scaling applied to the raw drag curve evaluation.
const dragCoefficientConstant = 2.08551e-4

// ByMach evaluates the drag curve at Mach m and returns the scaled drag
// coefficient divided by ballistic coefficient bc, ready to be multiplied by
// density ratio to form the drag factor km in the integrators. curve and machList must be non-empty and machList must have
// length len(curve)+1.
func ByMach(curve Curve, machList []float64, m, bc float64) float64 {
	i := segmentFor(machList, m)
	dx := m - machList[i]
	p := curve[i]
	cd := p.D + dx*(p.C+dx*(p.B+dx*p.A))
	return cd * dragCoefficientConstant / bc
}

// clampMach replaces a zero Mach-1 speed with 1e-6 to avoid division by
// zero immediately after a boundary transition in the integrator; any other
// value is returned as its absolute value.
func clampMach(mach float64) float64 {
	if mach == 0 {
		return 1e-6
	}
	return math.Abs(mach)
}

// ClampMach is the exported form of clampMach used by the integrators when
// converting relative speed to a Mach number.
func ClampMach(mach float64) float64 { return clampMach(mach) }
