// Package interp implements the two interpolation primitives the rest of
// the engine is built on: 2-point linear interpolation and monotone 3-point
// PCHIP (Fritsch-Carlson) Hermite interpolation, both evaluated in Horner
// form for numerical stability.
package interp

import (
	"fmt"
	"math"
)

// ErrZeroDivision is returned by Interpolate2pt when the two x-knots coincide.
var ErrZeroDivision = fmt.Errorf("interp: zero division (x0 == x1)")

// Interpolate2pt performs linear interpolation: y0 + (y1-y0)*(x-x0)/(x1-x0).
// It fails with ErrZeroDivision when x0 == x1.
func Interpolate2pt(x, x0, y0, x1, y1 float64) (float64, error) {
	if x1 == x0 {
		return 0, ErrZeroDivision
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0), nil
}

func sign(a float64) int {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	default:
		return 0
	}
}

// pchipSlopes3 computes the monotone piecewise-cubic-Hermite slopes at three
// consecutive, strictly increasing knots.
func pchipSlopes3(x0, y0, x1, y1, x2, y2 float64) (m0, m1, m2 float64) {
	h0 := x1 - x0
	h1 := x2 - x1
	d0 := (y1 - y0) / h0
	d1 := (y2 - y1) / h1
	hSum := h0 + h1

	s0 := sign(d0)
	s1 := sign(d1)

	if s0*s1 <= 0 {
		m1 = 0
	} else {
		w1 := 2*h1 + h0
		w2 := h1 + 2*h0
		m1 = (w1 + w2) / (w1/d0 + w2/d1)
	}

	m0l := ((2*h0+h1)*d0 - h0*d1) / hSum
	if s0 != sign(m0l) {
		m0 = 0
	} else if absD0 := math.Abs(d0); math.Abs(m0l) > 3*absD0 {
		m0 = 3 * d0
	} else {
		m0 = m0l
	}

	m2l := ((2*h1+h0)*d1 - h1*d0) / hSum
	if s1 != sign(m2l) {
		m2 = 0
	} else if absD1 := math.Abs(d1); math.Abs(m2l) > 3*absD1 {
		m2 = 3 * d1
	} else {
		m2 = m2l
	}
	return
}

// hermite evaluates a cubic Hermite segment at x, in Horner form.
func hermite(x, xk, xk1, yk, yk1, mk, mk1 float64) float64 {
	h := xk1 - xk
	t := (x - xk) / h
	t2 := t * t
	t3 := t2 * t

	h00 := 2*t3 - 3*t2 + 1
	h10 := (t-2)*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := (t - 1) * t2

	return h00*yk + h*(h10*mk+h11*mk1) + h01*yk1
}

// Interpolate3pt performs monotone-preserving PCHIP interpolation at x given
// three support points, which are sorted internally by x even when callers
// believe they are already ordered (numerical hygiene, preserved verbatim
// from the source).
func Interpolate3pt(x, x0, x1, x2, y0, y1, y2 float64) float64 {
	if x1 < x0 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	if x2 < x1 {
		if x2 < x0 {
			x0, x1, x2 = x2, x0, x1
			y0, y1, y2 = y2, y0, y1
		} else {
			x1, x2 = x2, x1
			y1, y2 = y2, y1
		}
	}

	m0, m1, m2 := pchipSlopes3(x0, y0, x1, y1, x2, y2)

	if x <= x1 {
		return hermite(x, x0, x1, y0, y1, m0, m1)
	}
	return hermite(x, x1, x2, y1, y2, m1, m2)
}
