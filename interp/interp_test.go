package interp

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestInterpolate2pt(t *testing.T) {
	got, err := Interpolate2pt(5, 0, 0, 10, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floats.EqualWithinAbs(got, 50, 1e-9) {
		t.Fatalf("got %v, want 50", got)
	}
}

func TestInterpolate2ptZeroDivision(t *testing.T) {
	if _, err := Interpolate2pt(5, 3, 0, 3, 1); err != ErrZeroDivision {
		t.Fatalf("expected ErrZeroDivision, got %v", err)
	}
}

func TestInterpolate3ptExactAtKnots(t *testing.T) {
	x0, x1, x2 := 0.0, 1.0, 2.0
	y0, y1, y2 := 0.0, 1.0, 4.0
	for _, x := range []float64{x0, x1, x2} {
		want := map[float64]float64{x0: y0, x1: y1, x2: y2}[x]
		got := Interpolate3pt(x, x0, x1, x2, y0, y1, y2)
		if !floats.EqualWithinAbs(got, want, 1e-9) {
			t.Fatalf("at knot x=%v: got %v want %v", x, got, want)
		}
	}
}

func TestInterpolate3ptUnsortedInputsMatchSorted(t *testing.T) {
	sorted := Interpolate3pt(0.5, 0, 1, 2, 0, 1, 4)
	unsorted := Interpolate3pt(0.5, 2, 0, 1, 4, 0, 1)
	if !floats.EqualWithinAbs(sorted, unsorted, 1e-9) {
		t.Fatalf("expected sort-invariance, got %v vs %v", sorted, unsorted)
	}
}

func TestInterpolate3ptMonotonePreserving(t *testing.T) {
	// Monotone increasing data should never produce an interpolated dip.
	x0, x1, x2 := 0.0, 1.0, 3.0
	y0, y1, y2 := 0.0, 1.0, 1.01
	prev := math.Inf(-1)
	for x := x0; x <= x2; x += 0.05 {
		y := Interpolate3pt(x, x0, x1, x2, y0, y1, y2)
		if y < prev-1e-9 {
			t.Fatalf("interpolation not monotone at x=%v: y=%v < prev=%v", x, y, prev)
		}
		prev = y
	}
}
