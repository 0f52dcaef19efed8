package v3

import (
	"testing"

	"github.com/gonum/floats"
)

func TestAddSub(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, -1, 0.5)
	sum := a.Add(b)
	if !floats.EqualWithinAbs(sum.X, 5, 1e-12) || !floats.EqualWithinAbs(sum.Y, 1, 1e-12) {
		t.Fatalf("unexpected sum: %+v", sum)
	}
	diff := a.Sub(b)
	if !floats.EqualWithinAbs(diff.X, -3, 1e-12) {
		t.Fatalf("unexpected diff: %+v", diff)
	}
}

func TestNegMulDiv(t *testing.T) {
	a := New(1, -2, 3)
	if n := a.Neg(); n != (Vec{-1, 2, -3}) {
		t.Fatalf("neg mismatch: %+v", n)
	}
	if m := a.MulS(2); m != (Vec{2, -4, 6}) {
		t.Fatalf("mul mismatch: %+v", m)
	}
	if d := a.DivS(2); !floats.EqualWithinAbs(d.X, 0.5, 1e-12) {
		t.Fatalf("div mismatch: %+v", d)
	}
}

func TestDivByNearZeroIsNoOp(t *testing.T) {
	a := New(1, 2, 3)
	if got := a.DivS(1e-12); got != a {
		t.Fatalf("expected unchanged vector, got %+v", got)
	}
}

func TestMagAndNorm(t *testing.T) {
	a := New(3, 4, 0)
	if !floats.EqualWithinAbs(a.Mag(), 5, 1e-12) {
		t.Fatalf("mag mismatch: %v", a.Mag())
	}
	n := a.Norm()
	if !floats.EqualWithinAbs(n.Mag(), 1, 1e-12) {
		t.Fatalf("norm magnitude mismatch: %v", n.Mag())
	}
}

func TestNormOfNearZeroIsUnchanged(t *testing.T) {
	a := New(1e-12, 0, 0)
	if got := a.Norm(); got != a {
		t.Fatalf("expected unchanged vector for near-zero norm, got %+v", got)
	}
}

func TestFusedMulAdd(t *testing.T) {
	a := New(1, 1, 1)
	b := New(2, 2, 2)
	got := a.FusedMulAdd(b, 0.5)
	want := New(2, 2, 2)
	if got != want {
		t.Fatalf("fused multiply-add mismatch: %+v", got)
	}
}

func TestLinearCombination(t *testing.T) {
	a := New(1, 0, 0)
	b := New(0, 1, 0)
	got := LinearCombination(a, 2, b, 3)
	want := New(2, 3, 0)
	if got != want {
		t.Fatalf("linear combination mismatch: %+v", got)
	}
}

func TestDotOrthogonal(t *testing.T) {
	a := New(1, 0, 0)
	b := New(0, 1, 0)
	if a.Dot(b) != 0 {
		t.Fatalf("expected orthogonal dot product 0, got %v", a.Dot(b))
	}
}
