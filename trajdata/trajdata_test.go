package trajdata

import (
	"testing"

	"github.com/gonum/floats"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

func buildSeq(n int) *BaseTrajSeq {
	s := NewBaseTrajSeq()
	for i := 0; i < n; i++ {
		t := float64(i) * 0.1
		s.Append(BaseTrajData{
			Time:     t,
			Position: v3.New(t*100, 10*t-2*t*t, 0),
			Velocity: v3.New(100, 10-4*t, 0),
			Mach:     1.5 - 0.1*t,
		})
	}
	return s
}

func TestGetItemNegativeIndex(t *testing.T) {
	s := buildSeq(5)
	last, err := s.GetItem(-1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := s.GetItem(4)
	if last.Time != want.Time {
		t.Fatalf("negative index mismatch: got %v want %v", last, want)
	}
}

func TestGetItemOutOfBounds(t *testing.T) {
	s := buildSeq(5)
	if _, err := s.GetItem(100); err != ErrIndex {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
	if _, err := s.GetItem(-100); err != ErrIndex {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
}

func TestGetAtFewerThanThreePointsFails(t *testing.T) {
	s := buildSeq(2)
	if _, err := s.GetAt(KeyTime, 0.05, 0); err != ErrValue {
		t.Fatalf("expected ErrValue, got %v", err)
	}
}

func TestGetAtExactSample(t *testing.T) {
	s := buildSeq(10)
	got, err := s.GetAt(KeyTime, 0.3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floats.EqualWithinAbs(got.Position.X, 30, 1e-6) {
		t.Fatalf("expected exact-sample match, got %v", got)
	}
}

func TestGetAtInterpolatesBetweenSamples(t *testing.T) {
	s := buildSeq(10)
	got, err := s.GetAt(KeyTime, 0.35, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floats.EqualWithinAbs(got.Time, 0.35, 1e-9) {
		t.Fatalf("expected time identity shortcut, got %v", got.Time)
	}
	if got.Position.X < 34 || got.Position.X > 36 {
		t.Fatalf("expected interpolated position near 35, got %v", got.Position.X)
	}
}

func TestGetAtSlantHeight(t *testing.T) {
	s := buildSeq(10)
	got, err := s.GetAtSlantHeight(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Time < 0 {
		t.Fatalf("expected non-negative time, got %v", got.Time)
	}
}
