package wind

import (
	"testing"

	"github.com/gonum/floats"
)

func TestEmptyWindSockIsZeroWithInfiniteNextRange(t *testing.T) {
	s := NewWindSock(nil)
	v := s.CurrentVector()
	if v.X != 0 || v.Y != 0 || v.Z != 0 {
		t.Fatalf("expected zero vector, got %v", v)
	}
	if s.nextRange != maxWindDistanceFeet {
		t.Fatalf("expected sentinel next range, got %v", s.nextRange)
	}
}

func TestCursorAdvancesMonotonically(t *testing.T) {
	segs := []Wind{
		{VelocityFps: 10, DirectionFromRad: 0, UntilDistanceFt: 300},
		{VelocityFps: 20, DirectionFromRad: 1.5708, UntilDistanceFt: 600},
		{VelocityFps: 5, DirectionFromRad: 3.1416, UntilDistanceFt: 900},
	}
	s := NewWindSock(segs)

	v := s.VectorForRange(100)
	if !floats.EqualWithinAbs(v.X, 10, 1e-9) {
		t.Fatalf("expected first segment vector, got %v", v)
	}

	v = s.VectorForRange(299)
	if !floats.EqualWithinAbs(v.X, 10, 1e-9) {
		t.Fatalf("expected still first segment at x=299, got %v", v)
	}

	v = s.VectorForRange(301)
	if !floats.EqualWithinAbs(v.Z, 20, 1e-9) {
		t.Fatalf("expected second segment at x=301, got %v", v)
	}

	v = s.VectorForRange(1000)
	if v.X != 0 || v.Z != 0 {
		t.Fatalf("expected zero vector past final segment, got %v", v)
	}
	if s.index != len(segs) {
		t.Fatalf("expected cursor to have advanced past all segments, index=%v", s.index)
	}
}

func TestCursorNeverRevisitsPriorSegment(t *testing.T) {
	segs := []Wind{
		{VelocityFps: 10, DirectionFromRad: 0, UntilDistanceFt: 100},
		{VelocityFps: 20, DirectionFromRad: 0, UntilDistanceFt: 200},
	}
	s := NewWindSock(segs)
	s.VectorForRange(150)
	idxAfterFirstAdvance := s.index
	s.VectorForRange(160)
	if s.index < idxAfterFirstAdvance {
		t.Fatalf("cursor regressed: %v -> %v", idxAfterFirstAdvance, s.index)
	}
}
