// Package wind implements piecewise-constant wind segments and the cursor
// ("WindSock") the integrators sweep forward across a shot.
package wind

import (
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

// maxWindDistanceFeet is the sentinel distance used past the last segment.
const maxWindDistanceFeet = 1e8

// Wind is one piecewise-constant wind segment, valid from the end of the
// previous segment up to UntilDistanceFt.
type Wind struct {
	VelocityFps    float64
	DirectionFromRad float64
	UntilDistanceFt  float64
}

// vectorFor returns the horizontal wind velocity vector for this segment,
// in the engine's (x downrange, y up, z cross-range) frame.
func (w Wind) vectorFor() v3.Vec {
	return v3.New(
		w.VelocityFps*math.Cos(w.DirectionFromRad),
		0,
		w.VelocityFps*math.Sin(w.DirectionFromRad),
	)
}

// WindSock is a monotonically advancing cursor over an ordered list of Wind
// segments. The engine never queries a prior segment once the cursor has
// advanced past it.
type WindSock struct {
	segments []Wind
	index    int
	current  v3.Vec
	nextRange float64
}

// NewWindSock builds a cursor positioned at the first segment (or the zero,
// sentinel state if segments is empty).
func NewWindSock(segments []Wind) *WindSock {
	s := &WindSock{segments: segments}
	s.refresh()
	return s
}

// refresh recomputes current and nextRange from the cursor's current index.
func (s *WindSock) refresh() {
	if s.index >= len(s.segments) {
		s.current = v3.Vec{}
		s.nextRange = maxWindDistanceFeet
		return
	}
	seg := s.segments[s.index]
	s.current = seg.vectorFor()
	s.nextRange = seg.UntilDistanceFt
}

// CurrentVector returns the cached wind vector for the cursor's current
// segment without advancing it.
func (s *WindSock) CurrentVector() v3.Vec { return s.current }

// VectorForRange advances the cursor if x has reached the current segment's
// threshold, then returns the (possibly refreshed) current vector. Segments
// are consumed in order: once advanced past, a prior segment is never
// revisited.
func (s *WindSock) VectorForRange(x float64) v3.Vec {
	for x >= s.nextRange && s.index < len(s.segments) {
		s.index++
		s.refresh()
	}
	return s.current
}
