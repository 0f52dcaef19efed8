// Package trajdata holds the per-step trajectory record types: the compact
// BaseTrajData emitted by the integrators, the dense append-mostly
// BaseTrajSeq buffer with PCHIP-interpolated lookup, and the processed,
// caller-facing TrajectoryData record.
package trajdata

import (
	"fmt"
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/interp"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

// TrajFlag is a bitset of event kinds a TrajectoryData row can carry.
type TrajFlag uint32

const (
	FlagNone    TrajFlag = 0
	FlagZeroUp  TrajFlag = 1
	FlagZeroDown TrajFlag = 2
	FlagZero    TrajFlag = FlagZeroUp | FlagZeroDown
	FlagMach    TrajFlag = 4
	FlagRange   TrajFlag = 8
	FlagApex    TrajFlag = 16
	FlagAll     TrajFlag = 31
	FlagMRT     TrajFlag = 32
)

// TerminationReason records why an integration loop stopped.
type TerminationReason int

const (
	NoTerminate TerminationReason = iota
	TargetRangeReached
	MinimumVelocityReached
	MaximumDropReached
	MinimumAltitudeReached
	HandlerRequestedStop
)

// BaseTrajData is one accepted integration point: time, position, velocity
// and the local Mach-1 speed at that point.
type BaseTrajData struct {
	Time     float64
	Position v3.Vec
	Velocity v3.Vec
	Mach     float64
}

// Key identifies which field of a BaseTrajData a lookup or interpolation is
// keyed on.
type Key int

const (
	KeyTime Key = iota
	KeyMach
	KeyPosX
	KeyPosY
	KeyPosZ
	KeyVelX
	KeyVelY
	KeyVelZ
)

// Value extracts the scalar named by k from d.
func (d BaseTrajData) Value(k Key) float64 {
	switch k {
	case KeyTime:
		return d.Time
	case KeyMach:
		return d.Mach
	case KeyPosX:
		return d.Position.X
	case KeyPosY:
		return d.Position.Y
	case KeyPosZ:
		return d.Position.Z
	case KeyVelX:
		return d.Velocity.X
	case KeyVelY:
		return d.Velocity.Y
	case KeyVelZ:
		return d.Velocity.Z
	default:
		panic(fmt.Sprintf("trajdata: invalid key %d", k))
	}
}

// ErrIndex is returned by GetItem on an out-of-bounds index.
var ErrIndex = fmt.Errorf("trajdata: index out of bounds")

// ErrValue is returned when an operation's shape precondition is violated,
// e.g. fewer than 3 points for PCHIP interpolation or a degenerate key.
var ErrValue = fmt.Errorf("trajdata: value error")

const minCapacity = 256

// BaseTrajSeq is an append-mostly contiguous buffer of BaseTrajData. It
// grows geometrically from minCapacity and never reallocates in place
// without copying all existing records. Its lifetime is one integration
// call.
type BaseTrajSeq struct {
	data []BaseTrajData
}

// NewBaseTrajSeq returns an empty sequence pre-sized to minCapacity.
func NewBaseTrajSeq() *BaseTrajSeq {
	return &BaseTrajSeq{data: make([]BaseTrajData, 0, minCapacity)}
}

// Append adds d to the end of the sequence; amortised O(1).
func (s *BaseTrajSeq) Append(d BaseTrajData) {
	s.data = append(s.data, d)
}

// Len returns the number of records.
func (s *BaseTrajSeq) Len() int { return len(s.data) }

// GetItem returns the i-th record, supporting negative indices (Python-style,
// counting from the end). Fails with ErrIndex when out of bounds.
func (s *BaseTrajSeq) GetItem(i int) (BaseTrajData, error) {
	n := len(s.data)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return BaseTrajData{}, ErrIndex
	}
	return s.data[i], nil
}

// bisectCenter returns an index c such that [c-1, c, c+1] is a valid 3-point
// stencil, clamped to [1, n-2]. It binary-searches using key as the
// projector, respecting the monotonicity direction implied by the sequence's
// endpoints (the sequence need not be globally monotone in non-time keys).
func (s *BaseTrajSeq) bisectCenter(key Key, target float64) int {
	n := len(s.data)
	lo, hi := 0, n-1
	ascending := s.data[hi].Value(key) >= s.data[lo].Value(key)

	for lo < hi {
		mid := (lo + hi) / 2
		v := s.data[mid].Value(key)
		if (ascending && v < target) || (!ascending && v > target) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	c := lo
	if c < 1 {
		c = 1
	}
	if c > n-2 {
		c = n - 2
	}
	return c
}

// GetAt locates the point at which key equals value, using startTimeHint (if
// positive and key != KeyTime) to narrow the search by time first, then
// falls back to bisectCenter; it returns an exact record when the match is
// within 1e-9 of an existing sample, else a 3-point PCHIP interpolation.
// Fails with ErrValue when fewer than 3 points exist.
func (s *BaseTrajSeq) GetAt(key Key, value, startTimeHint float64) (BaseTrajData, error) {
	n := len(s.data)
	if n < 3 {
		return BaseTrajData{}, ErrValue
	}

	var c int
	if startTimeHint > 0 && key != KeyTime {
		c = s.bisectCenter(KeyTime, startTimeHint)
		c = s.sweepToBracket(key, value, c)
	} else {
		c = s.bisectCenter(key, value)
	}

	if d := s.data[c]; absFloat(d.Value(key)-value) < 1e-9 {
		return d, nil
	}

	return s.interpolateAt(key, value, c), nil
}

// sweepToBracket nudges the stencil center c forward then backward to find
// a 3-point window that brackets value under key, starting from a
// time-located center.
func (s *BaseTrajSeq) sweepToBracket(key Key, value float64, c int) int {
	n := len(s.data)
	for c < n-2 && !brackets(s.data[c-1].Value(key), s.data[c+1].Value(key), value) {
		c++
	}
	for c > 1 && !brackets(s.data[c-1].Value(key), s.data[c+1].Value(key), value) {
		c--
	}
	if c < 1 {
		c = 1
	}
	if c > n-2 {
		c = n - 2
	}
	return c
}

func brackets(lo, hi, v float64) bool {
	if lo <= hi {
		return lo <= v && v <= hi
	}
	return hi <= v && v <= lo
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// InterpolateTriple PCHIP-interpolates a full BaseTrajData at the point
// where keyFunc(p) equals target, given a 3-point stencil. Any field for
// which keyFunc's synthetic key equals the BaseTrajData's own field is
// still interpolated in the generic case; callers that want the vectorised
// identity shortcut for a named Key should use interpolateAt/GetAt instead.
func InterpolateTriple(keyFunc func(BaseTrajData) float64, target float64, p0, p1, p2 BaseTrajData) BaseTrajData {
	x0, x1, x2 := keyFunc(p0), keyFunc(p1), keyFunc(p2)
	ip := func(y0, y1, y2 float64) float64 {
		return interp.Interpolate3pt(target, x0, x1, x2, y0, y1, y2)
	}
	return BaseTrajData{
		Time: ip(p0.Time, p1.Time, p2.Time),
		Position: v3.New(
			ip(p0.Position.X, p1.Position.X, p2.Position.X),
			ip(p0.Position.Y, p1.Position.Y, p2.Position.Y),
			ip(p0.Position.Z, p1.Position.Z, p2.Position.Z),
		),
		Velocity: v3.New(
			ip(p0.Velocity.X, p1.Velocity.X, p2.Velocity.X),
			ip(p0.Velocity.Y, p1.Velocity.Y, p2.Velocity.Y),
			ip(p0.Velocity.Z, p1.Velocity.Z, p2.Velocity.Z),
		),
		Mach: ip(p0.Mach, p1.Mach, p2.Mach),
	}
}

func (s *BaseTrajSeq) interpolateAt(key Key, value float64, c int) BaseTrajData {
	p0, p1, p2 := s.data[c-1], s.data[c], s.data[c+1]
	x0, x1, x2 := p0.Value(key), p1.Value(key), p2.Value(key)

	interpField := func(f func(BaseTrajData) float64) float64 {
		return interp.Interpolate3pt(value, x0, x1, x2, f(p0), f(p1), f(p2))
	}

	return BaseTrajData{
		Time: identityOr(key, KeyTime, value, interpField(func(d BaseTrajData) float64 { return d.Time })),
		Position: v3.New(
			identityOr(key, KeyPosX, value, interpField(func(d BaseTrajData) float64 { return d.Position.X })),
			identityOr(key, KeyPosY, value, interpField(func(d BaseTrajData) float64 { return d.Position.Y })),
			identityOr(key, KeyPosZ, value, interpField(func(d BaseTrajData) float64 { return d.Position.Z })),
		),
		Velocity: v3.New(
			identityOr(key, KeyVelX, value, interpField(func(d BaseTrajData) float64 { return d.Velocity.X })),
			identityOr(key, KeyVelY, value, interpField(func(d BaseTrajData) float64 { return d.Velocity.Y })),
			identityOr(key, KeyVelZ, value, interpField(func(d BaseTrajData) float64 { return d.Velocity.Z })),
		),
		Mach: identityOr(key, KeyMach, value, interpField(func(d BaseTrajData) float64 { return d.Mach })),
	}
}

// identityOr implements the vectorised-interpolation identity shortcut: when
// the field being built is the key field itself, its value is set directly
// to the requested value instead of being interpolated.
func identityOr(key, field Key, value, interpolated float64) float64 {
	if key == field {
		return value
	}
	return interpolated
}

// GetAtSlantHeight locates the point at which h = y*cos(la) - x*sin(la)
// equals value, using the same strategy as GetAt with a synthetic key
// projector.
func (s *BaseTrajSeq) GetAtSlantHeight(la, value float64) (BaseTrajData, error) {
	n := len(s.data)
	if n < 3 {
		return BaseTrajData{}, ErrValue
	}
	cosLA, sinLA := cosSin(la)
	h := func(d BaseTrajData) float64 { return d.Position.Y*cosLA - d.Position.X*sinLA }

	lo, hi := 0, n-1
	ascending := h(s.data[hi]) >= h(s.data[lo])
	for lo < hi {
		mid := (lo + hi) / 2
		v := h(s.data[mid])
		if (ascending && v < value) || (!ascending && v > value) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	c := lo
	if c < 1 {
		c = 1
	}
	if c > n-2 {
		c = n - 2
	}

	if d := s.data[c]; absFloat(h(d)-value) < 1e-9 {
		return d, nil
	}

	p0, p1, p2 := s.data[c-1], s.data[c], s.data[c+1]
	x0, x1, x2 := h(p0), h(p1), h(p2)
	return BaseTrajData{
		Time: interp.Interpolate3pt(value, x0, x1, x2, p0.Time, p1.Time, p2.Time),
		Position: v3.New(
			interp.Interpolate3pt(value, x0, x1, x2, p0.Position.X, p1.Position.X, p2.Position.X),
			interp.Interpolate3pt(value, x0, x1, x2, p0.Position.Y, p1.Position.Y, p2.Position.Y),
			interp.Interpolate3pt(value, x0, x1, x2, p0.Position.Z, p1.Position.Z, p2.Position.Z),
		),
		Velocity: v3.New(
			interp.Interpolate3pt(value, x0, x1, x2, p0.Velocity.X, p1.Velocity.X, p2.Velocity.X),
			interp.Interpolate3pt(value, x0, x1, x2, p0.Velocity.Y, p1.Velocity.Y, p2.Velocity.Y),
			interp.Interpolate3pt(value, x0, x1, x2, p0.Velocity.Z, p1.Velocity.Z, p2.Velocity.Z),
		),
		Mach: interp.Interpolate3pt(value, x0, x1, x2, p0.Mach, p1.Mach, p2.Mach),
	}, nil
}

func cosSin(r float64) (float64, float64) {
	s, c := math.Sincos(r)
	return c, s
}

// TrajectoryData is the processed, caller-facing record built from a
// BaseTrajData plus the shot's geometry (spin drift, coriolis adjustment,
// slant/drop/windage decomposition).
type TrajectoryData struct {
	Time              float64
	DistanceFt        float64
	VelocityFps       float64
	Mach              float64
	HeightFt          float64
	SlantHeightFt     float64
	DropAngleRad      float64
	WindageFt         float64
	WindageAngleRad   float64
	SlantDistanceFt   float64
	AngleRad          float64
	DensityRatio      float64
	Drag              float64
	EnergyFtLb        float64
	OgwLb             float64
	Flag              TrajFlag
}
