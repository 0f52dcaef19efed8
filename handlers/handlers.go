// Package handlers implements the event-flagging pipeline the integrators
// drive: a composable TrajectoryHandler interface, essential loop
// terminators, the event-extracting filter that builds TrajectoryData rows,
// and two single-purpose interpolating handlers used by the solvers.
package handlers

import (
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/interp"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
)

// separateRowTimeDelta is the time window within which two emitted rows are
// merged (flags OR-ed) rather than appended separately.
const separateRowTimeDelta = 1e-5

// epsilon bounds the exact-vs-interpolated distinction for range/time
// sampling.
const epsilon = 1e-6

// TrajectoryHandler receives each accepted integration point.
type TrajectoryHandler interface {
	Handle(d trajdata.BaseTrajData)
}

// Compositor forwards each point to every child handler in declaration
// order. Order matters: an earlier handler may set the shared termination
// reason and later handlers still see that same point.
type Compositor struct {
	Handlers []TrajectoryHandler
}

// Handle implements TrajectoryHandler.
func (c *Compositor) Handle(d trajdata.BaseTrajData) {
	for _, h := range c.Handlers {
		h.Handle(d)
	}
}

// EssentialTerminators sets the shared termination reason when the
// simulated shot leaves its valid envelope. It must run first in any
// Compositor so the caller's handler always observes the terminating point.
type EssentialTerminators struct {
	RangeLimit      float64
	MinimumVelocity float64
	MaximumDrop     float64 // magnitude
	CantCosine      float64
	SightHeightFt   float64
	Alt0Ft          float64
	MinimumAltitude float64
	Reason          *trajdata.TerminationReason

	count int
}

// Handle implements TrajectoryHandler. No termination fires before the
// third invocation.
func (e *EssentialTerminators) Handle(d trajdata.BaseTrajData) {
	e.count++
	if e.count < 3 {
		return
	}
	if *e.Reason != trajdata.NoTerminate {
		return
	}

	if d.Position.X > e.RangeLimit {
		*e.Reason = trajdata.TargetRangeReached
		return
	}
	if d.Velocity.Mag() < e.MinimumVelocity {
		*e.Reason = trajdata.MinimumVelocityReached
		return
	}
	dropFloor := -math.Abs(e.MaximumDrop) + math.Min(0, -e.CantCosine*e.SightHeightFt)
	if d.Position.Y < dropFloor {
		*e.Reason = trajdata.MaximumDropReached
		return
	}
	if d.Velocity.Y <= 0 && e.Alt0Ft+d.Position.Y < e.MinimumAltitude {
		*e.Reason = trajdata.MinimumAltitudeReached
	}
}

// interpolateBy PCHIP-interpolates a full BaseTrajData at the point where
// keyFunc crosses target, given a 3-point stencil.
func interpolateBy(keyFunc func(trajdata.BaseTrajData) float64, target float64, p0, p1, p2 trajdata.BaseTrajData) trajdata.BaseTrajData {
	return trajdata.InterpolateTriple(keyFunc, target, p0, p1, p2)
}

func slantHeight(d trajdata.BaseTrajData, cosLA, sinLA float64) float64 {
	return d.Position.Y*cosLA - d.Position.X*sinLA
}

// TrajectoryDataFilter is the event extractor: it samples by range and
// time, flags the apex and Mach-1 crossing, flags line-of-sight zero
// crossings, and merges rows emitted within separateRowTimeDelta of one
// another.
type TrajectoryDataFilter struct {
	Props      *shot.ShotProps
	RangeStep  float64
	TimeStep   float64
	RangeLimit float64
	Reason     *trajdata.TerminationReason
	Records    *[]trajdata.TrajectoryData
	Dense      *trajdata.BaseTrajSeq // optional

	flags            trajdata.TrajFlag
	lookAngleTangent float64
	cosLA, sinLA     float64

	nextRecordDistance float64
	timeOfLastRecord   float64

	prev, prevPrev         trajdata.BaseTrajData
	havePrev, havePrevPrev bool
	initialized            bool
}

// NewTrajectoryDataFilter builds a filter bound to records (and, if dense is
// non-nil, a secondary dense sink) for the given active flags.
func NewTrajectoryDataFilter(props *shot.ShotProps, rangeStep, timeStep, rangeLimit float64, filterFlags trajdata.TrajFlag, records *[]trajdata.TrajectoryData, reason *trajdata.TerminationReason, dense *trajdata.BaseTrajSeq) *TrajectoryDataFilter {
	cosLA, sinLA := math.Cos(props.LookAngleRad), math.Sin(props.LookAngleRad)
	return &TrajectoryDataFilter{
		Props:            props,
		RangeStep:        rangeStep,
		TimeStep:         timeStep,
		RangeLimit:       rangeLimit,
		Reason:           reason,
		Records:          records,
		Dense:            dense,
		flags:            filterFlags,
		lookAngleTangent: math.Tan(props.LookAngleRad),
		cosLA:            cosLA,
		sinLA:            sinLA,
	}
}

func (f *TrajectoryDataFilter) build(d trajdata.BaseTrajData, flag trajdata.TrajFlag) trajdata.TrajectoryData {
	return trajdata.BuildTrajectoryData(d, f.Props, flag)
}

func (f *TrajectoryDataFilter) emit(td trajdata.TrajectoryData) {
	recs := *f.Records
	if n := len(recs); n > 0 && math.Abs(recs[n-1].Time-td.Time) < separateRowTimeDelta {
		recs[n-1].Flag |= td.Flag
		return
	}
	*f.Records = append(recs, td)
}

// onInit resolves degenerate starting conditions from the first accepted
// point: a shot starting below Mach 1 never gets a Mach-crossing event, a
// shot starting at or above the sight line never gets a ZERO_UP event, and a
// shot starting below the sight line that cannot climb to it gets no zero
// events at all.
func (f *TrajectoryDataFilter) onInit(d trajdata.BaseTrajData) {
	if d.Mach == 0 || d.Velocity.Mag()/d.Mach < 1 {
		f.flags &^= trajdata.FlagMach
	}
	if d.Position.Y >= 0 {
		f.flags &^= trajdata.FlagZeroUp
	}
	if d.Position.Y < 0 && f.Props.BarrelElevationRad <= f.Props.LookAngleRad {
		f.flags &^= (trajdata.FlagZero | trajdata.FlagMRT)
	}
}

// Handle implements TrajectoryHandler.
func (f *TrajectoryDataFilter) Handle(d trajdata.BaseTrajData) {
	if f.Dense != nil {
		f.Dense.Append(d)
	}

	if !f.initialized {
		f.onInit(d)
		f.initialized = true
	}

	if !f.havePrev {
		f.emit(f.build(d, trajdata.FlagRange))
		f.nextRecordDistance = f.RangeStep
		f.timeOfLastRecord = 0
		f.prev = d
		f.havePrev = true
		return
	}

	if f.havePrevPrev && f.prevPrev.Time < f.prev.Time && f.prev.Time < d.Time {
		f.processWindow(d)
	}

	f.prevPrev = f.prev
	f.havePrevPrev = true
	f.prev = d
}

func (f *TrajectoryDataFilter) processWindow(d trajdata.BaseTrajData) {
	p0, p1 := f.prevPrev, f.prev

	if f.flags&trajdata.FlagRange != 0 {
		posX := func(d trajdata.BaseTrajData) float64 { return d.Position.X }
		for f.nextRecordDistance <= d.Position.X+epsilon && f.nextRecordDistance <= f.RangeLimit+epsilon {
			at := interpolateBy(posX, f.nextRecordDistance, p0, p1, d)
			f.emit(f.build(at, trajdata.FlagRange))
			f.nextRecordDistance += f.RangeStep
		}
	}

	if f.flags&trajdata.FlagRange != 0 && f.TimeStep > 0 {
		timeOf := func(d trajdata.BaseTrajData) float64 { return d.Time }
		for f.timeOfLastRecord+f.TimeStep <= d.Time {
			target := f.timeOfLastRecord + f.TimeStep
			at := interpolateBy(timeOf, target, p0, p1, d)
			f.emit(f.build(at, trajdata.FlagRange))
			f.timeOfLastRecord = target
		}
	}

	if f.flags&trajdata.FlagApex != 0 && p1.Velocity.Y > 0 && d.Velocity.Y <= 0 {
		velY := func(d trajdata.BaseTrajData) float64 { return d.Velocity.Y }
		at := interpolateBy(velY, 0, p0, p1, d)
		f.emit(f.build(at, trajdata.FlagApex))
		f.flags &^= trajdata.FlagApex
	}

	if f.flags&trajdata.FlagMach != 0 {
		ratio := func(d trajdata.BaseTrajData) float64 {
			if d.Mach == 0 {
				return 0
			}
			return d.Velocity.Mag() / d.Mach
		}
		prevRatio, curRatio := ratio(p1), ratio(d)
		if prevRatio >= 1 && curRatio < 1 {
			at := interpolateBy(ratio, 1, p0, p1, d)
			f.emit(f.build(at, trajdata.FlagMach))
			f.flags &^= trajdata.FlagMach
		}
	}

	refY := d.Position.X * f.lookAngleTangent
	h := func(d trajdata.BaseTrajData) float64 { return slantHeight(d, f.cosLA, f.sinLA) }

	if f.flags&trajdata.FlagZeroUp != 0 && d.Position.Y >= refY {
		at := interpolateBy(h, 0, p0, p1, d)
		f.emit(f.build(at, trajdata.FlagZeroUp))
		f.flags &^= trajdata.FlagZeroUp
	}
	if f.flags&trajdata.FlagZeroDown != 0 && d.Position.Y < refY {
		at := interpolateBy(h, 0, p0, p1, d)
		f.emit(f.build(at, trajdata.FlagZeroDown))
		f.flags &^= trajdata.FlagZeroDown
	}
}

// Close finalises the filter: if the loop did not terminate because the
// target range was reached and a trailing point was never flagged, append
// one last unflagged row built from it.
func (f *TrajectoryDataFilter) Close() {
	if f.Reason == nil || *f.Reason == trajdata.TargetRangeReached || !f.havePrev {
		return
	}
	recs := *f.Records
	lastRecordTime := 0.0
	if n := len(recs); n > 0 {
		lastRecordTime = recs[n-1].Time
	}
	if f.prev.Time > lastRecordTime {
		f.emit(f.build(f.prev, trajdata.FlagNone))
	}
}

// SinglePointHandler interpolates the exact point at which the named key
// crosses target, using a sliding 3-point window, and requests termination
// once found.
type SinglePointHandler struct {
	Key    trajdata.Key
	Target float64
	Reason *trajdata.TerminationReason

	Result trajdata.BaseTrajData
	Found  bool

	// Last holds the most recently handled point regardless of whether the
	// crossing was ever found, so a caller can report where integration
	// actually stopped.
	Last trajdata.BaseTrajData

	window [3]trajdata.BaseTrajData
	count  int
}

// Handle implements TrajectoryHandler.
func (h *SinglePointHandler) Handle(d trajdata.BaseTrajData) {
	h.Last = d
	h.window[0], h.window[1], h.window[2] = h.window[1], h.window[2], d
	h.count++
	if h.count < 3 || h.Found {
		return
	}

	p0, p1, p2 := h.window[0], h.window[1], h.window[2]
	v1, v2 := p1.Value(h.Key), p2.Value(h.Key)
	if v1 == v2 {
		return
	}
	if (v1-h.Target)*(v2-h.Target) <= 0 {
		h.Result = interpolateBy(func(d trajdata.BaseTrajData) float64 { return d.Value(h.Key) }, h.Target, p0, p1, p2)
		h.Found = true
		if h.Reason != nil {
			*h.Reason = trajdata.HandlerRequestedStop
		}
	}
}

// ZeroCrossingHandler detects the first downward crossing of the
// line-of-sight slant height and linearly interpolates the exact slant
// distance at which it occurs.
type ZeroCrossingHandler struct {
	LookAngleRad float64
	Reason       *trajdata.TerminationReason

	SlantDistanceFt float64
	Found           bool

	prev     trajdata.BaseTrajData
	havePrev bool
}

// Handle implements TrajectoryHandler.
func (z *ZeroCrossingHandler) Handle(d trajdata.BaseTrajData) {
	if z.Found {
		return
	}
	cosLA, sinLA := math.Cos(z.LookAngleRad), math.Sin(z.LookAngleRad)

	if z.havePrev {
		hPrev := slantHeight(z.prev, cosLA, sinLA)
		hCur := slantHeight(d, cosLA, sinLA)
		if hPrev > 0 && hCur <= 0 {
			slantDistPrev := z.prev.Position.X*cosLA + z.prev.Position.Y*sinLA
			slantDistCur := d.Position.X*cosLA + d.Position.Y*sinLA
			if dist, err := interp.Interpolate2pt(0, hPrev, slantDistPrev, hCur, slantDistCur); err == nil {
				z.SlantDistanceFt = dist
				z.Found = true
				if z.Reason != nil {
					*z.Reason = trajdata.HandlerRequestedStop
				}
			}
		}
	}

	z.prev = d
	z.havePrev = true
}
