package handlers

import (
	"testing"

	"github.com/gonum/floats"
	"github.com/o-murphy/py-ballisticcalc-sub000/atmosphere"
	"github.com/o-murphy/py-ballisticcalc-sub000/drag"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

func testProps() *shot.ShotProps {
	return &shot.ShotProps{
		BC:   0.5,
		Curve: drag.Curve{
			{A: 0, B: 0, C: 0, D: 0.2},
		},
		MachList: []float64{0, 5},
		Atmo: atmosphere.Atmosphere{
			T0C: 15, P0HPa: 1013.25, DensityRatio: 1, Mach0Fps: 1116.45,
		},
		WeightGr: 175,
	}
}

func pt(t, x, y, vx, vy float64) trajdata.BaseTrajData {
	return trajdata.BaseTrajData{
		Time:     t,
		Position: v3.New(x, y, 0),
		Velocity: v3.New(vx, vy, 0),
		Mach:     1116.45,
	}
}

func TestEssentialTerminatorsNoFireBeforeThree(t *testing.T) {
	reason := trajdata.NoTerminate
	e := &EssentialTerminators{RangeLimit: 100, MinimumVelocity: 50, MaximumDrop: 1000, Reason: &reason}
	e.Handle(pt(0, 200, 0, 10, 0))
	e.Handle(pt(0.1, 200, 0, 10, 0))
	if reason != trajdata.NoTerminate {
		t.Fatalf("expected no termination before 3 invocations, got %v", reason)
	}
	e.Handle(pt(0.2, 200, 0, 10, 0))
	if reason != trajdata.TargetRangeReached {
		t.Fatalf("expected TargetRangeReached on 3rd invocation, got %v", reason)
	}
}

func TestEssentialTerminatorsMinimumVelocity(t *testing.T) {
	reason := trajdata.NoTerminate
	e := &EssentialTerminators{RangeLimit: 1e9, MinimumVelocity: 100, MaximumDrop: 1000, Reason: &reason}
	for i := 0; i < 3; i++ {
		e.Handle(pt(float64(i)*0.1, 10, 0, 10, 0))
	}
	if reason != trajdata.MinimumVelocityReached {
		t.Fatalf("expected MinimumVelocityReached, got %v", reason)
	}
}

func TestSinglePointHandlerInterpolatesCrossing(t *testing.T) {
	reason := trajdata.NoTerminate
	h := &SinglePointHandler{Key: trajdata.KeyVelY, Target: 0, Reason: &reason}
	h.Handle(pt(0, 0, 0, 100, 50))
	h.Handle(pt(0.1, 10, 5, 100, 10))
	h.Handle(pt(0.2, 20, 8, 100, -5))
	if !h.Found {
		t.Fatalf("expected crossing to be found")
	}
	if reason != trajdata.HandlerRequestedStop {
		t.Fatalf("expected HandlerRequestedStop, got %v", reason)
	}
	if h.Result.Time < 0.1 || h.Result.Time > 0.2 {
		t.Fatalf("expected interpolated time between window bounds, got %v", h.Result.Time)
	}
}

func TestZeroCrossingHandlerFindsDownwardCrossing(t *testing.T) {
	reason := trajdata.NoTerminate
	z := &ZeroCrossingHandler{LookAngleRad: 0, Reason: &reason}
	z.Handle(pt(0, 0, 5, 100, 0))
	z.Handle(pt(0.1, 100, -5, 100, -10))
	if !z.Found {
		t.Fatalf("expected zero crossing to be found")
	}
	if !floats.EqualWithinAbs(z.SlantDistanceFt, 50, 1.0) {
		t.Fatalf("expected slant distance near midpoint, got %v", z.SlantDistanceFt)
	}
}

func TestTrajectoryDataFilterEmitsFirstRangeRow(t *testing.T) {
	props := testProps()
	var records []trajdata.TrajectoryData
	reason := trajdata.NoTerminate
	f := NewTrajectoryDataFilter(props, 1e9, 0, 1000, trajdata.FlagAll, &records, &reason, nil)

	f.Handle(pt(0, 0, 0, 100, 0))
	if len(records) != 1 {
		t.Fatalf("expected one row emitted for the first point, got %d", len(records))
	}
	if records[0].Flag&trajdata.FlagRange == 0 {
		t.Fatalf("expected FlagRange on first row, got %v", records[0].Flag)
	}
}

func TestTrajectoryDataFilterFlagsApex(t *testing.T) {
	props := testProps()
	var records []trajdata.TrajectoryData
	reason := trajdata.NoTerminate
	f := NewTrajectoryDataFilter(props, 1e9, 0, 1e9, trajdata.FlagApex, &records, &reason, nil)

	f.Handle(pt(0, 0, 0, 100, 20))
	f.Handle(pt(0.1, 10, 2, 100, 10))
	f.Handle(pt(0.2, 20, 3, 100, -5))

	found := false
	for _, r := range records {
		if r.Flag&trajdata.FlagApex != 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an APEX-flagged row, records=%v", records)
	}
}

func TestTrajectoryDataFilterMergesRowsWithinEpsilon(t *testing.T) {
	props := testProps()
	var records []trajdata.TrajectoryData
	reason := trajdata.NoTerminate
	f := NewTrajectoryDataFilter(props, 1e9, 0, 1e9, trajdata.FlagApex|trajdata.FlagRange, &records, &reason, nil)

	f.Handle(pt(0, 0, 0, 100, 0.0000001))
	f.Handle(pt(0.1, 10, 2, 100, 0.00000005))
	f.Handle(pt(0.2, 20, 3, 100, -0.00000001))

	for i := 1; i < len(records); i++ {
		if records[i].Time-records[i-1].Time < separateRowTimeDelta {
			t.Fatalf("expected rows within %v of each other to be merged, got %v", separateRowTimeDelta, records)
		}
	}
}
