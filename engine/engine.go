// Package engine ties together a ShotProps, a Config, and a selected
// integrator into the public solving surface: integrate, integrate_filtered,
// integrate_at, find_apex, range_for_angle, find_max_range,
// error_at_distance, zero_angle, find_zero_angle, zero_angle_with_fallback.
//
// Every public method acquires the Engine's lock once and delegates to an
// unexported method that assumes the lock is already held; this is the
// structural substitute for the recursive mutex the source relies on, since
// sync.Mutex is not reentrant and solvers call back into integrate.
package engine

import (
	"sync"

	"github.com/o-murphy/py-ballisticcalc-sub000/atmosphere"
	"github.com/o-murphy/py-ballisticcalc-sub000/bclog"
	"github.com/o-murphy/py-ballisticcalc-sub000/handlers"
	"github.com/o-murphy/py-ballisticcalc-sub000/integrate"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
)

// MaxIntegrationRange bounds otherwise-unbounded integrations (find_apex,
// integrate_at, the solvers' single-point handlers).
const MaxIntegrationRange = 9e9

// Integrator selects which stepper drives a shot. It is a tagged variant
// rather than a function pointer so there is no "null integrator" failure
// mode.
type Integrator int

const (
	EULER Integrator = iota
	RK4
	RKF45
)

// Engine owns one ShotProps, one Config, and one integrator selection for
// the lifetime of a solving session.
type Engine struct {
	mu         sync.Mutex
	cfg        shot.Config
	props      *shot.ShotProps
	integrator Integrator
}

var warnWired sync.Once

// New builds an Engine over props with cfg and the given integrator. The
// first Engine constructed in a process wires atmosphere's altitude-warning
// callback to the shared logger.
func New(props *shot.ShotProps, cfg shot.Config, integrator Integrator) *Engine {
	warnWired.Do(func() {
		atmosphere.SetWarnFunc(bclog.Warnf)
	})
	return &Engine{cfg: cfg, props: props, integrator: integrator}
}

func (e *Engine) run(handler handlers.TrajectoryHandler, reason *trajdata.TerminationReason) {
	switch e.integrator {
	case RK4:
		integrate.RK4(e.props, e.cfg, handler, reason)
	case RKF45:
		integrate.RKF45(e.props, e.cfg, handler, reason)
	default:
		integrate.Euler(e.props, e.cfg, handler, reason)
	}
}

func (e *Engine) essentialTerminators(rangeLimit float64, reason *trajdata.TerminationReason) *handlers.EssentialTerminators {
	return &handlers.EssentialTerminators{
		RangeLimit:      rangeLimit,
		MinimumVelocity: e.cfg.MinimumVelocity,
		MaximumDrop:     e.cfg.MaximumDrop,
		CantCosine:      e.props.CantCosine,
		SightHeightFt:   e.props.SightHeightFt,
		Alt0Ft:          e.props.Alt0Ft,
		MinimumAltitude: e.cfg.MinimumAltitude,
		Reason:          reason,
	}
}

// integrate composes [EssentialTerminators, handler] and runs the selected
// integrator. Callers must hold e.mu.
func (e *Engine) integrate(rangeLimit float64, handler handlers.TrajectoryHandler, reason *trajdata.TerminationReason) trajdata.TerminationReason {
	comp := &handlers.Compositor{Handlers: []handlers.TrajectoryHandler{e.essentialTerminators(rangeLimit, reason), handler}}
	e.run(comp, reason)
	return *reason
}

// Integrate runs the selected integrator to rangeLimit, forwarding every
// accepted point to handler.
func (e *Engine) Integrate(rangeLimit float64, handler handlers.TrajectoryHandler) trajdata.TerminationReason {
	e.mu.Lock()
	defer e.mu.Unlock()
	reason := trajdata.NoTerminate
	return e.integrate(rangeLimit, handler, &reason)
}

func (e *Engine) integrateFiltered(rangeLimit, rangeStep, timeStep float64, filterFlags trajdata.TrajFlag, dense bool) ([]trajdata.TrajectoryData, *trajdata.BaseTrajSeq, trajdata.TerminationReason) {
	var records []trajdata.TrajectoryData
	var denseSeq *trajdata.BaseTrajSeq
	if dense {
		denseSeq = trajdata.NewBaseTrajSeq()
	}
	reason := trajdata.NoTerminate
	filter := handlers.NewTrajectoryDataFilter(e.props, rangeStep, timeStep, rangeLimit, filterFlags, &records, &reason, denseSeq)
	result := e.integrate(rangeLimit, filter, &reason)
	filter.Close()
	return records, denseSeq, result
}

// IntegrateFiltered runs the selected integrator to rangeLimit, sampling by
// rangeStep and timeStep and flagging the events named by filterFlags. When
// dense is true it also returns a replayable BaseTrajSeq.
func (e *Engine) IntegrateFiltered(rangeLimit, rangeStep, timeStep float64, filterFlags trajdata.TrajFlag, dense bool) ([]trajdata.TrajectoryData, *trajdata.BaseTrajSeq, trajdata.TerminationReason) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.integrateFiltered(rangeLimit, rangeStep, timeStep, filterFlags, dense)
}

func (e *Engine) integrateAt(key trajdata.Key, target float64) (trajdata.BaseTrajData, trajdata.TrajectoryData, error) {
	reason := trajdata.NoTerminate
	sp := &handlers.SinglePointHandler{Key: key, Target: target, Reason: &reason}
	e.integrate(MaxIntegrationRange, sp, &reason)
	if !sp.Found {
		raw := sp.Last
		full := trajdata.BuildTrajectoryData(raw, e.props, trajdata.FlagNone)
		return raw, full, &InterceptionError{Raw: raw, Full: full}
	}
	full := trajdata.BuildTrajectoryData(sp.Result, e.props, trajdata.FlagNone)
	return sp.Result, full, nil
}

// IntegrateAt runs integrate up to MaxIntegrationRange looking for the point
// where key crosses target, returning both the raw and processed record. It
// fails with InterceptionError carrying the last accepted point when the
// target is never crossed.
func (e *Engine) IntegrateAt(key trajdata.Key, target float64) (trajdata.BaseTrajData, trajdata.TrajectoryData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.integrateAt(key, target)
}
