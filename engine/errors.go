package engine

import (
	"errors"
	"fmt"

	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
)

// Sentinel kinds for the generic error taxonomy. Callers match with
// errors.Is; engine-level errors wrap one of these via Unwrap.
var (
	ErrInput     = errors.New("engine: invalid argument")
	ErrArithmetic = errors.New("engine: arithmetic error")
	ErrRuntime   = errors.New("engine: runtime error")
)

// engineError pairs a message with one of the generic sentinel kinds,
// following the same Error()/Unwrap() shape used elsewhere in this module's
// ancestry for wrapped typed errors.
type engineError struct {
	msg string
	err error
}

func (e *engineError) Error() string { return e.msg }
func (e *engineError) Unwrap() error { return e.err }

func inputError(msg string) error     { return &engineError{msg: msg, err: ErrInput} }
func arithmeticError(msg string) error { return &engineError{msg: msg, err: ErrArithmetic} }
func runtimeError(msg string) error   { return &engineError{msg: msg, err: ErrRuntime} }

// OutOfRangeError is raised when a requested distance exceeds the shot's
// maximum range at its current look angle.
type OutOfRangeError struct {
	RequestedDistanceFt float64
	MaxRangeFt          float64
	LookAngleRad        float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("requested distance %.2f ft exceeds max range %.2f ft at look angle %.6f rad",
		e.RequestedDistanceFt, e.MaxRangeFt, e.LookAngleRad)
}

// ZeroFindingError is raised when a Newton-like or Ridder root-finder fails
// to converge. It carries enough state for the caller to retry with a
// different bracket or method.
type ZeroFindingError struct {
	Msg                    string
	ZeroFindingErrorFt     float64
	IterationsCount        int
	LastBarrelElevationRad float64
}

func (e *ZeroFindingError) Error() string {
	return fmt.Sprintf("%s (error=%.6f ft, iterations=%d, last_elevation=%.6f rad)",
		e.Msg, e.ZeroFindingErrorFt, e.IterationsCount, e.LastBarrelElevationRad)
}

// InterceptionError is raised by IntegrateAt when the requested key/target
// is never crossed during integration.
type InterceptionError struct {
	Raw  trajdata.BaseTrajData
	Full trajdata.TrajectoryData
}

func (e *InterceptionError) Error() string {
	return fmt.Sprintf("target was never intercepted; last accepted point at t=%.4fs x=%.2fft",
		e.Raw.Time, e.Raw.Position.X)
}
