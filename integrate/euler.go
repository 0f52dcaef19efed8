package integrate

import (
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/handlers"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
)

// Euler drives the shot with explicit first-order Euler-Cromer: velocity is
// updated first, then position is advanced using the already-updated
// velocity. dt is velocity-adaptive: calc_step / max(1, |v_rel|). This
// specific ordering (as opposed to updating position from the pre-update
// velocity) is load-bearing for shot-to-shot reproducibility and must not be
// changed.
func Euler(props *shot.ShotProps, cfg shot.Config, handler handlers.TrajectoryHandler, reason *trajdata.TerminationReason) {
	gravity := gravityVec(cfg)
	pos, vel := initialState(props)
	t := 0.0

	for *reason == trajdata.NoTerminate {
		accel, vRelMag, machFps := forcing(props, gravity, pos, vel)
		handler.Handle(trajdata.BaseTrajData{Time: t, Position: pos, Velocity: vel, Mach: machFps})

		dt := props.CalcStep / math.Max(1, vRelMag)

		vel = vel.FusedMulAdd(accel, dt)
		pos = pos.FusedMulAdd(vel, dt)
		t += dt
	}

	emitFinalIfRequested(props, gravity, pos, vel, t, handler, reason)
}
