package integrate

import (
	"github.com/o-murphy/py-ballisticcalc-sub000/drag"
	"github.com/o-murphy/py-ballisticcalc-sub000/handlers"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

// RK4 drives the shot with classical 4th-order Runge-Kutta at a fixed dt =
// calc_step. gravity_plus_coriolis and the drag coefficient km are each
// precomputed once per outer step from the base (pre-substage) state and
// reused across the four stages; only the relative-velocity magnitude used
// in the quadratic drag term is recomputed per sub-stage.
func RK4(props *shot.ShotProps, cfg shot.Config, handler handlers.TrajectoryHandler, reason *trajdata.TerminationReason) {
	gravity := gravityVec(cfg)
	pos, vel := initialState(props)
	t := 0.0
	dt := props.CalcStep

	for *reason == trajdata.NoTerminate {
		_, _, machFps := forcing(props, gravity, pos, vel)
		handler.Handle(trajdata.BaseTrajData{Time: t, Position: pos, Velocity: vel, Mach: machFps})

		densityRatio, baseMachFps := props.Atmo.UpdateDensityFactorAndMachForAltitude(props.Alt0Ft + pos.Y)
		wind := windVector(props, pos.X)
		baseVRel := vel.Sub(wind)
		mach := drag.ClampMach(baseMachFps)
		km := densityRatio * drag.ByMach(props.Curve, props.MachList, baseVRel.Mag()/mach, props.BC)

		coriolis := props.Coriolis.LocalAcceleration(vel)
		gravityPlusCoriolis := gravity.Add(coriolis)

		accelAt := func(v v3.Vec) v3.Vec {
			vRel := v.Sub(wind)
			return gravityPlusCoriolis.Sub(vRel.MulS(km * vRel.Mag()))
		}

		k1v := accelAt(vel)
		k1x := vel

		v2 := vel.FusedMulAdd(k1v, dt/2)
		k2v := accelAt(v2)
		k2x := v2

		v3s := vel.FusedMulAdd(k2v, dt/2)
		k3v := accelAt(v3s)
		k3x := v3s

		v4 := vel.FusedMulAdd(k3v, dt)
		k4v := accelAt(v4)
		k4x := v4

		vel = rk4Combine(vel, k1v, k2v, k3v, k4v, dt)
		pos = rk4Combine(pos, k1x, k2x, k3x, k4x, dt)
		t += dt
	}

	emitFinalIfRequested(props, gravity, pos, vel, t, handler, reason)
}

// rk4Combine applies base + (k1 + 2k2 + 2k3 + k4) * dt/6 via fused adds.
func rk4Combine(base, k1, k2, k3, k4 v3.Vec, dt float64) v3.Vec {
	sum := k1.Add(k2.MulS(2)).Add(k3.MulS(2)).Add(k4)
	return base.FusedMulAdd(sum, dt/6)
}
