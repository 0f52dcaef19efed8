// Package integrate implements the three step integrators the engine
// selects between: explicit Euler-Cromer (velocity-adaptive dt), classical
// fixed-step RK4, and adaptive embedded RKF45. All three share the same
// state, forcing and handler contract described in initialState/forcing.
package integrate

import (
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/drag"
	"github.com/o-murphy/py-ballisticcalc-sub000/handlers"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

// initialState builds the t=0 position and velocity for a shot, per the
// integrators' common contract: position (0, -cant_cosine*sh, -cant_sine*sh),
// velocity = muzzle_velocity * (cos(e)cos(a), sin(e), cos(e)sin(a)).
func initialState(props *shot.ShotProps) (pos, vel v3.Vec) {
	sh := props.SightHeightFt
	pos = v3.New(0, -props.CantCosine*sh, -props.CantSine*sh)

	sinE, cosE := math.Sincos(props.BarrelElevationRad)
	sinA, cosA := math.Sincos(props.BarrelAzimuthRad)
	vel = v3.New(
		props.MuzzleVelocityFps*cosE*cosA,
		props.MuzzleVelocityFps*sinE,
		props.MuzzleVelocityFps*cosE*sinA,
	)
	return
}

func windVector(props *shot.ShotProps, x float64) v3.Vec {
	if props.WindSock == nil {
		return v3.Vec{}
	}
	return props.WindSock.VectorForRange(x)
}

// forcing evaluates gravity+drag+coriolis acceleration at a given
// (position, velocity), advancing the wind cursor as a side effect and
// refreshing atmosphere at the point's altitude. It returns the local Mach-1
// speed too, since BaseTrajData records it per accepted point.
func forcing(props *shot.ShotProps, gravity v3.Vec, pos, vel v3.Vec) (accel v3.Vec, vRelMag, machFps float64) {
	densityRatio, machFps := props.Atmo.UpdateDensityFactorAndMachForAltitude(props.Alt0Ft + pos.Y)

	wind := windVector(props, pos.X)
	vRel := vel.Sub(wind)
	vRelMag = vRel.Mag()

	mach := drag.ClampMach(machFps)
	km := densityRatio * drag.ByMach(props.Curve, props.MachList, vRelMag/mach, props.BC)

	dragAccel := vRel.MulS(-km * vRelMag)
	coriolisAccel := props.Coriolis.LocalAcceleration(vel)

	accel = gravity.Add(dragAccel).Add(coriolisAccel)
	return
}

// gravityVec returns the constant gravity vector (0, g, 0) from config.
func gravityVec(cfg shot.Config) v3.Vec { return v3.New(0, cfg.GravityConstant, 0) }

// emitFinalIfRequested emits one trailing point when the handler requested
// an early stop mid-iteration (as opposed to an EssentialTerminators
// boundary, which already represents a physically terminal point that was
// handled in-loop).
func emitFinalIfRequested(props *shot.ShotProps, gravity v3.Vec, pos, vel v3.Vec, t float64, handler handlers.TrajectoryHandler, reason *trajdata.TerminationReason) {
	if *reason != trajdata.HandlerRequestedStop {
		return
	}
	_, _, machFps := forcing(props, gravity, pos, vel)
	handler.Handle(trajdata.BaseTrajData{Time: t, Position: pos, Velocity: vel, Mach: machFps})
}
