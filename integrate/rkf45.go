package integrate

import (
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/handlers"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
	"github.com/o-murphy/py-ballisticcalc-sub000/v3"
)

// Standard Fehlberg RKF45 tableau.
const (
	rkf45a21 = 0.25

	rkf45a31 = 3.0 / 32.0
	rkf45a32 = 9.0 / 32.0

	rkf45a41 = 1932.0 / 2197.0
	rkf45a42 = -7200.0 / 2197.0
	rkf45a43 = 7296.0 / 2197.0

	rkf45a51 = 439.0 / 216.0
	rkf45a52 = -8.0
	rkf45a53 = 3680.0 / 513.0
	rkf45a54 = -845.0 / 4104.0

	rkf45a61 = -8.0 / 27.0
	rkf45a62 = 2.0
	rkf45a63 = -3544.0 / 2565.0
	rkf45a64 = 1859.0 / 4104.0
	rkf45a65 = -11.0 / 40.0

	rkf45b1 = 16.0 / 135.0
	rkf45b3 = 6656.0 / 12825.0
	rkf45b4 = 28561.0 / 56430.0
	rkf45b5 = -9.0 / 50.0
	rkf45b6 = 2.0 / 55.0

	rkf45bs1 = 25.0 / 216.0
	rkf45bs3 = 1408.0 / 2565.0
	rkf45bs4 = 2197.0 / 4104.0
	rkf45bs5 = -1.0 / 5.0
)

const (
	rkf45AbsTol = 1e-6
	rkf45RelTol = 1e-6
	rkf45DtMax  = 0.05
	rkf45DtMin  = 1e-6
)

type rkf45Deriv struct {
	dpos, dvel v3.Vec
}

type rkf45Term struct {
	v v3.Vec
	c float64
}

func rkf45AddScaled(base v3.Vec, h float64, terms ...rkf45Term) v3.Vec {
	sum := v3.Vec{}
	for _, t := range terms {
		sum = sum.Add(t.v.MulS(t.c))
	}
	return base.FusedMulAdd(sum, h)
}

// rkf45Stage evaluates the six Fehlberg stages from (pos, vel) with attempt
// size h and returns the 5th- and 4th-order state increments' endpoints.
func rkf45Stage(props *shot.ShotProps, gravity v3.Vec, pos, vel v3.Vec, h float64) (pos5, vel5, pos4, vel4 v3.Vec) {
	f := func(p, v v3.Vec) rkf45Deriv {
		a, _, _ := forcing(props, gravity, p, v)
		return rkf45Deriv{dpos: v, dvel: a}
	}

	k1 := f(pos, vel)

	p2 := rkf45AddScaled(pos, h, rkf45Term{k1.dpos, rkf45a21})
	v2 := rkf45AddScaled(vel, h, rkf45Term{k1.dvel, rkf45a21})
	k2 := f(p2, v2)

	p3 := rkf45AddScaled(pos, h, rkf45Term{k1.dpos, rkf45a31}, rkf45Term{k2.dpos, rkf45a32})
	v3v := rkf45AddScaled(vel, h, rkf45Term{k1.dvel, rkf45a31}, rkf45Term{k2.dvel, rkf45a32})
	k3 := f(p3, v3v)

	p4 := rkf45AddScaled(pos, h, rkf45Term{k1.dpos, rkf45a41}, rkf45Term{k2.dpos, rkf45a42}, rkf45Term{k3.dpos, rkf45a43})
	v4 := rkf45AddScaled(vel, h, rkf45Term{k1.dvel, rkf45a41}, rkf45Term{k2.dvel, rkf45a42}, rkf45Term{k3.dvel, rkf45a43})
	k4 := f(p4, v4)

	p5 := rkf45AddScaled(pos, h, rkf45Term{k1.dpos, rkf45a51}, rkf45Term{k2.dpos, rkf45a52}, rkf45Term{k3.dpos, rkf45a53}, rkf45Term{k4.dpos, rkf45a54})
	v5 := rkf45AddScaled(vel, h, rkf45Term{k1.dvel, rkf45a51}, rkf45Term{k2.dvel, rkf45a52}, rkf45Term{k3.dvel, rkf45a53}, rkf45Term{k4.dvel, rkf45a54})
	k5 := f(p5, v5)

	p6 := rkf45AddScaled(pos, h, rkf45Term{k1.dpos, rkf45a61}, rkf45Term{k2.dpos, rkf45a62}, rkf45Term{k3.dpos, rkf45a63}, rkf45Term{k4.dpos, rkf45a64}, rkf45Term{k5.dpos, rkf45a65})
	v6 := rkf45AddScaled(vel, h, rkf45Term{k1.dvel, rkf45a61}, rkf45Term{k2.dvel, rkf45a62}, rkf45Term{k3.dvel, rkf45a63}, rkf45Term{k4.dvel, rkf45a64}, rkf45Term{k5.dvel, rkf45a65})
	k6 := f(p6, v6)

	pos5 = rkf45AddScaled(pos, h, rkf45Term{k1.dpos, rkf45b1}, rkf45Term{k3.dpos, rkf45b3}, rkf45Term{k4.dpos, rkf45b4}, rkf45Term{k5.dpos, rkf45b5}, rkf45Term{k6.dpos, rkf45b6})
	vel5 = rkf45AddScaled(vel, h, rkf45Term{k1.dvel, rkf45b1}, rkf45Term{k3.dvel, rkf45b3}, rkf45Term{k4.dvel, rkf45b4}, rkf45Term{k5.dvel, rkf45b5}, rkf45Term{k6.dvel, rkf45b6})

	pos4 = rkf45AddScaled(pos, h, rkf45Term{k1.dpos, rkf45bs1}, rkf45Term{k3.dpos, rkf45bs3}, rkf45Term{k4.dpos, rkf45bs4}, rkf45Term{k5.dpos, rkf45bs5})
	vel4 = rkf45AddScaled(vel, h, rkf45Term{k1.dvel, rkf45bs1}, rkf45Term{k3.dvel, rkf45bs3}, rkf45Term{k4.dvel, rkf45bs4}, rkf45Term{k5.dvel, rkf45bs5})
	return
}

// RKF45 drives the shot with adaptive-step embedded 4th/5th-order
// Runge-Kutta-Fehlberg. A rejected attempt shrinks h and retries without
// advancing state, emitting a handler point, or counting as a step.
func RKF45(props *shot.ShotProps, cfg shot.Config, handler handlers.TrajectoryHandler, reason *trajdata.TerminationReason) {
	gravity := gravityVec(cfg)
	pos, vel := initialState(props)
	t := 0.0
	h := math.Min(props.CalcStep, rkf45DtMax)

	for *reason == trajdata.NoTerminate {
		_, _, machFps := forcing(props, gravity, pos, vel)
		handler.Handle(trajdata.BaseTrajData{Time: t, Position: pos, Velocity: vel, Mach: machFps})
		if *reason != trajdata.NoTerminate {
			break
		}

		tol := rkf45AbsTol + rkf45RelTol*math.Max(pos.Mag(), vel.Mag())

		for {
			pos5, vel5, pos4, vel4 := rkf45Stage(props, gravity, pos, vel, h)
			err := math.Max(pos5.Sub(pos4).Mag(), vel5.Sub(vel4).Mag())

			if err > tol && h > rkf45DtMin {
				scale := clamp(0.9*math.Pow(tol/math.Max(err, 1e-300), 0.25), 0.2, 5.0)
				h = math.Max(h*scale, rkf45DtMin)
				continue
			}

			pos, vel = pos5, vel5
			t += h

			if err < 0.1*tol && h < rkf45DtMax {
				growth := 5.0
				if err > 0 {
					growth = math.Min(0.9*math.Pow(tol/err, 0.2), 5.0)
				}
				h = math.Min(h*growth, rkf45DtMax)
			}
			break
		}
	}

	emitFinalIfRequested(props, gravity, pos, vel, t, handler, reason)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
