package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/bclog"
	"github.com/o-murphy/py-ballisticcalc-sub000/handlers"
	"github.com/o-murphy/py-ballisticcalc-sub000/trajdata"
)

// degrees89p9 is the loft bracket's upper bound for find_zero_angle, 89.9
// degrees in radians.
const degrees89p9 = 1.5690308719637473

// apexIsMaxRangeRadiansDefault is how close look_angle must be to vertical
// before the apex itself is treated as the maximum achievable range.
const apexIsMaxRangeRadiansDefault = 1e-3

// allowedZeroErrorFeetDefault is the distance below which zero_angle treats
// the look angle itself as already zeroed.
const allowedZeroErrorFeetDefault = 1e-2

func (e *Engine) findApex() (trajdata.BaseTrajData, error) {
	if e.props.BarrelElevationRad <= 0 {
		return trajdata.BaseTrajData{}, inputError("find_apex requires a positive barrel elevation")
	}
	restore := guardFloat(&e.cfg.MinimumVelocity, 0)
	defer restore()

	reason := trajdata.NoTerminate
	sp := &handlers.SinglePointHandler{Key: trajdata.KeyVelY, Target: 0, Reason: &reason}
	e.integrate(MaxIntegrationRange, sp, &reason)
	if !sp.Found {
		return trajdata.BaseTrajData{}, runtimeError("find_apex: the shot never crested")
	}
	return sp.Result, nil
}

// FindApex returns the point at which vertical velocity crosses zero,
// requiring a positive barrel elevation.
func (e *Engine) FindApex() (trajdata.BaseTrajData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findApex()
}

func (e *Engine) rangeForAngle(angleRad float64) (float64, error) {
	restore := guardFloat(&e.props.BarrelElevationRad, angleRad)
	defer restore()

	reason := trajdata.NoTerminate
	zc := &handlers.ZeroCrossingHandler{LookAngleRad: e.props.LookAngleRad, Reason: &reason}
	e.integrate(MaxIntegrationRange, zc, &reason)
	if !zc.Found {
		return 0, nil
	}
	return zc.SlantDistanceFt, nil
}

// RangeForAngle returns the slant distance at which the line-of-sight is
// crossed downward when firing at angleRad, holding barrel elevation fixed
// for the duration of the call.
func (e *Engine) RangeForAngle(angleRad float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rangeForAngle(angleRad)
}

func (e *Engine) errorAtDistance(angleRad, targetXFt, targetYFt float64) (float64, error) {
	restore := guardFloat(&e.props.BarrelElevationRad, angleRad)
	defer restore()

	reason := trajdata.NoTerminate
	sp := &handlers.SinglePointHandler{Key: trajdata.KeyPosX, Target: targetXFt, Reason: &reason}
	e.integrate(MaxIntegrationRange, sp, &reason)
	if !sp.Found {
		return 0, runtimeError("error_at_distance: target distance was never reached")
	}
	if sp.Result.Time == 0 {
		return 0, runtimeError("error_at_distance: target was hit at t=0")
	}
	hit := sp.Result
	return hit.Position.Y - targetYFt, nil
}

// ErrorAtDistance fires at angleRad and returns the signed height error (ft)
// relative to (targetXFt, targetYFt) at the moment targetXFt is crossed.
func (e *Engine) ErrorAtDistance(angleRad, targetXFt, targetYFt float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorAtDistance(angleRad, targetXFt, targetYFt)
}

// ZeroCalcStatus reports whether init_zero_calculation already resolved the
// zero angle or whether the caller must keep iterating.
type ZeroCalcStatus int

const (
	ZeroCalcDone ZeroCalcStatus = iota
	ZeroCalcContinue
)

// ZeroCalcResult is init_zero_calculation's outcome.
type ZeroCalcResult struct {
	Status   ZeroCalcStatus
	AngleRad float64
}

func (e *Engine) startHeightFt() float64 {
	return -e.props.CantCosine * e.props.SightHeightFt
}

func (e *Engine) initZeroCalculation(distanceFt, apexIsMaxRangeRad, allowedZeroErrorFt float64) (ZeroCalcResult, error) {
	if math.Abs(distanceFt) < allowedZeroErrorFt {
		return ZeroCalcResult{Status: ZeroCalcDone, AngleRad: e.props.LookAngleRad}, nil
	}

	startHeight := e.startHeightFt()
	if math.Abs(distanceFt) < 2*math.Max(math.Abs(startHeight), e.cfg.StepMultiplier) {
		targetXFt := distanceFt * math.Cos(e.props.LookAngleRad)
		targetYFt := distanceFt * math.Sin(e.props.LookAngleRad)
		return ZeroCalcResult{Status: ZeroCalcDone, AngleRad: math.Atan2(targetYFt+startHeight, targetXFt)}, nil
	}

	if math.Abs(e.props.LookAngleRad-math.Pi/2) < apexIsMaxRangeRad {
		apex, err := e.findApex()
		if err != nil {
			return ZeroCalcResult{}, err
		}
		cosLA, sinLA := math.Cos(e.props.LookAngleRad), math.Sin(e.props.LookAngleRad)
		apexSlant := apex.Position.X*cosLA + apex.Position.Y*sinLA
		if apexSlant < distanceFt {
			return ZeroCalcResult{}, &OutOfRangeError{RequestedDistanceFt: distanceFt, MaxRangeFt: apexSlant, LookAngleRad: e.props.LookAngleRad}
		}
		return ZeroCalcResult{Status: ZeroCalcDone, AngleRad: e.props.LookAngleRad}, nil
	}

	return ZeroCalcResult{Status: ZeroCalcContinue}, nil
}

// InitZeroCalculation classifies distanceFt into one of the zero_angle
// degenerate cases (already zeroed, drag-free straight line, apex-bounded
// near-vertical shot) or reports that the full iterative solve must run.
func (e *Engine) InitZeroCalculation(distanceFt, apexIsMaxRangeRad, allowedZeroErrorFt float64) (ZeroCalcResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initZeroCalculation(distanceFt, apexIsMaxRangeRad, allowedZeroErrorFt)
}

// zeroAngle implements the damped-Newton search over barrel elevation for
// the look-angle-relative slant distance distanceFt, accepting when the
// line-of-sight height error falls within accuracyFt.
func (e *Engine) zeroAngle(distanceFt, accuracyFt float64) (float64, error) {
	init, err := e.initZeroCalculation(distanceFt, apexIsMaxRangeRadiansDefault, allowedZeroErrorFeetDefault)
	if err != nil {
		return 0, err
	}
	if init.Status == ZeroCalcDone {
		return init.AngleRad, nil
	}

	requiredDropFt := distanceFt*math.Cos(e.props.LookAngleRad)/2 - distanceFt*math.Sin(e.props.LookAngleRad)
	restoreDrop := guardFloat(&e.cfg.MaximumDrop, math.Max(e.cfg.MaximumDrop, requiredDropFt))
	defer restoreDrop()
	restoreAlt := guardFloat(&e.cfg.MinimumAltitude, math.Min(e.cfg.MinimumAltitude, -requiredDropFt))
	defer restoreAlt()

	cosLA, sinLA := math.Cos(e.props.LookAngleRad), math.Sin(e.props.LookAngleRad)
	slantRange := distanceFt

	damping := 1.0
	prevHeightErr := math.Inf(1)
	prevRangeErr := math.Inf(1)
	lastCorrection := 0.0

	for iter := 0; iter < e.cfg.MaxIterations; iter++ {
		targetXFt := distanceFt * cosLA

		reason := trajdata.NoTerminate
		sp := &handlers.SinglePointHandler{Key: trajdata.KeyPosX, Target: targetXFt, Reason: &reason}
		e.integrate(MaxIntegrationRange, sp, &reason)
		if !sp.Found {
			return 0, runtimeError("zero_angle: target distance was never reached")
		}
		hit := sp.Result

		heightDiff := hit.Position.Y*cosLA - hit.Position.X*sinLA
		rangeDiff := hit.Position.X*cosLA + hit.Position.Y*sinLA - slantRange
		trajAngle := math.Atan2(hit.Velocity.Y, hit.Velocity.X)

		sensitivity := math.Tan(e.props.BarrelElevationRad-e.props.LookAngleRad) * math.Tan(trajAngle-e.props.LookAngleRad)
		denom := distanceFt
		if sensitivity > -0.5 {
			denom = distanceFt * (1 + sensitivity)
		}
		if denom == 0 {
			return 0, &ZeroFindingError{Msg: "zero_angle: zero sensitivity denominator", ZeroFindingErrorFt: heightDiff, IterationsCount: iter, LastBarrelElevationRad: e.props.BarrelElevationRad}
		}
		correction := -heightDiff / denom

		if iter > 0 {
			if math.Abs(heightDiff) > math.Abs(prevHeightErr) {
				e.props.BarrelElevationRad -= lastCorrection
				damping *= 0.7
				if damping < 0.3 {
					return 0, &ZeroFindingError{Msg: "zero_angle: height error non-convergent", ZeroFindingErrorFt: heightDiff, IterationsCount: iter, LastBarrelElevationRad: e.props.BarrelElevationRad}
				}
			}
			if math.Abs(rangeDiff) > allowedZeroErrorFeetDefault && math.Abs(rangeDiff) > math.Abs(prevRangeErr)-1e-6 {
				return 0, &ZeroFindingError{Msg: "zero_angle: range error non-convergent", ZeroFindingErrorFt: rangeDiff, IterationsCount: iter, LastBarrelElevationRad: e.props.BarrelElevationRad}
			}
		}

		appliedCorrection := correction * damping
		e.props.BarrelElevationRad += appliedCorrection
		lastCorrection = appliedCorrection

		if 2*hit.Position.X < targetXFt && e.props.BarrelElevationRad == 0 && e.props.LookAngleRad < 1.5 {
			e.props.BarrelElevationRad = 0.01
		}

		if math.Abs(heightDiff) <= accuracyFt {
			return e.props.BarrelElevationRad, nil
		}

		prevHeightErr = heightDiff
		prevRangeErr = rangeDiff
	}

	return 0, &ZeroFindingError{Msg: "zero_angle: exhausted iterations", ZeroFindingErrorFt: prevHeightErr, IterationsCount: e.cfg.MaxIterations, LastBarrelElevationRad: e.props.BarrelElevationRad}
}

// ZeroAngle finds the barrel elevation (rad) that zeroes the rifle at
// distanceFt along the line of sight to within accuracyFt of vertical error.
func (e *Engine) ZeroAngle(distanceFt, accuracyFt float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zeroAngle(distanceFt, accuracyFt)
}

func (e *Engine) findMaxRange(lowDeg, highDeg, apexIsMaxRangeRad float64) (float64, float64, error) {
	if math.Abs(e.props.LookAngleRad-math.Pi/2) < apexIsMaxRangeRad {
		apex, err := e.findApex()
		if err != nil {
			return 0, 0, err
		}
		cosLA, sinLA := math.Cos(e.props.LookAngleRad), math.Sin(e.props.LookAngleRad)
		slant := apex.Position.X*cosLA + apex.Position.Y*sinLA
		return slant, e.props.BarrelElevationRad, nil
	}

	restoreDrop := guardFloat(&e.cfg.MaximumDrop, math.Inf(1))
	defer restoreDrop()
	restoreVel := guardFloat(&e.cfg.MinimumVelocity, 0)
	defer restoreVel()

	const invPhi = 0.6180339887498949
	const invPhiSq = 0.38196601125010515

	a, b := lowDeg*math.Pi/180, highDeg*math.Pi/180
	h := b - a
	c := a + invPhiSq*h
	d := a + invPhi*h

	fc, err := e.rangeForAngle(c)
	if err != nil {
		return 0, 0, err
	}
	fd, err := e.rangeForAngle(d)
	if err != nil {
		return 0, 0, err
	}

	for i := 0; i < 100 && h > 1e-5; i++ {
		if fc > fd {
			b, d, fd = d, c, fc
			h = b - a
			c = a + invPhiSq*h
			fc, err = e.rangeForAngle(c)
			if err != nil {
				return 0, 0, err
			}
		} else {
			a, c, fc = c, d, fd
			h = b - a
			d = a + invPhi*h
			fd, err = e.rangeForAngle(d)
			if err != nil {
				return 0, 0, err
			}
		}
	}

	bestAngle := (a + b) / 2
	bestRange, err := e.rangeForAngle(bestAngle)
	if err != nil {
		return 0, 0, err
	}
	return bestRange, bestAngle, nil
}

// FindMaxRange golden-section searches barrel elevation in [lowDeg, highDeg]
// for the angle maximising RangeForAngle, short-circuiting to FindApex when
// the look angle is near vertical.
func (e *Engine) FindMaxRange(lowDeg, highDeg, apexIsMaxRangeRad float64) (float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findMaxRange(lowDeg, highDeg, apexIsMaxRangeRad)
}

func (e *Engine) findZeroAngle(distanceFt float64, lofted bool) (float64, error) {
	restoreVel := guardFloat(&e.cfg.MinimumVelocity, 0)
	defer restoreVel()

	_, angleAtMax, err := e.findMaxRange(0, 90, apexIsMaxRangeRadiansDefault)
	if err != nil {
		return 0, err
	}

	startHeight := e.startHeightFt()
	var lowRad, highRad float64
	if lofted {
		lowRad = angleAtMax
		highRad = degrees89p9
	} else {
		if startHeight > 0 {
			lowRad = e.props.LookAngleRad - math.Atan2(startHeight, distanceFt)
		} else {
			lowRad = e.props.LookAngleRad
		}
		highRad = angleAtMax
	}

	targetXFt := distanceFt * math.Cos(e.props.LookAngleRad)
	targetYFt := distanceFt * math.Sin(e.props.LookAngleRad)
	errorAt := func(angle float64) (float64, error) {
		return e.errorAtDistance(angle, targetXFt, targetYFt)
	}

	fLow, err := errorAt(lowRad)
	if err != nil {
		return 0, err
	}
	fHigh, err := errorAt(highRad)
	if err != nil {
		return 0, err
	}

	if !lofted && lowRad == e.props.LookAngleRad && fLow*fHigh >= 0 {
		lowRad += 1e-3
		fLow, err = errorAt(lowRad)
		if err != nil {
			return 0, err
		}
	}

	if fLow*fHigh >= 0 {
		return 0, &ZeroFindingError{
			Msg:                    fmt.Sprintf("find_zero_angle: bracket [%.6f, %.6f] does not straddle a root", lowRad, highRad),
			ZeroFindingErrorFt:     math.Min(math.Abs(fLow), math.Abs(fHigh)),
			LastBarrelElevationRad: e.props.BarrelElevationRad,
		}
	}

	accuracy := e.cfg.ZeroFindingAccuracy
	lo, hi, fl, fh := lowRad, highRad, fLow, fHigh
	maxIter := e.cfg.MaxIterations * 5

	for iter := 0; iter < maxIter; iter++ {
		m := (lo + hi) / 2
		fm, err := errorAt(m)
		if err != nil {
			return 0, err
		}
		s := math.Sqrt(fm*fm - fl*fh)
		if s == 0 {
			break
		}
		sign := 1.0
		if fl < fh {
			sign = -1.0
		}
		next := m + (m-lo)*sign*fm/s
		fn, err := errorAt(next)
		if err != nil {
			return 0, err
		}

		if math.Abs(fn) < accuracy || math.Abs(next-m) < accuracy {
			return next, nil
		}

		switch {
		case fm*fn < 0:
			lo, fl = m, fm
			hi, fh = next, fn
		case fl*fn < 0:
			hi, fh = next, fn
		case fh*fn < 0:
			lo, fl = next, fn
		default:
			iter = maxIter
		}

		if math.Abs(hi-lo) < accuracy {
			return (lo + hi) / 2, nil
		}
	}

	switch {
	case math.Abs(hi-lo) < 10*accuracy:
		return (lo + hi) / 2, nil
	case math.Abs(fl) < 10*accuracy:
		return lo, nil
	case math.Abs(fh) < 10*accuracy:
		return hi, nil
	}
	return 0, &ZeroFindingError{Msg: "find_zero_angle: Ridder's method did not converge", ZeroFindingErrorFt: math.Min(math.Abs(fl), math.Abs(fh)), IterationsCount: maxIter, LastBarrelElevationRad: e.props.BarrelElevationRad}
}

// FindZeroAngle brackets barrel elevation between the look angle and the
// angle of maximum range (or, when lofted, between the angle of maximum
// range and 89.9 degrees) and converges on the zero with Ridder's method.
func (e *Engine) FindZeroAngle(distanceFt float64, lofted bool) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findZeroAngle(distanceFt, lofted)
}

// ZeroAngleWithFallback tries ZeroAngle first; on a ZeroFindingError it logs
// and retries with the more robust (but more expensive) FindZeroAngle.
func (e *Engine) ZeroAngleWithFallback(distanceFt, accuracyFt float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	angle, err := e.zeroAngle(distanceFt, accuracyFt)
	if err == nil {
		return angle, nil
	}
	var zfe *ZeroFindingError
	if errors.As(err, &zfe) {
		bclog.Warnf("zero_angle failed, falling back to find_zero_angle: %v", err)
		return e.findZeroAngle(distanceFt, false)
	}
	return 0, err
}
