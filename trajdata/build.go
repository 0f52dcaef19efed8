package trajdata

import (
	"math"

	"github.com/o-murphy/py-ballisticcalc-sub000/drag"
	"github.com/o-murphy/py-ballisticcalc-sub000/shot"
)

// ogwConstant is the classical optimum-game-weight approximation constant:
// ogw_lb = velocity_fps^3 * weight_gr^2 * ogwConstant.
const ogwConstant = 1.5e-12

// energyConstant converts grains*fps^2 to ft-lb of kinetic energy.
const energyConstant = 1.0 / 450240.0

// BuildTrajectoryData converts one accepted integration point into the
// processed, caller-facing record: slant decomposition against the shot's
// look angle, spin drift and the coriolis range adjustment, drag and energy
// figures.
func BuildTrajectoryData(d BaseTrajData, props *shot.ShotProps, flag TrajFlag) TrajectoryData {
	cosLA, sinLA := math.Cos(props.LookAngleRad), math.Sin(props.LookAngleRad)

	spinDriftFt := props.SpinDriftFt(d.Time)
	coriolisDy, coriolisDz := props.Coriolis.RangeAdjustment(d.Time, d.Position.X, d.Position.Y)
	y := d.Position.Y + coriolisDy
	z := d.Position.Z + spinDriftFt + coriolisDz

	slantHeightFt := y*cosLA - d.Position.X*sinLA
	slantDistanceFt := d.Position.X*cosLA + y*sinLA

	velocityFps := d.Velocity.Mag()
	machRatio := 0.0
	if d.Mach != 0 {
		machRatio = velocityFps / d.Mach
	}

	dragCoeff := 0.0
	if len(props.Curve) > 0 {
		dragCoeff = drag.ByMach(props.Curve, props.MachList, machRatio, props.BC)
	}
	densityRatio, _ := props.Atmo.UpdateDensityFactorAndMachForAltitude(props.Alt0Ft + d.Position.Y)

	return TrajectoryData{
		Time:            d.Time,
		DistanceFt:      d.Position.X,
		VelocityFps:     velocityFps,
		Mach:            machRatio,
		HeightFt:        y,
		SlantHeightFt:   slantHeightFt,
		DropAngleRad:    math.Atan2(slantHeightFt, slantDistanceFt),
		WindageFt:       z,
		WindageAngleRad: math.Atan2(z, d.Position.X),
		SlantDistanceFt: slantDistanceFt,
		AngleRad:        math.Atan2(d.Velocity.Y, d.Velocity.X),
		DensityRatio:    densityRatio,
		Drag:            dragCoeff,
		EnergyFtLb:      props.WeightGr * velocityFps * velocityFps * energyConstant,
		OgwLb:           velocityFps * velocityFps * velocityFps * props.WeightGr * props.WeightGr * ogwConstant,
		Flag:            flag,
	}
}
