package control

import (
	"github.com/pkg/errors"

	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/vehicle"
)

// ScheduleShape selects how an input schedule is planned.
type ScheduleShape string

// The supported schedule shapes.
const (
	// ShapeCurved plays the two-arc maneuver at full steering lock.
	ShapeCurved ScheduleShape = "curved"
	// ShapeStraight reverses along x with the wheels straight.
	ShapeStraight ScheduleShape = "straight"
)

// InputScheduleAttributes configures the input_schedule controller.
type InputScheduleAttributes struct {
	Shape  ScheduleShape `json:"shape"`
	VelMax float64       `json:"vel_max"`
}

func inputScheduleAttributes(cfg Config) (InputScheduleAttributes, error) {
	attrs := InputScheduleAttributes{Shape: ShapeCurved, VelMax: DefaultVelocityProfile().VelMax}
	if err := decodeAttributes(cfg.Type, cfg.Attributes, &attrs); err != nil {
		return InputScheduleAttributes{}, err
	}
	if attrs.Shape != ShapeCurved && attrs.Shape != ShapeStraight {
		return InputScheduleAttributes{}, errors.Errorf("unsupported schedule shape %q", attrs.Shape)
	}
	if !(attrs.VelMax > 0) {
		return InputScheduleAttributes{}, errors.Errorf("vel_max must be a positive number, got %v", attrs.VelMax)
	}
	return attrs, nil
}

func planSchedule(
	attrs InputScheduleAttributes,
	spec vehicle.Spec,
	pose vehicle.Pose,
	planner *motionplan.Planner,
) (*motionplan.InputSchedule, error) {
	if attrs.Shape == ShapeStraight {
		return motionplan.ScheduleAlongX(pose, attrs.VelMax, planner.Samples())
	}
	return motionplan.ScheduleCurved(pose, spec, attrs.VelMax, planner.Samples())
}

// InputSchedule plays back a precomputed command table by traveled arc length, without feedback.
type InputSchedule struct {
	schedule *motionplan.InputSchedule
}

// NewInputSchedule binds an open-loop controller to sch.
func NewInputSchedule(sch *motionplan.InputSchedule) *InputSchedule {
	return &InputSchedule{schedule: sch}
}

// CalculateVelocity returns the scheduled velocity at pose.S.
func (is *InputSchedule) CalculateVelocity(pose vehicle.Pose) float64 {
	return is.schedule.Velocity(pose.S)
}

// CalculateSteering returns the scheduled steering at pose.S.
func (is *InputSchedule) CalculateSteering(pose vehicle.Pose) float64 {
	return is.schedule.Steering(pose.S)
}
