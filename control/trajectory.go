// Package control implements the trajectory control laws that turn a vehicle pose into a
// velocity and steering command, and the feedback blocks they are built from.
package control

import (
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/vehicle"
)

// TrajectoryType names a trajectory control law.
type TrajectoryType string

// The supported trajectory control laws.
const (
	TypePathFollowing TrajectoryType = "path_following"
	TypeSlidingMode   TrajectoryType = "sliding_mode"
	TypeHeadingPI     TrajectoryType = "heading_pi"
	TypeInputSchedule TrajectoryType = "input_schedule"
)

// TrajectoryController computes commands for the current pose. The two methods may be called
// in either order and are independent of each other.
type TrajectoryController interface {
	// CalculateVelocity returns the longitudinal velocity command, negative when reversing.
	CalculateVelocity(pose vehicle.Pose) float64
	// CalculateSteering returns the steering angle command in radians.
	CalculateSteering(pose vehicle.Pose) float64
}

// Config selects a trajectory control law and its attributes.
type Config struct {
	Type       TrajectoryType         `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Validate ensures the type is known and the attributes decode for it.
func (cfg Config) Validate(path string) error {
	if cfg.Type == "" {
		return errors.Errorf("%s: type is required", path)
	}
	var err error
	switch cfg.Type {
	case TypePathFollowing:
		_, err = pathFollowingAttributes(cfg)
	case TypeSlidingMode:
		_, err = slidingModeAttributes(cfg)
	case TypeHeadingPI:
		_, err = headingPIAttributes(cfg)
	case TypeInputSchedule:
		_, err = inputScheduleAttributes(cfg)
	default:
		err = errors.Errorf("unsupported trajectory controller type %s", cfg.Type)
	}
	return errors.Wrap(err, path)
}

// NewTrajectoryController builds the controller cfg names, bound to spec and to a maneuver
// starting at pose. Controllers that follow a path plan it with planner.
func NewTrajectoryController(
	cfg Config,
	spec vehicle.Spec,
	pose vehicle.Pose,
	planner *motionplan.Planner,
	logger logging.Logger,
) (TrajectoryController, error) {
	t := cfg.Type
	switch t {
	case TypePathFollowing:
		attrs, err := pathFollowingAttributes(cfg)
		if err != nil {
			return nil, err
		}
		path, err := planner.Plan(pose, spec)
		if err != nil {
			return nil, err
		}
		logger.Debugw("planned reference path", "type", t, "length", path.Length(), "samples", path.Len())
		return NewPathFollowing(path, spec, attrs.VelocityProfile)
	case TypeSlidingMode:
		attrs, err := slidingModeAttributes(cfg)
		if err != nil {
			return nil, err
		}
		path, err := planner.Plan(pose, spec)
		if err != nil {
			return nil, err
		}
		logger.Debugw("planned reference path", "type", t, "length", path.Length(), "samples", path.Len())
		return NewSlidingMode(path, spec, attrs)
	case TypeHeadingPI:
		attrs, err := headingPIAttributes(cfg)
		if err != nil {
			return nil, err
		}
		return NewHeadingPI(pose, attrs)
	case TypeInputSchedule:
		attrs, err := inputScheduleAttributes(cfg)
		if err != nil {
			return nil, err
		}
		sch, err := planSchedule(attrs, spec, pose, planner)
		if err != nil {
			return nil, err
		}
		logger.Debugw("planned input schedule", "type", t, "shape", attrs.Shape, "samples", sch.Len())
		return NewInputSchedule(sch), nil
	}
	return nil, errors.Errorf("unsupported trajectory controller type %s", t)
}

// decodeAttributes decodes attrs over the defaults already held by out and rejects unknown keys.
func decodeAttributes(t TrajectoryType, attrs map[string]interface{}, out interface{}) error {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   out,
		Metadata: &md,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(attrs); err != nil {
		return errors.Wrapf(err, "invalid attributes for %s controller", t)
	}
	if len(md.Unused) > 0 {
		slices.Sort(md.Unused)
		return errors.Errorf("unknown attributes %v for %s controller", md.Unused, t)
	}
	return nil
}
