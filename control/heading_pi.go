package control

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/spatialmath"
	"go.viam.com/hitchpilot/vehicle"
)

// HeadingPIAttributes configures the heading_pi controller.
type HeadingPIAttributes struct {
	Kp              float64         `json:"kp"`
	Ki              float64         `json:"ki"`
	SteeringLimit   float64         `json:"steering_limit"`
	VelocityProfile VelocityProfile `json:"velocity_profile"`
}

// DefaultHeadingPIAttributes returns the gains used when none are configured.
func DefaultHeadingPIAttributes() HeadingPIAttributes {
	return HeadingPIAttributes{Kp: 1, Ki: 0.05, SteeringLimit: 0.5, VelocityProfile: DefaultVelocityProfile()}
}

func headingPIAttributes(cfg Config) (HeadingPIAttributes, error) {
	attrs := DefaultHeadingPIAttributes()
	if err := decodeAttributes(cfg.Type, cfg.Attributes, &attrs); err != nil {
		return HeadingPIAttributes{}, err
	}
	if !(attrs.SteeringLimit > 0) {
		return HeadingPIAttributes{}, errors.Errorf("steering_limit must be a positive number, got %v", attrs.SteeringLimit)
	}
	return attrs, attrs.VelocityProfile.Validate()
}

// HeadingPI steers the vehicle's heading onto the bearing of its own position seen from the
// origin. It needs no path, only the initial x to measure progress against.
type HeadingPI struct {
	pi      *PI
	profile trapezoidProfile
	x0      float64
}

// NewHeadingPI binds a heading PI law to a maneuver starting at pose.
func NewHeadingPI(pose vehicle.Pose, attrs HeadingPIAttributes) (*HeadingPI, error) {
	if !(pose.X > 0) || math.IsInf(pose.X, 1) {
		return nil, &motionplan.InvalidPathError{Reason: "heading pi needs the vehicle to start at positive x"}
	}
	lower, upper := -attrs.SteeringLimit, attrs.SteeringLimit
	pi, err := NewPI(PIConfig{Kp: attrs.Kp, Ki: attrs.Ki, UMin: &lower, UMax: &upper})
	if err != nil {
		return nil, err
	}
	profile, err := newTrapezoidProfile(attrs.VelocityProfile, pose.X)
	if err != nil {
		return nil, err
	}
	return &HeadingPI{pi: pi, profile: profile, x0: pose.X}, nil
}

// CalculateVelocity follows the velocity profile keyed on the distance covered along x.
func (hp *HeadingPI) CalculateVelocity(pose vehicle.Pose) float64 {
	return hp.profile.velocity(hp.x0 - pose.X)
}

// CalculateSteering feeds the heading error into the PI block. Each call advances its integral.
func (hp *HeadingPI) CalculateSteering(pose vehicle.Pose) float64 {
	bearing := math.Atan2(pose.Y, pose.X)
	return hp.pi.Calculate(spatialmath.NormalizeAngle(pose.Heading - bearing))
}

// Reset clears the PI integral.
func (hp *HeadingPI) Reset() {
	hp.pi.Reset()
}
