package control

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/vehicle"
)

// PathFollowingAttributes configures the path_following controller.
type PathFollowingAttributes struct {
	VelocityProfile VelocityProfile `json:"velocity_profile"`
}

func pathFollowingAttributes(cfg Config) (PathFollowingAttributes, error) {
	attrs := PathFollowingAttributes{VelocityProfile: DefaultVelocityProfile()}
	if err := decodeAttributes(cfg.Type, cfg.Attributes, &attrs); err != nil {
		return PathFollowingAttributes{}, err
	}
	return attrs, attrs.VelocityProfile.Validate()
}

// PathFollowing is a feed-forward law: it steers with the reference curvature at the arc length
// the vehicle has traveled and ignores tracking error.
type PathFollowing struct {
	path    *motionplan.ReferencePath
	spec    vehicle.Spec
	profile trapezoidProfile
}

// NewPathFollowing binds a path-following law to path.
func NewPathFollowing(path *motionplan.ReferencePath, spec vehicle.Spec, vp VelocityProfile) (*PathFollowing, error) {
	if path == nil {
		return nil, errors.New("path following needs a reference path")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	profile, err := newTrapezoidProfile(vp, path.Length())
	if err != nil {
		return nil, err
	}
	return &PathFollowing{path: path, spec: spec, profile: profile}, nil
}

// CalculateVelocity follows the velocity profile keyed on the traveled arc length.
func (pf *PathFollowing) CalculateVelocity(pose vehicle.Pose) float64 {
	return pf.profile.velocity(pose.S)
}

// CalculateSteering returns the steering angle that holds the reference curvature while reversing.
func (pf *PathFollowing) CalculateSteering(pose vehicle.Pose) float64 {
	curvature := pf.path.AtS(motionplan.FieldCurvature, pose.S)
	return -math.Atan2(pf.spec.Wheelbase*curvature, 1)
}
