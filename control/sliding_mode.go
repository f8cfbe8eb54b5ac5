package control

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/vehicle"
)

// SlidingModeAttributes configures the sliding_mode controller. K0 weighs lateral error against
// heading error on the sliding surface, K1 is the linear reaching gain and K2 the robust one.
type SlidingModeAttributes struct {
	K0              float64         `json:"k0"`
	K1              float64         `json:"k1"`
	K2              float64         `json:"k2"`
	Band            float64         `json:"band"`
	VelocityProfile VelocityProfile `json:"velocity_profile"`
}

// DefaultSlidingModeAttributes returns the gains used when none are configured.
func DefaultSlidingModeAttributes() SlidingModeAttributes {
	return SlidingModeAttributes{
		K0:              0.5,
		K1:              1,
		K2:              0.1,
		Band:            0.01,
		VelocityProfile: DefaultVelocityProfile(),
	}
}

// Validate ensures every gain and the saturation band are positive.
func (attrs SlidingModeAttributes) Validate() error {
	for _, gain := range []struct {
		name  string
		value float64
	}{{"k0", attrs.K0}, {"k1", attrs.K1}, {"k2", attrs.K2}, {"band", attrs.Band}} {
		if !(gain.value > 0) || math.IsInf(gain.value, 1) {
			return errors.Errorf("sliding mode %s must be a positive number, got %v", gain.name, gain.value)
		}
	}
	return attrs.VelocityProfile.Validate()
}

func slidingModeAttributes(cfg Config) (SlidingModeAttributes, error) {
	attrs := DefaultSlidingModeAttributes()
	if err := decodeAttributes(cfg.Type, cfg.Attributes, &attrs); err != nil {
		return SlidingModeAttributes{}, err
	}
	return attrs, attrs.Validate()
}

// SlidingMode tracks the reference path by x. The sliding surface combines the lateral error
// with the difference in heading slopes, and the law drives it to zero with a linear term plus
// a saturated switching term.
type SlidingMode struct {
	path    *motionplan.ReferencePath
	spec    vehicle.Spec
	attrs   SlidingModeAttributes
	profile trapezoidProfile
}

// NewSlidingMode binds a sliding-mode law to path, which must be indexable by x.
func NewSlidingMode(path *motionplan.ReferencePath, spec vehicle.Spec, attrs SlidingModeAttributes) (*SlidingMode, error) {
	if path == nil {
		return nil, errors.New("sliding mode needs a reference path")
	}
	if !path.XIndexed() {
		return nil, &motionplan.InvalidPathError{Reason: "sliding mode needs x strictly descending along the path"}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	profile, err := newTrapezoidProfile(attrs.VelocityProfile, path.Length())
	if err != nil {
		return nil, err
	}
	return &SlidingMode{path: path, spec: spec, attrs: attrs, profile: profile}, nil
}

// CalculateVelocity follows the velocity profile keyed on the traveled arc length.
func (sm *SlidingMode) CalculateVelocity(pose vehicle.Pose) float64 {
	return sm.profile.velocity(pose.S)
}

// CalculateSteering returns the steering angle that drives the sliding surface to zero.
func (sm *SlidingMode) CalculateSteering(pose vehicle.Pose) float64 {
	yRef := sm.path.AtX(motionplan.FieldY, pose.X)
	headingRef := sm.path.AtX(motionplan.FieldHeading, pose.X)
	curvature := sm.path.AtX(motionplan.FieldCurvature, pose.X)

	lateral := yRef - pose.Y
	slope := math.Tan(pose.Heading) - math.Tan(headingRef)
	sigma := sm.attrs.K0*lateral + slope

	// x decreases while reversing, so the reference slope changes at -curvature/cos^3 per unit x.
	feedForward := -curvature / math.Pow(math.Cos(headingRef), 3)
	u := feedForward + sm.attrs.K0*slope + sm.attrs.K1*sigma + sm.attrs.K2*saturate(sigma, sm.attrs.Band)
	return math.Atan2(sm.spec.Wheelbase*math.Pow(math.Cos(pose.Heading), 3)*u, 1)
}

// saturate is a sign function made linear inside ±band.
func saturate(v, band float64) float64 {
	if math.Abs(v) <= band {
		return v / band
	}
	return math.Copysign(1, v)
}
