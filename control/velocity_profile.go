package control

import (
	"math"

	"github.com/pkg/errors"
)

// VelocityProfile describes a trapezoid speed profile: ramp up from VelMin to VelMax over the
// first RampFraction of the maneuver, hold VelMax, and ramp down to VelMin over the last
// RampFraction.
type VelocityProfile struct {
	VelMin       float64 `json:"vel_min"`
	VelMax       float64 `json:"vel_max"`
	RampFraction float64 `json:"ramp_fraction"`
}

// DefaultVelocityProfile returns the profile used when a controller does not configure one.
func DefaultVelocityProfile() VelocityProfile {
	return VelocityProfile{VelMin: 0.1, VelMax: 0.5, RampFraction: 0.3}
}

// Validate ensures the profile describes a trapezoid.
func (vp VelocityProfile) Validate() error {
	if !(vp.VelMax > 0) {
		return errors.Errorf("vel_max must be a positive number, got %v", vp.VelMax)
	}
	if !(vp.VelMin >= 0 && vp.VelMin <= vp.VelMax) {
		return errors.Errorf("vel_min must be between 0 and vel_max %v, got %v", vp.VelMax, vp.VelMin)
	}
	if !(vp.RampFraction > 0 && vp.RampFraction <= 0.5) {
		return errors.Errorf("ramp_fraction must be in (0, 0.5], got %v", vp.RampFraction)
	}
	return nil
}

// trapezoidProfile is a VelocityProfile bound to the length of one maneuver.
type trapezoidProfile struct {
	velMin float64
	velMax float64
	total  float64
	ramp   float64
}

func newTrapezoidProfile(vp VelocityProfile, total float64) (trapezoidProfile, error) {
	if err := vp.Validate(); err != nil {
		return trapezoidProfile{}, err
	}
	if !(total > 0) || math.IsInf(total, 1) {
		return trapezoidProfile{}, errors.Errorf("velocity profile needs a positive maneuver length, got %v", total)
	}
	return trapezoidProfile{
		velMin: vp.VelMin,
		velMax: vp.VelMax,
		total:  total,
		ramp:   total * vp.RampFraction,
	}, nil
}

// velocity returns the commanded velocity at the given progress along the maneuver. Motion is
// in reverse, so the result is never positive. It is zero once the maneuver is complete.
func (tp trapezoidProfile) velocity(progress float64) float64 {
	switch {
	case progress < tp.ramp:
		return -math.Max(tp.velMin, tp.velMax*progress/tp.ramp)
	case progress < tp.total-tp.ramp:
		return -tp.velMax
	case progress < tp.total:
		return -math.Max(tp.velMin, tp.velMax*(tp.total-progress)/tp.ramp)
	default:
		return 0
	}
}
