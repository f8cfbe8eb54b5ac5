package motionplan

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/hitchpilot/vehicle"
)

const (
	scheduleCurvedVelMin  = 0.2
	scheduleRampDivisions = 3
)

// ScheduleAlongX creates a straight reverse schedule toward x = 0 with no steering. The
// velocity ramps up to velMax over the first third of the distance and down over the last third.
func ScheduleAlongX(pose vehicle.Pose, velMax float64, n int) (*InputSchedule, error) {
	if n < 2 {
		return nil, newInvalidPathError("need at least 2 samples, got %d", n)
	}
	sMax := pose.X
	if !(sMax > 0) {
		return nil, &PlanningError{Pose: pose, Reason: "vehicle must start at positive x to reverse toward the target"}
	}
	ramp := sMax / scheduleRampDivisions
	s := floats.Span(make([]float64, n+1), 0, sMax)[:n]
	samples := make([]ScheduleSample, n)
	for i := range samples {
		var vel float64
		switch {
		case s[i] < ramp:
			vel = math.Max(s[i]*velMax/ramp, velMax/10)
		case s[i] < sMax-ramp:
			vel = velMax
		default:
			vel = (sMax - s[i]) * velMax / ramp
		}
		samples[i] = ScheduleSample{S: s[i], Velocity: -vel}
	}
	return NewInputSchedule(samples)
}

// ScheduleCurved encodes the two-arc maneuver from pose to the origin as constant steering per
// segment: full lock on both arcs in opposite directions and straight on the tangent.
func ScheduleCurved(pose vehicle.Pose, spec vehicle.Spec, velMax float64, n int) (*InputSchedule, error) {
	if n < 2 {
		return nil, newInvalidPathError("need at least 2 samples, got %d", n)
	}
	if err := spec.Validate(); err != nil {
		return nil, &InvalidPathError{Reason: err.Error()}
	}
	m, err := solveArcManeuver(pose, spec.MinTurningRadius)
	if err != nil {
		return nil, err
	}

	lock := -m.coeff * spec.MaxSteering()
	s := floats.Span(make([]float64, n+1), 0, m.sMax)[:n]
	samples := make([]ScheduleSample, n)
	for i := range samples {
		sample := ScheduleSample{S: s[i]}
		switch {
		case s[i] < m.sTheta:
			sample.Velocity = -math.Max(velMax*s[i]/m.sTheta, scheduleCurvedVelMin)
			sample.Steering = lock
		case s[i] < m.sMax-m.sTheta:
			sample.Velocity = -velMax
		default:
			sample.Velocity = -velMax * (m.sMax - s[i]) / m.sTheta
			sample.Steering = -lock
		}
		samples[i] = sample
	}
	return NewInputSchedule(samples)
}
