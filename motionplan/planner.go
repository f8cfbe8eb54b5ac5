// Package motionplan builds the reference path a vehicle follows from its first observed pose
// to the origin, and the interpolation structures the control laws query it through.
package motionplan

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/hitchpilot/spatialmath"
	"go.viam.com/hitchpilot/vehicle"
)

// DefaultSamples is the number of samples in a planned path.
const DefaultSamples = 1000

// Planner creates two-arc reverse maneuvers: an arc of minimum turning radius leaving the
// vehicle, a straight segment on the common tangent, and an arc of the same radius ending
// at the target.
type Planner struct {
	samples int
}

// NewPlanner returns a planner producing paths with the given number of samples. Zero selects
// DefaultSamples.
func NewPlanner(samples int) *Planner {
	if samples == 0 {
		samples = DefaultSamples
	}
	return &Planner{samples: samples}
}

// Samples returns the number of samples in every planned path.
func (pl *Planner) Samples() int {
	return pl.samples
}

// arcManeuver holds the solved geometry of a two-arc maneuver.
type arcManeuver struct {
	veh    r2.Point
	target r2.Point
	radius float64
	// theta is the angle subtended on each circle, which is also the heading of the tangent.
	theta  float64
	sTheta float64
	sMax   float64
	// coeff is +1 when the vehicle is above the target and -1 otherwise.
	coeff float64
}

func solveArcManeuver(pose vehicle.Pose, radius float64) (arcManeuver, error) {
	target := spatialmath.Origin
	veh := pose.Position()
	coeff := -1.0
	if veh.Y > target.Y {
		coeff = 1.0
	}
	oTarget := target.Add(r2.Point{Y: coeff * radius})
	oVeh := veh.Add(r2.Point{Y: -coeff * radius})

	dOO := spatialmath.Distance(oTarget, oVeh)
	if !(dOO >= 2*radius) {
		return arcManeuver{}, &PlanningError{
			Pose:   pose,
			Reason: "turning circles overlap, no common tangent exists",
		}
	}
	dGG := 2 * math.Sqrt(math.Max(0, math.Pow(dOO/2, 2)-radius*radius))
	theta := math.Abs(math.Asin((veh.X-target.X)/dOO) - math.Acos(2*radius/dOO))

	m := arcManeuver{
		veh:    veh,
		target: target,
		radius: radius,
		theta:  theta,
		sTheta: radius * theta,
		coeff:  coeff,
	}
	m.sMax = 2*m.sTheta + dGG
	if !(m.sMax > 0) {
		return arcManeuver{}, &PlanningError{Pose: pose, Reason: "vehicle is already at the target"}
	}
	return m, nil
}

// sampleAt evaluates the maneuver at arc length s.
func (m arcManeuver) sampleAt(s float64) PathSample {
	r := m.radius
	switch {
	case s < m.sTheta:
		ang := s / r
		return PathSample{
			S:         s,
			X:         m.veh.X - r*math.Sin(ang),
			Y:         m.veh.Y - m.coeff*(r-r*math.Cos(ang)),
			Heading:   m.coeff * ang,
			Curvature: m.coeff / r,
		}
	case s < m.sMax-m.sTheta:
		d := s - m.sTheta
		return PathSample{
			S:       s,
			X:       m.veh.X - r*math.Sin(m.theta) - d*math.Cos(m.theta),
			Y:       m.veh.Y - m.coeff*(r-r*math.Cos(m.theta)) - m.coeff*d*math.Sin(m.theta),
			Heading: m.coeff * m.theta,
		}
	default:
		ang := (m.sMax - s) / r
		return PathSample{
			S:         s,
			X:         m.target.X + r*math.Sin(ang),
			Y:         m.target.Y + m.coeff*(r-r*math.Cos(ang)),
			Heading:   m.coeff * ang,
			Curvature: -m.coeff / r,
		}
	}
}

// Plan builds the reference path from pose to the origin. It returns a *PlanningError when the
// geometry has no solution and an *InvalidPathError when the inputs cannot produce an
// interpolable path.
func (pl *Planner) Plan(pose vehicle.Pose, spec vehicle.Spec) (*ReferencePath, error) {
	if pl.samples < 2 {
		return nil, newInvalidPathError("need at least 2 samples, got %d", pl.samples)
	}
	if err := spec.Validate(); err != nil {
		return nil, &InvalidPathError{Reason: err.Error()}
	}
	m, err := solveArcManeuver(pose, spec.MinTurningRadius)
	if err != nil {
		return nil, err
	}

	// Span fills both ends, the maneuver is sampled on [0, sMax).
	s := floats.Span(make([]float64, pl.samples+1), 0, m.sMax)[:pl.samples]
	samples := make([]PathSample, pl.samples)
	for i := range samples {
		samples[i] = m.sampleAt(s[i])
	}
	return NewReferencePath(samples)
}
