// Package vehicle holds the kinematic description of the controlled vehicle and its measured pose.
package vehicle

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Spec is the kinematic description of the vehicle. It is constant for a run.
type Spec struct {
	// Wheelbase is the distance between the front and rear axles.
	Wheelbase float64 `json:"wheelbase"`
	// MinTurningRadius is the tightest radius the vehicle can follow.
	MinTurningRadius float64 `json:"min_turning_radius"`
}

// Validate ensures both dimensions are finite and positive.
func (s Spec) Validate() error {
	if !(s.Wheelbase > 0) || math.IsInf(s.Wheelbase, 0) {
		return errors.Errorf("wheelbase must be a positive number, got %v", s.Wheelbase)
	}
	if !(s.MinTurningRadius > 0) || math.IsInf(s.MinTurningRadius, 0) {
		return errors.Errorf("min_turning_radius must be a positive number, got %v", s.MinTurningRadius)
	}
	return nil
}

// MaxSteering is the steering angle that produces the minimum turning radius.
func (s Spec) MaxSteering() float64 {
	return math.Atan2(s.Wheelbase, s.MinTurningRadius)
}

// Pose is a single measurement of the vehicle state. S is the cumulative distance
// travelled since the start of the maneuver as reported by the pose source.
type Pose struct {
	X       float64
	Y       float64
	Heading float64
	S       float64
}

// Position returns the planar position of the pose.
func (p Pose) Position() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

func (p Pose) String() string {
	return fmt.Sprintf("x: %.4f, y: %.4f, heading: %.4f, s: %.4f", p.X, p.Y, p.Heading, p.S)
}
