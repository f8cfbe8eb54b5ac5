// Package simulator provides a kinematic vehicle model and a stream simulator that plays the
// vehicle's side of the pose and command streams.
package simulator

import (
	"math"
	"sync"
	"time"

	"go.viam.com/hitchpilot/vehicle"
)

// Bicycle is a kinematic single-track model with the reference point on the rear axle.
// It is safe for concurrent use.
type Bicycle struct {
	mu        sync.Mutex
	wheelbase float64
	pose      vehicle.Pose
	velocity  float64
	steering  float64
}

// NewBicycle returns a stationary model at pose.
func NewBicycle(wheelbase float64, pose vehicle.Pose) *Bicycle {
	return &Bicycle{wheelbase: wheelbase, pose: pose}
}

// Command sets the velocity and steering angle applied by subsequent steps.
func (b *Bicycle) Command(velocity, steering float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.velocity = velocity
	b.steering = steering
}

// Step integrates the model over dt. The traveled arc length grows with |velocity| regardless
// of direction.
func (b *Bicycle) Step(dt time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sec := dt.Seconds()
	b.pose.X += b.velocity * math.Cos(b.pose.Heading) * sec
	b.pose.Y += b.velocity * math.Sin(b.pose.Heading) * sec
	b.pose.Heading += b.velocity / b.wheelbase * math.Tan(b.steering) * sec
	b.pose.S += math.Abs(b.velocity) * sec
}

// Pose returns the current pose.
func (b *Bicycle) Pose() vehicle.Pose {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pose
}

// Velocity returns the commanded velocity.
func (b *Bicycle) Velocity() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.velocity
}
