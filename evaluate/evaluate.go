// Package evaluate drives a trajectory controller against the kinematic vehicle model offline,
// so a configuration can be judged before it is run against a real vehicle.
package evaluate

import (
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/hitchpilot/control"
	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/simulator"
	"go.viam.com/hitchpilot/spatialmath"
	"go.viam.com/hitchpilot/vehicle"
)

// DefaultStep and DefaultMaxDuration are used when an Options field is zero.
const (
	DefaultStep        = 20 * time.Millisecond
	DefaultMaxDuration = 5 * time.Minute
)

// ArrivalTolerance is how far from the target, per axis in meters, a run may end and still count
// as arrived.
const ArrivalTolerance = 0.3

// Options configures a run.
type Options struct {
	Vehicle     vehicle.Spec
	Controller  control.Config
	Start       vehicle.Pose
	PathSamples int
	Step        time.Duration
	MaxDuration time.Duration
}

// Sample is the vehicle state and the command computed for it at one step.
type Sample struct {
	Time     time.Duration
	Pose     vehicle.Pose
	Velocity float64
	Steering float64
}

// Trace is the record of one run.
type Trace struct {
	Samples []Sample
	// Reference is the planned path when the controller plans one.
	Reference *motionplan.ReferencePath
	// Stopped reports whether the controller commanded a stop before MaxDuration.
	Stopped bool
}

// Run simulates the controller from opts.Start until it commands zero velocity or
// opts.MaxDuration has elapsed.
func Run(opts Options, logger logging.Logger) (*Trace, error) {
	if opts.Step == 0 {
		opts.Step = DefaultStep
	}
	if opts.MaxDuration == 0 {
		opts.MaxDuration = DefaultMaxDuration
	}
	if opts.Step < 0 || opts.MaxDuration < opts.Step {
		return nil, errors.Errorf("step %v must be positive and no longer than max duration %v", opts.Step, opts.MaxDuration)
	}
	if err := opts.Vehicle.Validate(); err != nil {
		return nil, errors.Wrap(err, "vehicle")
	}

	planner := motionplan.NewPlanner(opts.PathSamples)
	ctrl, err := control.NewTrajectoryController(opts.Controller, opts.Vehicle, opts.Start, planner, logger)
	if err != nil {
		return nil, err
	}

	trace := &Trace{}
	switch opts.Controller.Type {
	case control.TypePathFollowing, control.TypeSlidingMode:
		// the controller has already planned the same path successfully.
		if trace.Reference, err = planner.Plan(opts.Start, opts.Vehicle); err != nil {
			return nil, err
		}
	}

	bike := simulator.NewBicycle(opts.Vehicle.Wheelbase, opts.Start)
	for elapsed := time.Duration(0); elapsed <= opts.MaxDuration; elapsed += opts.Step {
		pose := bike.Pose()
		sample := Sample{Time: elapsed, Pose: pose, Velocity: ctrl.CalculateVelocity(pose)}
		if sample.Velocity == 0 {
			trace.Samples = append(trace.Samples, sample)
			trace.Stopped = true
			break
		}
		sample.Steering = ctrl.CalculateSteering(pose)
		trace.Samples = append(trace.Samples, sample)
		bike.Command(sample.Velocity, sample.Steering)
		bike.Step(opts.Step)
	}
	logger.Debugw("evaluated controller",
		"type", opts.Controller.Type,
		"start", opts.Start.String(),
		"samples", len(trace.Samples),
		"stopped", trace.Stopped,
	)
	return trace, nil
}

// Final returns the last recorded pose.
func (tr *Trace) Final() vehicle.Pose {
	return tr.Samples[len(tr.Samples)-1].Pose
}

// Summary condenses a trace into the figures used to compare controllers.
type Summary struct {
	Duration      time.Duration
	Traveled      float64
	FinalDistance float64
	FinalHeading  float64
	// Arrived reports whether the final position is within ArrivalTolerance of the target.
	Arrived bool
	MeanSteering  float64
	MaxSteering   float64
	SteeringStdev float64
	// MeanTrackingError and MaxTrackingError are distances to the nearest reference sample, and
	// zero without a reference path.
	MeanTrackingError float64
	MaxTrackingError  float64
}

// Summarize computes the trace's summary.
func (tr *Trace) Summarize() (Summary, error) {
	if len(tr.Samples) == 0 {
		return Summary{}, errors.New("cannot summarize an empty trace")
	}
	final := tr.Final()
	summary := Summary{
		Duration:      tr.Samples[len(tr.Samples)-1].Time,
		Traveled:      final.S - tr.Samples[0].Pose.S,
		FinalDistance: final.Position().Norm(),
		FinalHeading:  spatialmath.NormalizeAngle(final.Heading),
		Arrived:       spatialmath.PointAlmostEqual(final.Position(), spatialmath.Origin, ArrivalTolerance),
	}

	steering := make(stats.Float64Data, 0, len(tr.Samples))
	tracking := make(stats.Float64Data, 0, len(tr.Samples))
	for _, s := range tr.Samples {
		steering = append(steering, math.Abs(s.Steering))
		if tr.Reference != nil {
			tracking = append(tracking, nearestDistance(tr.Reference, s.Pose.Position()))
		}
	}

	var err error
	if summary.MeanSteering, err = steering.Mean(); err != nil {
		return Summary{}, err
	}
	if summary.MaxSteering, err = steering.Max(); err != nil {
		return Summary{}, err
	}
	if summary.SteeringStdev, err = steering.StandardDeviation(); err != nil {
		return Summary{}, err
	}
	if len(tracking) > 0 {
		if summary.MeanTrackingError, err = tracking.Mean(); err != nil {
			return Summary{}, err
		}
		if summary.MaxTrackingError, err = tracking.Max(); err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

func nearestDistance(path *motionplan.ReferencePath, pt r2.Point) float64 {
	best := math.Inf(1)
	for _, s := range path.Samples() {
		best = math.Min(best, spatialmath.Distance(pt, spatialmath.NewPoint(s.X, s.Y)))
	}
	return best
}
