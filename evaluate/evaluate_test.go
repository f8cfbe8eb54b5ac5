package evaluate

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/hitchpilot/control"
	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/vehicle"
)

var spec = vehicle.Spec{Wheelbase: 3.6, MinTurningRadius: 6}

func TestRunPathFollowing(t *testing.T) {
	trace, err := Run(Options{
		Vehicle:    spec,
		Controller: control.Config{Type: control.TypePathFollowing},
		Start:      vehicle.Pose{X: 20, Y: 10},
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trace.Stopped, test.ShouldBeTrue)
	test.That(t, trace.Reference, test.ShouldNotBeNil)
	test.That(t, trace.Samples[0].Pose, test.ShouldResemble, vehicle.Pose{X: 20, Y: 10})
	test.That(t, trace.Samples[0].Velocity, test.ShouldBeLessThan, 0)

	summary, err := trace.Summarize()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.FinalDistance, test.ShouldBeLessThan, 0.3)
	test.That(t, summary.Arrived, test.ShouldBeTrue)
	test.That(t, summary.Traveled, test.ShouldAlmostEqual, trace.Reference.Length(), 0.1)
	test.That(t, summary.MaxSteering, test.ShouldBeLessThanOrEqualTo, spec.MaxSteering()+1e-9)
	test.That(t, summary.MeanSteering, test.ShouldBeGreaterThan, 0)
	test.That(t, summary.MaxTrackingError, test.ShouldBeLessThan, 0.5)
	test.That(t, summary.Duration, test.ShouldBeGreaterThan, 30*time.Second)
}

func TestRunHeadingPIHasNoReference(t *testing.T) {
	trace, err := Run(Options{
		Vehicle:     spec,
		Controller:  control.Config{Type: control.TypeHeadingPI},
		Start:       vehicle.Pose{X: 10, Y: 1},
		MaxDuration: 2 * time.Minute,
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trace.Reference, test.ShouldBeNil)
	summary, err := trace.Summarize()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.MeanTrackingError, test.ShouldEqual, 0)
	final := trace.Final()
	test.That(t, summary.Arrived, test.ShouldEqual, math.Abs(final.X) <= ArrivalTolerance && math.Abs(final.Y) <= ArrivalTolerance)
	test.That(t, trace.Final().X, test.ShouldBeLessThan, 10)
}

func TestRunErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := Run(Options{Vehicle: spec, Controller: control.Config{Type: control.TypePathFollowing}, Step: time.Second,
		MaxDuration: time.Millisecond}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must be positive")

	_, err = Run(Options{Controller: control.Config{Type: control.TypePathFollowing}}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "vehicle: wheelbase")

	_, err = Run(Options{
		Vehicle:    spec,
		Controller: control.Config{Type: control.TypeSlidingMode},
		Start:      vehicle.Pose{X: 1, Y: 1},
	}, logger)
	var planErr *motionplan.PlanningError
	test.That(t, errors.As(err, &planErr), test.ShouldBeTrue)

	_, err = (&Trace{}).Summarize()
	test.That(t, err, test.ShouldBeError, "cannot summarize an empty trace")
	_, err = (&Trace{}).Plot("empty")
	test.That(t, err, test.ShouldBeError, "cannot plot an empty trace")
}

func TestSavePlot(t *testing.T) {
	trace, err := Run(Options{
		Vehicle:     spec,
		Controller:  control.Config{Type: control.TypeSlidingMode},
		Start:       vehicle.Pose{X: 20, Y: 10},
		PathSamples: 200,
		Step:        50 * time.Millisecond,
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	out := filepath.Join(t.TempDir(), "track.png")
	test.That(t, trace.SavePlot("sliding mode from (20, 10)", out), test.ShouldBeNil)
	info, err := os.Stat(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}
