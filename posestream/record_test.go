package posestream

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/hitchpilot/vehicle"
)

func TestParsePose(t *testing.T) {
	pose, err := ParsePose("20 10 0 0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose, test.ShouldResemble, vehicle.Pose{X: 20, Y: 10})

	pose, err = ParsePose("  15.5\t8 -0.1   5  ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose, test.ShouldResemble, vehicle.Pose{X: 15.5, Y: 8, Heading: -0.1, S: 5})

	pose, err = ParsePose("1e1 -2E-1 +0.5 3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose, test.ShouldResemble, vehicle.Pose{X: 10, Y: -0.2, Heading: 0.5, S: 3})
}

func TestParsePoseMalformed(t *testing.T) {
	for _, c := range []struct {
		line   string
		reason string
	}{
		{"20 10 0", "expected 4 fields, got 3"},
		{"20 10 0 0 1", "expected 4 fields, got 5"},
		{"", "expected 4 fields, got 0"},
		{"20,10,0,0", "expected 4 fields, got 1"},
		{"20 ten 0 0", `y is not a number: "ten"`},
		{"20 10 NaN 0", "heading must be finite, got NaN"},
		{"20 10 0 Inf", "s must be finite, got +Inf"},
	} {
		_, err := ParsePose(c.line)
		var parseErr *ParseError
		test.That(t, errors.As(err, &parseErr), test.ShouldBeTrue)
		test.That(t, parseErr.Reason, test.ShouldEqual, c.reason)
		test.That(t, parseErr.Line, test.ShouldEqual, c.line)
	}
}

func TestCommandRecords(t *testing.T) {
	test.That(t, FormatCommand(Command{Velocity: -0.5, Steering: 0.1}), test.ShouldEqual, "-0.500000 0.100000\n")
	test.That(t, FormatCommand(HoldCommand), test.ShouldEqual, "0.000000 0.000000\n")

	cmd, err := ParseCommand("-0.500000 0.100000")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd, test.ShouldResemble, Command{Velocity: -0.5, Steering: 0.1})

	_, err = ParseCommand("1")
	test.That(t, err, test.ShouldBeError, `cannot parse record "1": expected 2 fields, got 1`)

	test.That(t, FormatPose(vehicle.Pose{X: 1, Y: 2, Heading: 0.25, S: 4}), test.ShouldEqual, "1.000000 2.000000 0.250000 4.000000\n")
}
