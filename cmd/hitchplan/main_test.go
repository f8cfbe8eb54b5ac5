package main

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/hitchpilot/vehicle"
)

func TestParseStart(t *testing.T) {
	pose, err := parseStart([]string{"20", "10"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose, test.ShouldResemble, vehicle.Pose{X: 20, Y: 10})

	pose, err = parseStart([]string{"15", "-4", "0.2"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose, test.ShouldResemble, vehicle.Pose{X: 15, Y: -4, Heading: 0.2})

	_, err = parseStart([]string{"15"})
	test.That(t, err, test.ShouldBeError, "expected X Y [HEADING], got 1 arguments")

	_, err = parseStart([]string{"15", "north"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `invalid start coordinate "north"`)
}
