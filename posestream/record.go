// Package posestream carries the pilot's two line-oriented streams: pose records from the
// vehicle and command records to it.
package posestream

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.viam.com/hitchpilot/vehicle"
)

var poseFields = []string{"x", "y", "heading", "s"}

// Command is one actuation command.
type Command struct {
	Velocity float64
	Steering float64
}

// HoldCommand stops the vehicle with the wheels straight.
var HoldCommand = Command{}

// ParseError is returned for a record that does not parse. The stream stays usable.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse record %q: %s", e.Line, e.Reason)
}

// ParsePose parses a whitespace separated "x y heading s" record.
func ParsePose(line string) (vehicle.Pose, error) {
	values, err := parseFloats(line, poseFields)
	if err != nil {
		return vehicle.Pose{}, err
	}
	return vehicle.Pose{X: values[0], Y: values[1], Heading: values[2], S: values[3]}, nil
}

// FormatPose formats pose as a newline terminated pose record.
func FormatPose(pose vehicle.Pose) string {
	return fmt.Sprintf("%f %f %f %f\n", pose.X, pose.Y, pose.Heading, pose.S)
}

// ParseCommand parses a whitespace separated "velocity steering" record.
func ParseCommand(line string) (Command, error) {
	values, err := parseFloats(line, []string{"velocity", "steering"})
	if err != nil {
		return Command{}, err
	}
	return Command{Velocity: values[0], Steering: values[1]}, nil
}

// FormatCommand formats cmd as a newline terminated command record.
func FormatCommand(cmd Command) string {
	return fmt.Sprintf("%f %f\n", cmd.Velocity, cmd.Steering)
}

func parseFloats(line string, names []string) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) != len(names) {
		return nil, &ParseError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", len(names), len(fields))}
	}
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("%s is not a number: %q", names[i], field)}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("%s must be finite, got %v", names[i], v)}
		}
		values[i] = v
	}
	return values, nil
}
