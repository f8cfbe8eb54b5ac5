// Package config defines the structures that configure the pilot and the simulator.
package config

import (
	"time"

	"github.com/pkg/errors"

	"go.viam.com/hitchpilot/control"
	"go.viam.com/hitchpilot/pilot"
	"go.viam.com/hitchpilot/posestream"
	"go.viam.com/hitchpilot/simulator"
	"go.viam.com/hitchpilot/vehicle"
)

// Defaults applied to fields left empty.
const (
	DefaultInputPath   = "/tmp/vehicle_output.pipe"
	DefaultOutputPath  = "/tmp/vehicle_input.pipe"
	DefaultFrequencyHz = 10
	DefaultPoseTimeout = "1s"
	DefaultPathSamples = 1000
	DefaultSimRateHz   = 50
)

// Config describes one run of the pilot. Input and Output are named from the pilot's side: the
// simulator writes poses to Input and reads commands from Output.
type Config struct {
	Input       posestream.Endpoint `json:"input"`
	Output      posestream.Endpoint `json:"output"`
	Vehicle     vehicle.Spec        `json:"vehicle"`
	Controller  control.Config      `json:"controller"`
	FrequencyHz float64             `json:"frequency_hz,omitempty"`
	// PoseTimeout is a duration string such as "500ms". "0" disables stale pose detection.
	PoseTimeout string    `json:"pose_timeout,omitempty"`
	PathSamples int       `json:"path_samples,omitempty"`
	LogFile     string    `json:"log_file,omitempty"`
	Debug       bool      `json:"debug,omitempty"`
	Simulator   Simulator `json:"simulator"`

	ConfigFilePath string `json:"-"`

	poseTimeout time.Duration
}

// Simulator configures the kinematic simulator used in place of a real vehicle.
type Simulator struct {
	Start  SimulatorPose `json:"start"`
	RateHz float64       `json:"rate_hz,omitempty"`
}

// SimulatorPose is the pose the simulated vehicle starts from.
type SimulatorPose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

func (c *Config) applyDefaults() {
	if c.Input.Path == "" {
		c.Input.Path = DefaultInputPath
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	if c.Controller.Type == "" {
		c.Controller.Type = control.TypePathFollowing
	}
	if c.FrequencyHz == 0 {
		c.FrequencyHz = DefaultFrequencyHz
	}
	if c.PoseTimeout == "" {
		c.PoseTimeout = DefaultPoseTimeout
	}
	if c.PathSamples == 0 {
		c.PathSamples = DefaultPathSamples
	}
	if c.Simulator.RateHz == 0 {
		c.Simulator.RateHz = DefaultSimRateHz
	}
}

// Validate returns an error naming the first invalid field.
func (c *Config) Validate() error {
	if err := c.Input.Validate("input"); err != nil {
		return err
	}
	if err := c.Output.Validate("output"); err != nil {
		return err
	}
	if c.Input.Kind != posestream.KindSerial && c.Input.Path == c.Output.Path {
		return errors.Errorf("input and output cannot both be %q", c.Input.Path)
	}
	if err := c.Vehicle.Validate(); err != nil {
		return errors.Wrap(err, "vehicle")
	}
	if err := c.Controller.Validate("controller"); err != nil {
		return err
	}
	if !(c.FrequencyHz > 0 && c.FrequencyHz <= 200) {
		return errors.Errorf("frequency_hz must be in (0, 200], got %v", c.FrequencyHz)
	}
	timeout, err := time.ParseDuration(c.PoseTimeout)
	if err != nil {
		return errors.Wrap(err, "pose_timeout")
	}
	if timeout < 0 {
		return errors.Errorf("pose_timeout cannot be negative, got %v", timeout)
	}
	c.poseTimeout = timeout
	if c.PathSamples < 2 {
		return errors.Errorf("path_samples must be at least 2, got %d", c.PathSamples)
	}
	if !(c.Simulator.RateHz > 0 && c.Simulator.RateHz <= 1000) {
		return errors.Errorf("simulator: rate_hz must be in (0, 1000], got %v", c.Simulator.RateHz)
	}
	return nil
}

// PilotConfig returns the pilot's view of a validated config.
func (c *Config) PilotConfig() pilot.Config {
	return pilot.Config{
		Input:       c.Input,
		Output:      c.Output,
		Vehicle:     c.Vehicle,
		Controller:  c.Controller,
		FrequencyHz: c.FrequencyHz,
		PoseTimeout: c.poseTimeout,
		PathSamples: c.PathSamples,
	}
}

// StreamConfig returns the simulator's view of a validated config, with the streams reversed.
func (c *Config) StreamConfig() simulator.StreamConfig {
	return simulator.StreamConfig{
		Commands:  c.Output,
		Poses:     c.Input,
		Wheelbase: c.Vehicle.Wheelbase,
		Start: vehicle.Pose{
			X:       c.Simulator.Start.X,
			Y:       c.Simulator.Start.Y,
			Heading: c.Simulator.Start.Heading,
		},
		RateHz: c.Simulator.RateHz,
	}
}
