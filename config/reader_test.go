package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/hitchpilot/control"
	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/posestream"
	"go.viam.com/hitchpilot/vehicle"
)

const minimal = `{"vehicle": {"wheelbase": 3.6, "min_turning_radius": 6}}`

func TestFromReaderDefaults(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	cfg, err := FromReader(ctx, "somepath", strings.NewReader(minimal), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, "somepath")
	test.That(t, cfg.Input, test.ShouldResemble, posestream.Endpoint{Path: DefaultInputPath})
	test.That(t, cfg.Output, test.ShouldResemble, posestream.Endpoint{Path: DefaultOutputPath})
	test.That(t, cfg.Controller.Type, test.ShouldEqual, control.TypePathFollowing)
	test.That(t, cfg.FrequencyHz, test.ShouldEqual, 10)
	test.That(t, cfg.PathSamples, test.ShouldEqual, 1000)

	pcfg := cfg.PilotConfig()
	test.That(t, pcfg.PoseTimeout, test.ShouldEqual, time.Second)
	test.That(t, pcfg.Vehicle, test.ShouldResemble, vehicle.Spec{Wheelbase: 3.6, MinTurningRadius: 6})
	test.That(t, pcfg.Validate(), test.ShouldBeNil)

	scfg := cfg.StreamConfig()
	test.That(t, scfg.Commands, test.ShouldResemble, cfg.Output)
	test.That(t, scfg.Poses, test.ShouldResemble, cfg.Input)
	test.That(t, scfg.RateHz, test.ShouldEqual, 50)
	test.That(t, scfg.Validate(), test.ShouldBeNil)
}

func TestFromReaderFull(t *testing.T) {
	cfg, err := FromReader(context.Background(), "somepath", strings.NewReader(`{
		"input": {"kind": "serial", "path": "/dev/ttyUSB0", "baud": 115200},
		"output": {"path": "/tmp/commands.pipe"},
		"vehicle": {"wheelbase": 2.5, "min_turning_radius": 5},
		"controller": {
			"type": "sliding_mode",
			"attributes": {"k1": 2, "velocity_profile": {"vel_max": 0.8}}
		},
		"frequency_hz": 50,
		"pose_timeout": "0",
		"path_samples": 500,
		"log_file": "/tmp/hitchpilot.log",
		"simulator": {"start": {"x": 20, "y": 10, "heading": 0.1}, "rate_hz": 100}
	}`), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Input.Kind, test.ShouldEqual, posestream.KindSerial)
	test.That(t, cfg.Controller.Attributes["k1"], test.ShouldEqual, 2.0)
	test.That(t, cfg.LogFile, test.ShouldEqual, "/tmp/hitchpilot.log")
	test.That(t, cfg.PilotConfig().PoseTimeout, test.ShouldEqual, time.Duration(0))
	test.That(t, cfg.StreamConfig().Start, test.ShouldResemble, vehicle.Pose{X: 20, Y: 10, Heading: 0.1})
}

func TestFromReaderValidate(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	_, err := FromReader(ctx, "somepath", strings.NewReader(""), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "EOF")

	_, err = FromReader(ctx, "somepath", strings.NewReader(`{"cloud": {}}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown field "cloud"`)

	for _, c := range []struct {
		json string
		err  string
	}{
		{`{}`, "vehicle: wheelbase must be a positive number, got 0"},
		{`{"vehicle": {"wheelbase": 3.6}}`, "vehicle: min_turning_radius must be a positive number, got 0"},
		{`{"input": {"kind": "tcp", "path": "x"}}`, `input: unsupported endpoint kind "tcp"`},
		{`{"output": {"path": "/tmp/vehicle_output.pipe"}}`, `input and output cannot both be "/tmp/vehicle_output.pipe"`},
		{`{"controller": {"type": "pid"}}`, "controller: unsupported trajectory controller type pid"},
		{`{"controller": {"type": "heading_pi", "attributes": {"gain": 1}}}`, "unknown attributes [gain]"},
		{`{"frequency_hz": 500}`, "frequency_hz must be in (0, 200], got 500"},
		{`{"frequency_hz": -1}`, "frequency_hz must be in (0, 200], got -1"},
		{`{"pose_timeout": "soon"}`, "pose_timeout"},
		{`{"pose_timeout": "-1s"}`, "pose_timeout cannot be negative, got -1s"},
		{`{"path_samples": 1}`, "path_samples must be at least 2, got 1"},
		{`{"simulator": {"rate_hz": 5000}}`, "simulator: rate_hz must be in (0, 1000], got 5000"},
	} {
		input := c.json
		if !strings.Contains(input, "vehicle") && input != `{}` {
			input = `{"vehicle": {"wheelbase": 3.6, "min_turning_radius": 6}, ` + strings.TrimPrefix(input, "{")
		}
		_, err := FromReader(ctx, "somepath", strings.NewReader(input), logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "invalid config")
		test.That(t, err.Error(), test.ShouldContainSubstring, c.err)
	}
}

func TestRead(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()

	t.Setenv("HITCHPILOT_PIPE_DIR", dir)
	path := filepath.Join(dir, "pilot.json")
	test.That(t, os.WriteFile(path, []byte(`{
		"input": {"path": "${HITCHPILOT_PIPE_DIR}/poses.pipe"},
		"output": {"path": "${HITCHPILOT_PIPE_DIR}/commands.pipe"},
		"vehicle": {"wheelbase": 3.6, "min_turning_radius": 6}
	}`), 0o600), test.ShouldBeNil)

	cfg, err := Read(ctx, path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Input.Path, test.ShouldEqual, filepath.Join(dir, "poses.pipe"))
	test.That(t, cfg.Output.Path, test.ShouldEqual, filepath.Join(dir, "commands.pipe"))

	_, err = Read(ctx, filepath.Join(dir, "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read config")
}
