// Package main evaluates a pilot configuration offline against the kinematic vehicle model and
// plots the result.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/hitchpilot/config"
	"go.viam.com/hitchpilot/evaluate"
	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/vehicle"
)

func main() {
	app := &cli.App{
		Name:      "hitchplan",
		Usage:     "simulate a maneuver with the configured controller",
		ArgsUsage: "X Y [HEADING]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "load configuration from `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "plot",
				Usage: "write the vehicle track to `FILE` (.png, .svg or .pdf)",
			},
			&cli.DurationFlag{
				Name:  "step",
				Value: evaluate.DefaultStep,
				Usage: "simulation step",
			},
			&cli.DurationFlag{
				Name:  "max-duration",
				Value: evaluate.DefaultMaxDuration,
				Usage: "give up after simulating this long",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := logging.NewLogger("hitchplan")
	if c.Bool("debug") {
		logger.SetLevel(logging.DEBUG)
	}

	start, err := parseStart(c.Args().Slice())
	if err != nil {
		return err
	}
	cfg, err := config.Read(c.Context, c.String("config"), logger)
	if err != nil {
		return err
	}

	trace, err := evaluate.Run(evaluate.Options{
		Vehicle:     cfg.Vehicle,
		Controller:  cfg.Controller,
		Start:       start,
		PathSamples: cfg.PathSamples,
		Step:        c.Duration("step"),
		MaxDuration: c.Duration("max-duration"),
	}, logger)
	if err != nil {
		return err
	}
	summary, err := trace.Summarize()
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "controller:      %s\n", cfg.Controller.Type)
	fmt.Fprintf(c.App.Writer, "start:           %s\n", start)
	fmt.Fprintf(c.App.Writer, "final:           %s\n", trace.Final())
	fmt.Fprintf(c.App.Writer, "stopped:         %t after %v\n", trace.Stopped, summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(c.App.Writer, "traveled:        %.3f m\n", summary.Traveled)
	fmt.Fprintf(c.App.Writer, "final distance:  %.3f m (arrived: %t)\n", summary.FinalDistance, summary.Arrived)
	fmt.Fprintf(c.App.Writer, "final heading:   %.4f rad\n", summary.FinalHeading)
	fmt.Fprintf(c.App.Writer, "steering:        mean %.4f max %.4f stdev %.4f rad\n",
		summary.MeanSteering, summary.MaxSteering, summary.SteeringStdev)
	if trace.Reference != nil {
		fmt.Fprintf(c.App.Writer, "tracking error:  mean %.3f max %.3f m\n", summary.MeanTrackingError, summary.MaxTrackingError)
	}

	if out := c.String("plot"); out != "" {
		title := fmt.Sprintf("%s from (%.1f, %.1f)", cfg.Controller.Type, start.X, start.Y)
		if err := trace.SavePlot(title, out); err != nil {
			return err
		}
		logger.Infow("wrote plot", "path", out)
	}
	return nil
}

func parseStart(args []string) (vehicle.Pose, error) {
	if len(args) == 2 {
		args = append(args, "0")
	}
	if len(args) != 3 {
		return vehicle.Pose{}, errors.Errorf("expected X Y [HEADING], got %d arguments", len(args))
	}
	fields := make([]float64, 3)
	for i, arg := range args {
		if _, err := fmt.Sscan(arg, &fields[i]); err != nil {
			return vehicle.Pose{}, errors.Wrapf(err, "invalid start coordinate %q", arg)
		}
	}
	return vehicle.Pose{X: fields[0], Y: fields[1], Heading: fields[2]}, nil
}
