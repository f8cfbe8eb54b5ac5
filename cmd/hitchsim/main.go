// Package main runs a kinematic vehicle on the far side of the pilot's pose and command streams.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	goutils "go.viam.com/utils"

	"go.viam.com/hitchpilot/config"
	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/simulator"
)

func main() {
	app := &cli.App{
		Name:  "hitchsim",
		Usage: "simulate the vehicle driven by hitchpilot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "load configuration from `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.Float64Flag{
				Name:  "x",
				Usage: "override the starting x position",
			},
			&cli.Float64Flag{
				Name:  "y",
				Usage: "override the starting y position",
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
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewLogger("hitchsim")
	if c.Bool("debug") {
		logging.GlobalLogLevel.SetLevel(zap.DebugLevel)
	}
	defer goutils.UncheckedErrorFunc(logger.Sync)

	cfg, err := config.Read(ctx, c.String("config"), logger)
	if err != nil {
		return err
	}
	if c.IsSet("x") {
		cfg.Simulator.Start.X = c.Float64("x")
	}
	if c.IsSet("y") {
		cfg.Simulator.Start.Y = c.Float64("y")
	}

	stream, err := simulator.NewStream(cfg.StreamConfig(), logger, nil)
	if err != nil {
		return err
	}
	logger.Infow("simulating vehicle",
		"start", cfg.StreamConfig().Start.String(),
		"poses", cfg.Input.Path,
		"commands", cfg.Output.Path,
	)
	stream.Start(ctx)
	<-ctx.Done()
	stream.Stop()
	logger.Infow("simulation stopped", "pose", stream.Bicycle().Pose().String())
	return stream.Err()
}
