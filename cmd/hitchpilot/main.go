// Package main runs the reverse-parking pilot between a pose stream and a command stream.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	goutils "go.viam.com/utils"

	"go.viam.com/hitchpilot/config"
	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/pilot"
)

const (
	flagConfig     = "config"
	flagDebug      = "debug"
	flagLogRecords = "log-records"
	flagInput      = "input"
	flagOutput     = "output"
)

func main() {
	app := &cli.App{
		Name:  "hitchpilot",
		Usage: "steer a vehicle in reverse onto the origin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagConfig,
				Aliases:  []string{"c"},
				Usage:    "load configuration from `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  flagLogRecords,
				Usage: "log every pose received and command sent",
			},
			&cli.StringFlag{
				Name:  flagInput,
				Usage: "read poses from `PATH` instead of the configured input",
			},
			&cli.StringFlag{
				Name:  flagOutput,
				Usage: "write commands to `PATH` instead of the configured output",
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

	logger := logging.NewLogger("hitchpilot")
	cfg, err := config.Read(ctx, c.String(flagConfig), logger)
	if err != nil {
		return err
	}
	if path := c.String(flagInput); path != "" {
		cfg.Input.Path = path
	}
	if path := c.String(flagOutput); path != "" {
		cfg.Output.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}

	if c.Bool(flagDebug) || cfg.Debug {
		logging.GlobalLogLevel.SetLevel(zap.DebugLevel)
		logger.SetLevel(logging.DEBUG)
	}
	if c.Bool(flagLogRecords) {
		ctx = logging.EnableDebugMode(ctx, "")
	}
	if cfg.LogFile != "" {
		appender, closer := logging.NewFileAppender(logging.FileAppenderConfig{Path: cfg.LogFile})
		logger.AddAppender(appender)
		defer goutils.UncheckedErrorFunc(closer.Close)
	}
	defer goutils.UncheckedErrorFunc(logger.Sync)

	p, err := pilot.New(cfg.PilotConfig(), logger)
	if err != nil {
		return err
	}
	logger.Infow("pilot ready",
		"run_id", p.RunID(),
		"config", cfg.ConfigFilePath,
		"input", cfg.Input.Path,
		"output", cfg.Output.Path,
	)
	return runPilot(ctx, p, logger)
}

func runPilot(ctx context.Context, p *pilot.Pilot, logger logging.Logger) error {
	err := p.Start(ctx)
	if health := p.Health(); health != nil {
		logger.Warnw("pilot finished with faults", "faults", health)
	}
	return err
}
