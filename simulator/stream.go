package simulator

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/posestream"
	"go.viam.com/hitchpilot/utils"
	"go.viam.com/hitchpilot/vehicle"
)

// StreamConfig configures a Stream.
type StreamConfig struct {
	// Commands is where the controller writes velocity and steering commands.
	Commands posestream.Source
	// Poses is where the controller reads poses from.
	Poses     posestream.Sink
	Wheelbase float64
	Start     vehicle.Pose
	RateHz    float64
}

// Validate ensures the stream can run with cfg.
func (cfg StreamConfig) Validate() error {
	if cfg.Commands == nil {
		return errors.New("command input is required")
	}
	if cfg.Poses == nil {
		return errors.New("pose output is required")
	}
	if !(cfg.Wheelbase > 0) {
		return errors.Errorf("wheelbase must be a positive number, got %v", cfg.Wheelbase)
	}
	if !(cfg.RateHz > 0 && cfg.RateHz <= 1000) {
		return errors.Errorf("simulation rate must be in (0, 1000] Hz, got %v", cfg.RateHz)
	}
	return nil
}

// Stream drives a Bicycle from a command stream and publishes its pose on every step.
type Stream struct {
	cfg    StreamConfig
	logger logging.Logger
	clock  clock.Clock
	bike   *Bicycle
	period time.Duration

	mu      sync.Mutex
	workers *utils.StoppableWorkers
	err     error
}

// NewStream returns a stopped simulator at cfg.Start.
func NewStream(cfg StreamConfig, logger logging.Logger, clk clock.Clock) (*Stream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Stream{
		cfg:    cfg,
		logger: logger.Sublogger("simulator"),
		clock:  clk,
		bike:   NewBicycle(cfg.Wheelbase, cfg.Start),
		period: time.Duration(float64(time.Second) / cfg.RateHz),
	}, nil
}

// Start runs the simulation in the background until Stop is called or ctx is done.
func (s *Stream) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workers != nil {
		return
	}
	s.workers = utils.NewStoppableWorkers(ctx, s.receive, s.publish)
}

// Stop stops the simulation and waits for it to finish.
func (s *Stream) Stop() {
	s.mu.Lock()
	workers := s.workers
	s.mu.Unlock()
	if workers != nil {
		workers.Stop()
	}
}

// Bicycle returns the simulated vehicle.
func (s *Stream) Bicycle() *Bicycle {
	return s.bike
}

// Err returns the first error that ended either side of the simulation.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) fail(err error) {
	s.logger.Errorw("simulation stream stopped", "error", err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Stream) receive(ctx context.Context) {
	rc, err := s.cfg.Commands.OpenReader(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.fail(errors.Wrap(err, "cannot open command input"))
		}
		return
	}
	reader := posestream.NewCommandReader(rc)
	defer goutils.UncheckedErrorFunc(reader.Close)

	for {
		cmd, err := reader.Next(ctx)
		if err != nil {
			var parseErr *posestream.ParseError
			switch {
			case errors.As(err, &parseErr):
				s.logger.Warnw("dropping malformed command record", "error", err)
				continue
			case ctx.Err() != nil:
			case errors.Is(err, io.EOF):
				s.logger.Info("command input ended, stopping vehicle")
			default:
				s.fail(errors.Wrap(err, "cannot read command input"))
			}
			s.bike.Command(posestream.HoldCommand.Velocity, posestream.HoldCommand.Steering)
			return
		}
		s.logger.CDebugw(ctx, "received command", "velocity", cmd.Velocity, "steering", cmd.Steering)
		s.bike.Command(cmd.Velocity, cmd.Steering)
	}
}

func (s *Stream) publish(ctx context.Context) {
	wc, err := s.cfg.Poses.OpenWriter(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.fail(errors.Wrap(err, "cannot open pose output"))
		}
		return
	}
	writer := posestream.NewPoseWriter(wc)
	defer goutils.UncheckedErrorFunc(writer.Close)
	stopClose := context.AfterFunc(ctx, func() {
		goutils.UncheckedError(wc.Close())
	})
	defer stopClose()

	ticker := s.clock.Ticker(s.period)
	defer ticker.Stop()

	pose := s.bike.Pose()
	for {
		if err := writer.Write(pose); err != nil {
			if ctx.Err() == nil {
				s.fail(errors.Wrap(err, "cannot write pose"))
			}
			return
		}
		s.logger.CDebugw(ctx, "sent pose", "pose", pose.String())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.bike.Step(s.period)
		pose = s.bike.Pose()
	}
}
