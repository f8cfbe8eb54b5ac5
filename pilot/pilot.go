// Package pilot runs the control loop: it ingests vehicle poses, binds a trajectory controller
// to the first one, and emits velocity and steering commands at a fixed rate.
package pilot

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"go.viam.com/hitchpilot/control"
	"go.viam.com/hitchpilot/logging"
	"go.viam.com/hitchpilot/motionplan"
	"go.viam.com/hitchpilot/posestream"
	"go.viam.com/hitchpilot/vehicle"
)

// ErrStalePose is reported by Health while the latest pose is older than the pose timeout.
var ErrStalePose = errors.New("pose is stale")

var (
	errAlreadyStarted = errors.New("pilot already started")
	errStopped        = errors.New("pilot is stopped")
	errInputEnded     = errors.New("pose input ended")
)

// State is the lifecycle state of a Pilot.
type State int

// Pilot lifecycle: Idle until a controller is bound to the first pose, then Active, and Stopped
// once the loop has been stopped or both activities have ended.
const (
	Idle State = iota
	Active
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config configures a Pilot.
type Config struct {
	Input       posestream.Source
	Output      posestream.Sink
	Vehicle     vehicle.Spec
	Controller  control.Config
	FrequencyHz float64
	// PoseTimeout is the age after which a pose is stale. Zero disables the check.
	PoseTimeout time.Duration
	// PathSamples is the number of samples in planned paths. Zero selects the planner default.
	PathSamples int
}

// Validate ensures the pilot can run with cfg.
func (cfg Config) Validate() error {
	if cfg.Input == nil {
		return errors.New("pose input is required")
	}
	if cfg.Output == nil {
		return errors.New("command output is required")
	}
	if err := cfg.Vehicle.Validate(); err != nil {
		return errors.Wrap(err, "vehicle")
	}
	if err := cfg.Controller.Validate("controller"); err != nil {
		return err
	}
	if !(cfg.FrequencyHz > 0 && cfg.FrequencyHz <= 200) {
		return errors.Errorf("loop frequency must be in (0, 200] Hz, got %v", cfg.FrequencyHz)
	}
	if cfg.PoseTimeout < 0 {
		return errors.Errorf("pose timeout cannot be negative, got %v", cfg.PoseTimeout)
	}
	if cfg.PathSamples != 0 && cfg.PathSamples < 2 {
		return errors.Errorf("path samples must be at least 2, got %d", cfg.PathSamples)
	}
	return nil
}

// Option customizes a Pilot.
type Option func(*Pilot)

// WithClock sets the clock driving emission ticks and pose ageing.
func WithClock(clk clock.Clock) Option {
	return func(p *Pilot) {
		p.clock = clk
	}
}

// poseSlot holds the latest pose shared between ingestion and emission.
type poseSlot interface {
	isPoseSlot()
}

type unsetPose struct{}

type latestPose struct {
	pose       vehicle.Pose
	receivedAt time.Time
}

func (unsetPose) isPoseSlot()  {}
func (latestPose) isPoseSlot() {}

// malformedLogInterval limits how often dropped records are logged.
const malformedLogInterval = 5 * time.Second

type fault int

const (
	faultInput fault = iota
	faultOutput
	faultPlanning
	faultStale
)

var faultOrder = []fault{faultInput, faultOutput, faultPlanning, faultStale}

// Pilot ties a pose source and a command sink to a trajectory controller.
type Pilot struct {
	cfg     Config
	logger  logging.Logger
	clock   clock.Clock
	planner *motionplan.Planner
	period  time.Duration
	runID   string

	mu         sync.Mutex
	slot       poseSlot
	controller control.TrajectoryController
	state      State
	faults     map[fault]error
	started    bool
	cancel     context.CancelFunc
	done       chan struct{}

	malformedLog rate.Sometimes
}

// New returns an Idle pilot for cfg.
func New(cfg Config, logger logging.Logger, opts ...Option) (*Pilot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	p := &Pilot{
		cfg:     cfg,
		logger:  logger.Sublogger("pilot").WithFields("run_id", runID),
		clock:   clock.New(),
		planner: motionplan.NewPlanner(cfg.PathSamples),
		period:  time.Duration(float64(time.Second) / cfg.FrequencyHz),
		runID:   runID,
		slot:    unsetPose{},
		state:   Idle,
		faults:  map[fault]error{},

		malformedLog: rate.Sometimes{Interval: malformedLogInterval},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// RunID identifies this pilot in logs.
func (p *Pilot) RunID() string {
	return p.runID
}

// State returns the current lifecycle state.
func (p *Pilot) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Health returns the current faults combined, or nil when there are none.
func (p *Pilot) Health() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, f := range faultOrder {
		if err, ok := p.faults[f]; ok {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

// Start runs ingestion and emission until Stop is called, ctx is done, or both activities have
// ended. One activity ending does not stop the other. Start may only be called once.
func (p *Pilot) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return errAlreadyStarted
	}
	if p.state == Stopped {
		p.mu.Unlock()
		return errStopped
	}
	p.started = true
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	defer close(p.done)
	defer cancel()

	p.logger.Infow("starting pilot",
		"controller", p.cfg.Controller.Type,
		"frequency_hz", p.cfg.FrequencyHz,
		"pose_timeout", p.cfg.PoseTimeout,
	)

	var activities errgroup.Group
	activities.Go(func() error {
		return p.ingest(ctx)
	})
	activities.Go(func() error {
		return p.emit(ctx)
	})
	err := activities.Wait()

	p.mu.Lock()
	p.state = Stopped
	p.mu.Unlock()
	p.logger.Info("pilot stopped")
	return err
}

// Stop cancels both activities and waits for Start to return. It is safe to call more than once,
// and before Start.
func (p *Pilot) Stop() {
	p.mu.Lock()
	p.state = Stopped
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Pilot) setFault(f fault, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults[f] = err
}

func (p *Pilot) clearFault(f fault) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.faults, f)
}

func (p *Pilot) ingest(ctx context.Context) error {
	rc, err := p.cfg.Input.OpenReader(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		err = errors.Wrap(err, "cannot open pose input")
		p.logger.Errorw("ingestion stopped", "error", err)
		p.setFault(faultInput, err)
		return err
	}
	reader := posestream.NewPoseReader(rc)
	defer goutils.UncheckedErrorFunc(reader.Close)

	dropped := 0
	for {
		pose, err := reader.Next(ctx)
		if err != nil {
			var parseErr *posestream.ParseError
			switch {
			case errors.As(err, &parseErr):
				dropped++
				p.malformedLog.Do(func() {
					p.logger.Warnw("dropping malformed pose record", "error", err, "dropped", dropped)
				})
				continue
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, io.EOF):
				p.logger.Warn("pose input ended")
				p.setFault(faultInput, errInputEnded)
				return nil
			default:
				err = errors.Wrap(err, "cannot read pose input")
				p.logger.Errorw("ingestion stopped", "error", err)
				p.setFault(faultInput, err)
				return err
			}
		}
		p.logger.CDebugw(ctx, "received pose", "pose", pose.String())
		p.handlePose(pose)
	}
}

// handlePose stores pose as the latest one. The first pose binds the controller; only ingestion
// binds it, so planning runs outside the lock.
func (p *Pilot) handlePose(pose vehicle.Pose) {
	now := p.clock.Now()
	p.mu.Lock()
	if p.controller != nil {
		p.slot = latestPose{pose: pose, receivedAt: now}
		delete(p.faults, faultStale)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	ctrl, err := control.NewTrajectoryController(p.cfg.Controller, p.cfg.Vehicle, pose, p.planner, p.logger)
	if err != nil {
		p.logger.Errorw("cannot bind trajectory controller, waiting for the next pose",
			"pose", pose.String(), "error", err)
		p.setFault(faultPlanning, err)
		return
	}

	p.mu.Lock()
	p.controller = ctrl
	p.slot = latestPose{pose: pose, receivedAt: now}
	delete(p.faults, faultPlanning)
	if p.state == Idle {
		p.state = Active
	}
	p.mu.Unlock()
	p.logger.Infow("trajectory controller bound", "type", p.cfg.Controller.Type, "pose", pose.String())
}

// snapshot copies the shared state for one tick.
func (p *Pilot) snapshot() (poseSlot, control.TrajectoryController) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slot, p.controller
}

func (p *Pilot) emit(ctx context.Context) error {
	wc, err := p.cfg.Output.OpenWriter(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		err = errors.Wrap(err, "cannot open command output")
		p.logger.Errorw("emission stopped", "error", err)
		p.setFault(faultOutput, err)
		return err
	}
	writer := posestream.NewCommandWriter(wc)
	defer goutils.UncheckedErrorFunc(writer.Close)
	// a write blocked on a full pipe is released by closing it.
	stopClose := context.AfterFunc(ctx, func() {
		goutils.UncheckedError(wc.Close())
	})
	defer stopClose()

	ticker := p.clock.Ticker(p.period)
	defer ticker.Stop()

	stale := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		slot, ctrl := p.snapshot()
		latest, ok := slot.(latestPose)
		if !ok {
			continue
		}

		var cmd posestream.Command
		age := p.clock.Since(latest.receivedAt)
		if p.cfg.PoseTimeout > 0 && age > p.cfg.PoseTimeout {
			if !stale {
				p.logger.Warnw("pose is stale, holding vehicle", "age", age, "pose_timeout", p.cfg.PoseTimeout)
				stale = true
			}
			p.setFault(faultStale, errors.Wrapf(ErrStalePose, "last pose received %v ago", age))
			cmd = posestream.HoldCommand
		} else {
			if stale {
				p.logger.Info("pose is fresh again, resuming")
				p.clearFault(faultStale)
				stale = false
			}
			cmd = posestream.Command{
				Velocity: ctrl.CalculateVelocity(latest.pose),
				Steering: ctrl.CalculateSteering(latest.pose),
			}
		}

		if err := writer.Write(cmd); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			err = errors.Wrap(err, "cannot write command")
			p.logger.Errorw("emission stopped", "error", err)
			p.setFault(faultOutput, err)
			return err
		}
		p.logger.CDebugw(ctx, "sent command", "velocity", cmd.Velocity, "steering", cmd.Steering)
	}
}
