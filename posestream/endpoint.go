package posestream

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/hitchpilot/serial"
)

// Kind selects how an Endpoint is opened.
type Kind string

// The supported endpoint kinds.
const (
	KindFIFO   Kind = "fifo"
	KindSerial Kind = "serial"
)

// Source opens the inbound side of a stream.
type Source interface {
	OpenReader(ctx context.Context) (io.ReadCloser, error)
}

// Sink opens the outbound side of a stream.
type Sink interface {
	OpenWriter(ctx context.Context) (io.WriteCloser, error)
}

// Endpoint is a named pipe, regular file, or serial device.
type Endpoint struct {
	Kind Kind   `json:"kind,omitempty"`
	Path string `json:"path"`
	Baud int    `json:"baud,omitempty"`
}

// Validate ensures the endpoint can be opened. An empty kind means fifo.
func (e Endpoint) Validate(path string) error {
	if e.Path == "" {
		return errors.Errorf("%s: path is required", path)
	}
	switch e.Kind {
	case "", KindFIFO:
		if e.Baud != 0 {
			return errors.Errorf("%s: baud only applies to serial endpoints", path)
		}
	case KindSerial:
		if _, err := e.serialOptions().Normalize(); err != nil {
			return errors.Wrap(err, path)
		}
	default:
		return errors.Errorf("%s: unsupported endpoint kind %q", path, e.Kind)
	}
	return nil
}

func (e Endpoint) serialOptions() serial.Options {
	return serial.Options{BaudRate: e.Baud}
}

// OpenReader opens the endpoint for reading. Opening a named pipe waits for a writer, until ctx
// is done.
func (e Endpoint) OpenReader(ctx context.Context) (io.ReadCloser, error) {
	if e.Kind == KindSerial {
		return serial.Open(e.Path, e.serialOptions())
	}
	return openFile(ctx, e.Path, os.O_RDONLY)
}

// OpenWriter opens the endpoint for writing. Opening a named pipe waits for a reader, until ctx
// is done.
func (e Endpoint) OpenWriter(ctx context.Context) (io.WriteCloser, error) {
	if e.Kind == KindSerial {
		return serial.Open(e.Path, e.serialOptions())
	}
	return openFile(ctx, e.Path, os.O_WRONLY)
}

type openResult struct {
	f   *os.File
	err error
}

// openFile opens path in a goroutine so that a named pipe waiting for its peer can be abandoned
// when ctx is done.
func openFile(ctx context.Context, path string, flag int) (*os.File, error) {
	opened := make(chan openResult, 1)
	goutils.PanicCapturingGo(func() {
		f, err := os.OpenFile(path, flag, 0)
		opened <- openResult{f, err}
	})

	select {
	case res := <-opened:
		if res.err != nil {
			return nil, errors.Wrapf(res.err, "cannot open %q", path)
		}
		return res.f, nil
	case <-ctx.Done():
	}

	// Opening a pipe read-write never blocks on Linux and counts as both peers, so it releases
	// the pending open whether or not it has started yet.
	peer, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ctx.Err()
	}
	defer goutils.UncheckedErrorFunc(peer.Close)
	if res := <-opened; res.f != nil {
		goutils.UncheckedError(res.f.Close())
	}
	return nil, ctx.Err()
}
