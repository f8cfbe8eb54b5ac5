package posestream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/hitchpilot/vehicle"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("stream closed")

// MaxRecordLength bounds a record, newline included. Longer lines are discarded up to the next
// newline and reported as a *ParseError.
const MaxRecordLength = 4096

// oversizedPrefix is how much of a discarded line a ParseError keeps.
const oversizedPrefix = 64

type scanned struct {
	line      string
	malformed error
	err       error
}

// Reader reads records from a stream. A background goroutine reads lines so that Next can
// select on cancellation while the stream is blocked.
type Reader[T any] struct {
	rc    io.ReadCloser
	parse func(string) (T, error)

	lines     chan scanned
	closed    chan struct{}
	scanDone  chan struct{}
	closeOnce sync.Once
	closeErr  error

	// err is the terminal scan error, only touched by Next.
	err error
}

// NewPoseReader returns a Reader of pose records from rc.
func NewPoseReader(rc io.ReadCloser) *Reader[vehicle.Pose] {
	return newReader(rc, ParsePose)
}

// NewCommandReader returns a Reader of command records from rc.
func NewCommandReader(rc io.ReadCloser) *Reader[Command] {
	return newReader(rc, ParseCommand)
}

func newReader[T any](rc io.ReadCloser, parse func(string) (T, error)) *Reader[T] {
	r := &Reader[T]{
		rc:       rc,
		parse:    parse,
		lines:    make(chan scanned),
		closed:   make(chan struct{}),
		scanDone: make(chan struct{}),
	}
	goutils.PanicCapturingGo(r.scan)
	return r
}

func (r *Reader[T]) scan() {
	defer close(r.scanDone)
	br := bufio.NewReaderSize(r.rc, MaxRecordLength)
	discarding := false
	for {
		chunk, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if !discarding {
				discarding = true
				malformed := &ParseError{
					Line:   string(chunk[:oversizedPrefix]),
					Reason: fmt.Sprintf("record longer than %d bytes", MaxRecordLength),
				}
				if !r.send(scanned{malformed: malformed}) {
					return
				}
			}
			continue
		}
		if discarding {
			// chunk is the tail of the oversized line.
			discarding = false
		} else if len(chunk) > 0 {
			if !r.send(scanned{line: strings.TrimRight(string(chunk), "\r\n")}) {
				return
			}
		}
		if err != nil {
			r.send(scanned{err: err})
			return
		}
	}
}

// send hands rec to Next and reports false once the reader is closed.
func (r *Reader[T]) send(rec scanned) bool {
	select {
	case r.lines <- rec:
		return true
	case <-r.closed:
		return false
	}
}

// Next returns the next record, skipping blank lines. A malformed or oversized record returns a
// *ParseError and reading may continue. It returns io.EOF once the stream ends, ctx.Err() if ctx is done
// first, and ErrClosed after Close. Next must not be called concurrently.
func (r *Reader[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if r.err != nil {
		return zero, r.err
	}
	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-r.closed:
			return zero, ErrClosed
		case rec := <-r.lines:
			if rec.err != nil {
				r.err = rec.err
				return zero, rec.err
			}
			if rec.malformed != nil {
				return zero, rec.malformed
			}
			if strings.TrimSpace(rec.line) == "" {
				continue
			}
			return r.parse(rec.line)
		}
	}
}

// Close closes the stream, which releases a scan blocked on it, and waits for the scanning
// goroutine to exit.
func (r *Reader[T]) Close() error {
	r.closeOnce.Do(func() {
		close(r.closed)
		r.closeErr = r.rc.Close()
		<-r.scanDone
	})
	return r.closeErr
}
