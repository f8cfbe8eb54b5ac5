package posestream

import (
	"bufio"
	"io"
	"sync"

	"go.viam.com/hitchpilot/vehicle"
)

// Writer writes records to a stream, flushing after each one.
type Writer[T any] struct {
	mu     sync.Mutex
	w      *bufio.Writer
	c      io.Closer
	format func(T) string
}

// NewCommandWriter returns a Writer of command records to wc.
func NewCommandWriter(wc io.WriteCloser) *Writer[Command] {
	return &Writer[Command]{w: bufio.NewWriter(wc), c: wc, format: FormatCommand}
}

// NewPoseWriter returns a Writer of pose records to wc.
func NewPoseWriter(wc io.WriteCloser) *Writer[vehicle.Pose] {
	return &Writer[vehicle.Pose]{w: bufio.NewWriter(wc), c: wc, format: FormatPose}
}

// Write writes one record and flushes it.
func (w *Writer[T]) Write(record T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.WriteString(w.format(record)); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close closes the underlying stream.
func (w *Writer[T]) Close() error {
	return w.c.Close()
}
