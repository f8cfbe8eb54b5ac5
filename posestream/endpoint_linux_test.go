package posestream

import (
	"context"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/hitchpilot/vehicle"
)

func mkfifo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vehicle.pipe")
	test.That(t, syscall.Mkfifo(path, 0o600), test.ShouldBeNil)
	return path
}

func TestEndpointFIFO(t *testing.T) {
	ctx := context.Background()
	path := mkfifo(t)
	e := Endpoint{Kind: KindFIFO, Path: path}

	type opened struct {
		w   *Writer[vehicle.Pose]
		err error
	}
	writerCh := make(chan opened, 1)
	go func() {
		wc, err := e.OpenWriter(ctx)
		if err != nil {
			writerCh <- opened{err: err}
			return
		}
		writerCh <- opened{w: NewPoseWriter(wc)}
	}()

	rc, err := e.OpenReader(ctx)
	test.That(t, err, test.ShouldBeNil)
	r := NewPoseReader(rc)
	defer r.Close()

	res := <-writerCh
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.w.Write(vehicle.Pose{X: 20, Y: 10}), test.ShouldBeNil)

	pose, err := r.Next(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose, test.ShouldResemble, vehicle.Pose{X: 20, Y: 10})

	// closing the writing side ends the stream.
	test.That(t, res.w.Close(), test.ShouldBeNil)
	_, err = r.Next(ctx)
	test.That(t, err.Error(), test.ShouldEqual, "EOF")
}

func TestEndpointFIFOOpenCancel(t *testing.T) {
	path := mkfifo(t)
	e := Endpoint{Path: path}

	for _, open := range []func(ctx context.Context) error{
		func(ctx context.Context) error {
			_, err := e.OpenReader(ctx)
			return err
		},
		func(ctx context.Context) error {
			_, err := e.OpenWriter(ctx)
			return err
		},
	} {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		err := open(ctx)
		cancel()
		test.That(t, err, test.ShouldEqual, context.DeadlineExceeded)
	}
}
