// Package utils contains small concurrency helpers shared by the pilot's tools.
package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a fixed set of goroutines sharing one cancellable context.
type StoppableWorkers struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStoppableWorkers runs each function in its own goroutine. The context they receive is done
// once parent is done or Stop is called.
func NewStoppableWorkers(parent context.Context, funcs ...func(context.Context)) *StoppableWorkers {
	ctx, cancel := context.WithCancel(parent)
	sw := &StoppableWorkers{cancel: cancel}
	sw.wg.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer sw.wg.Done()
			f(ctx)
		})
	}
	return sw
}

// Stop cancels the workers and waits for every one of them to return. It may be called more
// than once.
func (sw *StoppableWorkers) Stop() {
	sw.cancel()
	sw.wg.Wait()
}
