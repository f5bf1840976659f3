package task

import (
	"context"
	"fmt"
)

// Async is a frame that runs a function on its own goroutine and completes
// once the function returns. The task polls it every tick and never blocks.
type Async struct {
	ctx    context.Context
	cancel context.CancelFunc
	fn     func(ctx context.Context) error

	started bool
	done    chan struct{}
	err     error
}

// ExecuteAsync returns a frame running fn in the background. fn starts the
// first time the frame is resumed; its context is canceled when the frame
// is released.
func ExecuteAsync(ctx context.Context, fn func(ctx context.Context) error) *Async {
	ctx, cancel := context.WithCancel(ctx)

	return &Async{
		ctx:    ctx,
		cancel: cancel,
		fn:     fn,
		done:   make(chan struct{}),
	}
}

func (a *Async) start() {
	a.started = true

	go func() {
		defer close(a.done)
		defer func() {
			if r := recover(); r != nil {
				a.err = fmt.Errorf("task: async function panicked: %v", r)
			}
		}()

		a.err = a.fn(a.ctx)
	}()
}

func (a *Async) Resume(*Task) (any, bool) {
	if !a.started {
		a.start()
	}

	select {
	case <-a.done:
		return nil, false
	default:
		return nil, true
	}
}

func (a *Async) Release() { a.cancel() }

// Done reports whether the function returned.
func (a *Async) Done() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Err returns the function's error once Done reports true.
func (a *Async) Err() error {
	if !a.Done() {
		return nil
	}
	return a.err
}

func (a *Async) String() string { return "task.Async" }
