package task

import "errors"

var (
	// ErrInvalidYield is returned by Advance when a frame yields a value outside
	// the set the scheduler understands.
	ErrInvalidYield = errors.New("task: invalid yield")

	// ErrWatcher wraps an error returned by a task's watcher.
	ErrWatcher = errors.New("task: watcher failed")
)
