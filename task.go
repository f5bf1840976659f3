package task

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/AnatoleLucet/task/internal/scope"
	"github.com/google/uuid"
)

// completedLabel is what Label reports once a task has finished.
const completedLabel = "Completed"

var currentTask scope.Local[*Task]

// Task is a cooperative computation made of nested frames.
// It is advanced by its owner (usually a List) once per tick and is not safe
// for concurrent use. Dispose an unfinished task before dropping it, or the
// goroutines of its Seq frames leak.
type Task struct {
	id  uuid.UUID
	tag any

	// innermost frame last, empty once the task is completed
	stack []Frame

	// frames dropped by a Dispose that happened during a step,
	// released when the outermost step returns
	detached []Frame

	watcher func() error

	// remaining delay in seconds, only checked while > 0
	delay float32
	cond  *WaitCondition

	delta   float32
	running float32

	// nesting of in-progress steps (nested frames recurse)
	depth int

	initialLabel     string
	profiler         Profiler
	yieldOnFrameExit bool
}

// Option configures a Task.
type Option func(*Task)

// WithTag sets the tag used by List.StopByTag.
func WithTag(tag any) Option {
	return func(t *Task) { t.tag = tag }
}

// WithProfiler sets the profiler notified around every Advance.
func WithProfiler(p Profiler) Option {
	return func(t *Task) { t.profiler = p }
}

// WithYieldOnFrameExit makes the task give up the rest of the tick when a
// nested frame finishes, instead of resuming its caller right away.
func WithYieldOnFrameExit(enabled bool) Option {
	return func(t *Task) { t.yieldOnFrameExit = enabled }
}

// New creates a task whose outermost frame is f.
func New(f Frame, opts ...Option) *Task {
	t := &Task{
		id:    uuid.New(),
		stack: []Frame{f},
	}

	for _, opt := range opts {
		opt(t)
	}
	if t.profiler == nil {
		t.profiler = NopProfiler{}
	}

	t.initialLabel = frameLabel(f)
	t.profiler.Register(t)

	return t
}

// Current returns the task being advanced on the calling goroutine, if any.
func Current() *Task {
	return currentTask.Get()
}

// StopIf installs a watcher on the current task that disposes it as soon as
// predicate returns true. It does nothing outside of a task.
func StopIf(predicate func() bool) {
	if t := Current(); t != nil {
		t.StopIf(predicate)
	}
}

func (t *Task) ID() uuid.UUID { return t.id }

func (t *Task) Tag() any { return t.tag }

func (t *Task) SetTag(tag any) { t.tag = tag }

// Completed reports whether the task finished or was disposed.
func (t *Task) Completed() bool { return len(t.stack) == 0 }

// Delta is the time passed to the step currently running.
// Nested frames resumed in the same tick see 0.
func (t *Task) Delta() float32 { return t.delta }

// RunningTime is the sum of every delta the task was advanced by.
func (t *Task) RunningTime() float32 { return t.running }

// InitialLabel is the label of the frame the task was created with.
func (t *Task) InitialLabel() string { return t.initialLabel }

// Label describes the innermost frame, or reports "Completed".
func (t *Task) Label() string {
	if t.Completed() {
		return completedLabel
	}

	return frameLabel(t.stack[len(t.stack)-1])
}

// SetWatcher sets a function called at the start of every step.
// A non-nil error aborts the step and is returned from Advance.
func (t *Task) SetWatcher(fn func() error) { t.watcher = fn }

// StopIf disposes the task as soon as predicate returns true.
// It replaces any watcher already set.
func (t *Task) StopIf(predicate func() bool) {
	t.watcher = func() error {
		if predicate() {
			t.Dispose()
		}
		return nil
	}
}

// Advance runs the task for one tick of delta seconds.
// It does nothing if the task is completed.
func (t *Task) Advance(delta float32) error {
	if t.Completed() {
		return nil
	}

	t.profiler.BeforeAdvance(t)
	defer t.profiler.AfterAdvance(t)

	return t.step(delta)
}

func (t *Task) step(delta float32) error {
	prev := currentTask.Set(t)
	t.depth++
	defer func() {
		t.depth--
		if t.depth == 0 {
			t.releaseDetached()
		}
		currentTask.Set(prev)
	}()

	t.delta = delta
	t.running += delta

	if t.watcher != nil {
		if err := t.watcher(); err != nil {
			return fmt.Errorf("%w: %w", ErrWatcher, err)
		}
		if t.Completed() {
			return nil
		}
	}

	if t.delay > 0 {
		t.delay -= delta
		return nil
	}

	if t.cond != nil {
		t.cond.elapsed += delta
		if t.cond.Evaluate() {
			return nil
		}
		t.cond = nil
	}

	step, ok := t.stack[len(t.stack)-1].Resume(t)

	// the frame disposed its own task
	if t.Completed() {
		if f, ok := step.(Frame); ok {
			f.Release()
		}
		return nil
	}

	if !ok {
		t.pop()
		if t.Completed() || t.yieldOnFrameExit {
			return nil
		}
		return t.step(0)
	}

	return t.handle(step)
}

func (t *Task) push(f Frame) {
	t.stack = append(t.stack, f)
}

func (t *Task) pop() {
	n := len(t.stack) - 1
	f := t.stack[n]
	t.stack[n] = nil
	t.stack = t.stack[:n]

	f.Release()
}

// Dispose releases every frame from the innermost out and marks the task
// completed. Calling it again does nothing.
func (t *Task) Dispose() {
	frames := t.stack
	t.stack = nil
	t.watcher = nil
	t.cond = nil
	t.delay = 0

	slices.Reverse(frames)

	// a frame can't be released while it is being resumed
	if t.depth > 0 {
		t.detached = append(t.detached, frames...)
		return
	}

	for _, f := range frames {
		f.Release()
	}
}

func (t *Task) releaseDetached() {
	for len(t.detached) > 0 {
		f := t.detached[0]
		t.detached = t.detached[1:]
		f.Release()
	}
	t.detached = nil
}

func (t *Task) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", t.id.String()),
		slog.String("label", t.Label()),
	}
	if t.tag != nil {
		attrs = append(attrs, slog.Any("tag", t.tag))
	}

	return slog.GroupValue(attrs...)
}

func frameLabel(f Frame) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%T", f)
}
