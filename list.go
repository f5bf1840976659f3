package task

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/AnatoleLucet/task/internal/scope"
)

var (
	currentList scope.Local[*List]

	discardLogger = slog.New(slog.DiscardHandler)
)

// List is an ordered set of tasks advanced together by Update, usually once
// per frame. Insertion order is the order tasks run in.
//
// The zero value is ready to use. A List is not safe for concurrent use.
// Call Stop before discarding a list that still holds tasks, or the
// goroutines of their Seq frames leak.
type List struct {
	tasks []*Task

	// set while Update runs, nested calls are ignored
	updating bool

	time  float32
	delta float32

	profiler         Profiler
	logger           *slog.Logger
	yieldOnFrameExit bool
}

// ListOption configures a List.
type ListOption func(*List)

// ListWithProfiler sets the profiler given to every task the list creates.
func ListWithProfiler(p Profiler) ListOption {
	return func(l *List) { l.profiler = p }
}

// ListWithLogger sets the logger used for task lifecycle events.
func ListWithLogger(logger *slog.Logger) ListOption {
	return func(l *List) { l.logger = logger }
}

// ListWithConfig applies cfg to the list and the tasks it creates.
func ListWithConfig(cfg Config) ListOption {
	return func(l *List) {
		l.yieldOnFrameExit = cfg.YieldOnFrameExit
		if cfg.Profile {
			l.profiler = NewStatsProfiler()
		}
	}
}

func NewList(opts ...ListOption) *List {
	l := &List{}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// CurrentList returns the list being updated on the calling goroutine, if any.
func CurrentList() *List {
	return currentList.Get()
}

// Profiler returns the list's profiler, NopProfiler if none was set.
func (l *List) Profiler() Profiler {
	if l.profiler == nil {
		return NopProfiler{}
	}
	return l.profiler
}

func (l *List) log() *slog.Logger {
	if l.logger == nil {
		return discardLogger
	}
	return l.logger
}

// Add creates a task running f and appends it to the list.
func (l *List) Add(f Frame, opts ...Option) *Task {
	base := []Option{
		WithProfiler(l.Profiler()),
		WithYieldOnFrameExit(l.yieldOnFrameExit),
	}

	t := New(f, append(base, opts...)...)
	l.tasks = append(l.tasks, t)

	l.log().Debug("task added", "task", t)
	return t
}

// AddSeq is Add(Seq(seq), opts...).
func (l *List) AddSeq(seq iter.Seq[any], opts ...Option) *Task {
	return l.Add(NamedSeq(funcName(seq), seq), opts...)
}

// AddFunc calls fn and adds the frame it returns.
func (l *List) AddFunc(fn func() Frame, opts ...Option) *Task {
	return l.Add(fn(), opts...)
}

// AddLoop adds a task calling action once per tick, forever.
func (l *List) AddLoop(action func(), opts ...Option) *Task {
	return l.Add(Loop(action), opts...)
}

// Replace stops every task tagged with tag and adds f under the same tag.
func (l *List) Replace(f Frame, tag any) *Task {
	l.StopByTag(tag)
	return l.Add(f, WithTag(tag))
}

// Stop disposes and removes every task.
func (l *List) Stop() {
	tasks := l.tasks
	l.tasks = nil

	for _, t := range tasks {
		t.Dispose()
	}

	if len(tasks) > 0 {
		l.log().Debug("tasks stopped", "count", len(tasks))
	}
}

// StopFunc disposes and removes the tasks matching pred. The others keep
// their relative order.
func (l *List) StopFunc(pred func(*Task) bool) {
	var stopped []*Task

	l.tasks = slices.DeleteFunc(l.tasks, func(t *Task) bool {
		if pred(t) {
			stopped = append(stopped, t)
			return true
		}
		return false
	})

	for _, t := range stopped {
		t.Dispose()
	}

	if len(stopped) > 0 {
		l.log().Debug("tasks stopped", "count", len(stopped))
	}
}

// StopByTag stops the tasks whose tag equals tag. nil is a tag too.
func (l *List) StopByTag(tag any) {
	l.StopFunc(func(t *Task) bool { return t.tag == tag })
}

// Len returns the number of tasks in the list.
func (l *List) Len() int { return len(l.tasks) }

// All returns an iterator over the tasks in scheduling order.
func (l *List) All() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		for _, t := range l.tasks {
			if !yield(t) {
				return
			}
		}
	}
}

// Time is the sum of every delta the list was updated with.
func (l *List) Time() float32 { return l.time }

// Delta is the delta of the latest Update.
func (l *List) Delta() float32 { return l.delta }

// Update advances every task by delta and removes the completed ones.
//
// Tasks added during the pass run in the same pass. Calling Update from
// inside one of its own tasks does nothing. The first error returned by a
// task aborts the pass: the tasks after it are not advanced this time.
func (l *List) Update(delta float32) error {
	if l.updating {
		return nil
	}

	l.updating = true
	defer func() { l.updating = false }()

	l.time += delta
	l.delta = delta

	var err error
	currentList.Run(l, func() { err = l.advance(delta) })
	return err
}

func (l *List) advance(delta float32) error {
	// the bound is re-read on purpose, tasks may be added while we iterate
	for i := 0; i < len(l.tasks); {
		t := l.tasks[i]
		if t.Completed() {
			l.remove(i)
			continue
		}

		if err := t.Advance(delta); err != nil {
			l.log().Debug("update aborted", "task", t, "err", err)
			return err
		}

		if t.Completed() && i < len(l.tasks) && l.tasks[i] == t {
			l.remove(i)
			l.log().Debug("task completed", "task", t)
			continue
		}
		i++
	}

	return nil
}

func (l *List) remove(i int) {
	l.tasks = slices.Delete(l.tasks, i, i+1)
}
