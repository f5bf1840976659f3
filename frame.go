package task

import (
	"iter"
	"reflect"
	"runtime"
	"strings"
)

// Frame is one level of a task's call stack: a cursor positioned inside a
// body of cooperative code.
type Frame interface {
	// Resume runs the frame up to its next suspension point and returns the
	// yielded step. ok is false once the frame is exhausted.
	Resume(t *Task) (step any, ok bool)

	// Release abandons the frame, running its cleanup and releasing any frames it owns.
	Release()
}

type seqFrame struct {
	name string

	next func() (any, bool)
	stop func()

	// bindings of whoever resumes the frame, mirrored onto the body's goroutine
	task *Task
	list *List
}

// Seq turns an iterator body into a Frame. The body runs up to each yield
// when the task resumes it, and must return once yield reports false.
// Deferred calls in the body run when the frame is released.
//
// The suspended body lives on its own goroutine, which exits only when the
// body returns or the frame is released. Dropping an unfinished frame
// without releasing it (through Task.Dispose or List.Stop) leaks that
// goroutine.
//
//	task.Seq(func(yield func(any) bool) {
//		for !done() {
//			if !yield(nil) {
//				return
//			}
//		}
//	})
func Seq(seq iter.Seq[any]) Frame {
	return NamedSeq(funcName(seq), seq)
}

// NamedSeq is like Seq but sets the frame's label explicitly.
func NamedSeq(name string, seq iter.Seq[any]) Frame {
	f := &seqFrame{name: name}
	f.next, f.stop = iter.Pull(f.bind(seq))

	return f
}

// bind makes Current and CurrentList work inside the body, which iter.Pull
// runs on a goroutine of its own.
func (f *seqFrame) bind(seq iter.Seq[any]) iter.Seq[any] {
	return func(yield func(any) bool) {
		prevTask, prevList := currentTask.Set(f.task), currentList.Set(f.list)
		defer func() {
			currentTask.Set(prevTask)
			currentList.Set(prevList)
		}()

		seq(func(v any) bool {
			if !yield(v) {
				return false
			}

			currentTask.Set(f.task)
			currentList.Set(f.list)
			return true
		})
	}
}

func (f *seqFrame) Resume(t *Task) (any, bool) {
	f.task = t
	f.list = CurrentList()

	return f.next()
}

func (f *seqFrame) Release() { f.stop() }

func (f *seqFrame) String() string { return f.name }

type funcFrame struct {
	name string
	fn   func(t *Task) (any, bool)
}

// Func turns a step function into a Frame. fn is called on every resume and
// returns the next step, or ok=false once the frame is done.
func Func(fn func(t *Task) (step any, ok bool)) Frame {
	return &funcFrame{name: funcName(fn), fn: fn}
}

func (f *funcFrame) Resume(t *Task) (any, bool) {
	if f.fn == nil {
		return nil, false
	}

	step, ok := f.fn(t)
	if !ok {
		f.fn = nil
	}
	return step, ok
}

func (f *funcFrame) Release() { f.fn = nil }

func (f *funcFrame) String() string { return f.name }

type sequenceFrame struct {
	frames []Frame
	next   int
}

// Sequence runs frames one after another as nested frames of a single task.
func Sequence(frames ...Frame) Frame {
	return &sequenceFrame{frames: frames}
}

func (s *sequenceFrame) Resume(*Task) (any, bool) {
	if s.next >= len(s.frames) {
		return nil, false
	}

	f := s.frames[s.next]
	s.next++
	return f, true
}

// Release releases the frames not handed to the task yet, the task owns the others.
func (s *sequenceFrame) Release() {
	for _, f := range s.frames[s.next:] {
		f.Release()
	}
	s.next = len(s.frames)
}

func (s *sequenceFrame) String() string { return "task.Sequence" }

// Repeat yields every tick for as long as f returns true.
func Repeat(f func() bool) Frame {
	return &funcFrame{
		name: "task.Repeat",
		fn: func(*Task) (any, bool) {
			return nil, f()
		},
	}
}

// Loop calls action once per tick, forever.
func Loop(action func()) Frame {
	return &funcFrame{
		name: "task.Loop",
		fn: func(*Task) (any, bool) {
			action()
			return nil, true
		},
	}
}

// Delay waits for the given number of seconds, then calls action.
func Delay(seconds float32, action func()) Frame {
	waited := false

	return &funcFrame{
		name: "task.Delay",
		fn: func(*Task) (any, bool) {
			if !waited {
				waited = true
				return seconds, true
			}

			action()
			return nil, false
		},
	}
}

// DelayWhile waits while predicate returns true, then calls action.
func DelayWhile(predicate func() bool, action func()) Frame {
	return &funcFrame{
		name: "task.DelayWhile",
		fn: func(*Task) (any, bool) {
			if predicate() {
				return nil, true
			}

			action()
			return nil, false
		},
	}
}

func funcName(fn any) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
