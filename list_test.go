package task

import (
	"bytes"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/task/internal/logging"
)

func forever(yield func(any) bool) {
	for yield(nil) {
	}
}

func tags(l *List) []any {
	out := []any{}
	for t := range l.All() {
		out = append(out, t.Tag())
	}
	return out
}

func TestListStop(t *testing.T) {
	t.Run("stops everything", func(t *testing.T) {
		l := NewList()
		added := []*Task{}
		for range 5 {
			added = append(added, l.AddSeq(forever))
		}
		require.NoError(t, l.Update(0))

		l.Stop()

		assert.Equal(t, 0, l.Len())
		for _, tk := range added {
			assert.True(t, tk.Completed())
		}
	})

	t.Run("by predicate keeps the order of the others", func(t *testing.T) {
		l := NewList()
		for i := range 6 {
			l.AddSeq(forever, WithTag(i))
		}

		l.StopFunc(func(t *Task) bool { return t.Tag().(int)%2 == 0 })

		assert.Equal(t, []any{1, 3, 5}, tags(l))
	})

	t.Run("by tag", func(t *testing.T) {
		l := NewList()
		a1 := l.AddSeq(forever, WithTag("a"))
		b := l.AddSeq(forever, WithTag("b"))
		untagged := l.AddSeq(forever)
		a2 := l.AddSeq(forever, WithTag("a"))

		l.StopByTag("a")
		assert.Equal(t, []any{"b", nil}, tags(l))
		assert.True(t, a1.Completed())
		assert.True(t, a2.Completed())
		assert.False(t, b.Completed())

		l.StopByTag(nil)
		assert.Equal(t, []any{"b"}, tags(l))
		assert.True(t, untagged.Completed())
	})

	t.Run("ends the frame goroutines", func(t *testing.T) {
		baseline := runtime.NumGoroutine()

		lists := []*List{}
		for range 20 {
			l := NewList()
			l.AddSeq(forever)
			l.Add(Sequence(Seq(forever)))
			require.NoError(t, l.Update(0))
			lists = append(lists, l)
		}
		assert.Greater(t, runtime.NumGoroutine(), baseline)

		for _, l := range lists {
			l.Stop()
		}

		assert.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= baseline
		}, time.Second, time.Millisecond)
	})

	t.Run("from inside a task", func(t *testing.T) {
		l := NewList()
		victim := l.AddSeq(forever, WithTag("victim"))
		l.AddSeq(func(yield func(any) bool) {
			CurrentList().StopByTag("victim")
			yield(nil)
		})

		require.NoError(t, l.Update(0))
		assert.True(t, victim.Completed())
		assert.Equal(t, 1, l.Len())
	})
}

func TestListAdd(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		l := NewList()
		first := l.AddSeq(forever)
		second := l.Add(Loop(func() {}))
		third := l.AddFunc(func() Frame { return Seq(forever) })

		assert.Equal(t, []*Task{first, second, third}, slices.Collect(l.All()))
		assert.Nil(t, first.Tag())
	})

	t.Run("runs in insertion order", func(t *testing.T) {
		l := NewList()
		log := []string{}
		for _, name := range []string{"a", "b", "c"} {
			l.AddLoop(func() { log = append(log, name) })
		}

		require.NoError(t, l.Update(0))
		require.NoError(t, l.Update(0))

		assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, log)
	})

	t.Run("task added during update runs in the same update", func(t *testing.T) {
		l := NewList()
		ran := false

		l.AddSeq(func(yield func(any) bool) {
			CurrentList().AddSeq(func(yield func(any) bool) {
				ran = true
				yield(nil)
			})
			yield(nil)
		})

		require.NoError(t, l.Update(0))
		assert.True(t, ran)
		assert.Equal(t, 2, l.Len())
	})

	t.Run("loop runs every tick", func(t *testing.T) {
		l := NewList()
		count := 0
		tk := l.AddLoop(func() { count++ }, WithTag("loop"))

		for range 3 {
			require.NoError(t, l.Update(0.1))
		}

		assert.Equal(t, 3, count)
		assert.Equal(t, "loop", tk.Tag())
		assert.False(t, tk.Completed())
	})

	t.Run("replace keeps one task per tag", func(t *testing.T) {
		l := NewList()
		first := l.Replace(Seq(forever), "music")
		second := l.Replace(Seq(forever), "music")

		assert.True(t, first.Completed())
		assert.False(t, second.Completed())
		assert.Equal(t, []*Task{second}, slices.Collect(l.All()))
	})
}

func TestListUpdate(t *testing.T) {
	t.Run("removes completed tasks", func(t *testing.T) {
		l := NewList()
		l.AddSeq(yieldOnce)
		l.AddSeq(forever)

		require.NoError(t, l.Update(0))
		assert.Equal(t, 2, l.Len())

		require.NoError(t, l.Update(0))
		assert.Equal(t, 1, l.Len())
	})

	t.Run("removes tasks disposed from outside", func(t *testing.T) {
		l := NewList()
		tk := l.AddSeq(forever)
		tk.Dispose()

		require.NoError(t, l.Update(0))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("nested update is a no-op", func(t *testing.T) {
		l := NewList()
		resumed := 0

		l.AddSeq(func(yield func(any) bool) {
			for {
				resumed++
				if err := l.Update(0); err != nil {
					t.Error(err)
				}
				if !yield(nil) {
					return
				}
			}
		})

		require.NoError(t, l.Update(0))
		require.NoError(t, l.Update(0))

		assert.Equal(t, 2, resumed)
	})

	t.Run("tracks time", func(t *testing.T) {
		l := NewList()

		require.NoError(t, l.Update(0.5))
		require.NoError(t, l.Update(0.25))

		assert.InDelta(t, 0.75, l.Time(), 1e-6)
		assert.InDelta(t, 0.25, l.Delta(), 1e-6)
	})

	t.Run("current list", func(t *testing.T) {
		l := NewList()
		var seen *List
		l.AddLoop(func() { seen = CurrentList() })

		require.NoError(t, l.Update(0))

		assert.Same(t, l, seen)
		assert.Nil(t, CurrentList())
	})

	t.Run("nested lists restore the current list", func(t *testing.T) {
		outer, inner := NewList(), NewList()
		var during, after *List

		inner.AddLoop(func() { during = CurrentList() })
		outer.AddSeq(func(yield func(any) bool) {
			for {
				if err := inner.Update(0); err != nil {
					t.Error(err)
				}
				after = CurrentList()
				if !yield(nil) {
					return
				}
			}
		})

		require.NoError(t, outer.Update(0))
		assert.Same(t, inner, during)
		assert.Same(t, outer, after)
	})

	t.Run("invalid yield aborts the pass", func(t *testing.T) {
		l := NewList()
		count := 0

		broken := l.AddSeq(func(yield func(any) bool) {
			if !yield("oops") {
				return
			}
			forever(yield)
		})
		l.AddLoop(func() { count++ })

		err := l.Update(0)
		assert.ErrorIs(t, err, ErrInvalidYield)
		assert.Equal(t, 0, count)
		assert.Equal(t, 2, l.Len())
		assert.Nil(t, CurrentList())

		// the pass is not replayed, the next one carries on
		require.NoError(t, l.Update(0))
		assert.Equal(t, 1, count)
		assert.False(t, broken.Completed())
	})

	t.Run("zero value", func(t *testing.T) {
		var l List
		count := 0
		l.AddLoop(func() { count++ })

		require.NoError(t, l.Update(0))
		assert.Equal(t, 1, count)
		assert.IsType(t, NopProfiler{}, l.Profiler())
	})
}

func TestListOptions(t *testing.T) {
	t.Run("profiler is given to tasks", func(t *testing.T) {
		p := &recordingProfiler{}
		l := NewList(ListWithProfiler(p))
		l.AddSeq(yieldOnce)

		require.NoError(t, l.Update(0))

		assert.Equal(t, []string{"register", "before", "after"}, p.calls)
	})

	t.Run("config", func(t *testing.T) {
		l := NewList(ListWithConfig(Config{YieldOnFrameExit: true, Profile: true}))
		tk := l.Add(yielding(Seq(yieldOnce)))

		assert.IsType(t, &StatsProfiler{}, l.Profiler())
		assert.True(t, tk.yieldOnFrameExit)

		require.NoError(t, l.Update(0))
		require.NoError(t, l.Update(0))
		assert.Equal(t, 1, l.Len())
		require.NoError(t, l.Update(0))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("task options override the list", func(t *testing.T) {
		l := NewList(ListWithConfig(Config{YieldOnFrameExit: true}))
		tk := l.AddSeq(yieldOnce, WithYieldOnFrameExit(false))

		assert.False(t, tk.yieldOnFrameExit)
	})

	t.Run("logger", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewList(ListWithLogger(logging.New("debug", "text", &buf)))

		l.AddSeq(yieldOnce, WithTag("intro"))
		l.AddSeq(forever)
		require.NoError(t, l.Update(0))
		require.NoError(t, l.Update(0))
		l.Stop()

		out := buf.String()
		assert.Contains(t, out, "task added")
		assert.Contains(t, out, "task.tag=intro")
		assert.Contains(t, out, "task completed")
		assert.Contains(t, out, "tasks stopped")
	})
}
