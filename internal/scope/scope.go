package scope

import "sync"

// Local holds one value per goroutine.
//
// Values are keyed by goroutine id, so a frame body running on a runtime
// coroutine (iter.Pull) has its own slot and must be bound explicitly by
// whoever resumes it.
type Local[T comparable] struct {
	values sync.Map // map[int64]T
}

// Get returns the value bound to the calling goroutine, or the zero value.
func (l *Local[T]) Get() T {
	if v, ok := l.values.Load(getGID()); ok {
		return v.(T)
	}

	var zero T
	return zero
}

// Set binds v to the calling goroutine and returns the previous value.
// Binding the zero value drops the slot so finished goroutines don't leak entries.
func (l *Local[T]) Set(v T) T {
	gid := getGID()

	var (
		zero   T
		old    any
		loaded bool
	)
	if v == zero {
		old, loaded = l.values.LoadAndDelete(gid)
	} else {
		old, loaded = l.values.Swap(gid, v)
	}

	if !loaded {
		return zero
	}
	return old.(T)
}

// Run calls fn with v bound to the calling goroutine and restores the
// previous binding afterwards, even if fn panics.
func (l *Local[T]) Run(v T, fn func()) {
	prev := l.Set(v)
	defer l.Set(prev)

	fn()
}
