package task

// WaitCondition is a stateful predicate a task suspends on.
// The task stays suspended while Evaluate returns true.
type WaitCondition struct {
	// time accumulated since the condition became active
	elapsed float32

	eval func(elapsed float32) bool
}

// Evaluate reports whether the task should keep waiting.
func (c *WaitCondition) Evaluate() bool {
	return c.eval(c.elapsed)
}

// Elapsed returns the time the task has spent waiting on c.
func (c *WaitCondition) Elapsed() float32 {
	return c.elapsed
}

// WaitWhile suspends the task while predicate returns true.
func WaitWhile(predicate func() bool) *WaitCondition {
	return &WaitCondition{
		eval: func(float32) bool { return predicate() },
	}
}

// WaitWhileElapsed suspends the task while predicate returns true.
// The predicate receives the time spent waiting so far.
func WaitWhileElapsed(predicate func(elapsed float32) bool) *WaitCondition {
	return &WaitCondition{eval: predicate}
}

// WaitFor suspends the task for the given number of seconds.
func WaitFor(seconds float32) *WaitCondition {
	return WaitWhileElapsed(func(elapsed float32) bool { return elapsed < seconds })
}

// Animatable is anything that plays an animation the scheduler can wait on.
// Yielding an Animatable from a frame waits until it stops running.
type Animatable interface {
	IsRunning() bool
}

// WaitForAnimation suspends the task while a is running.
func WaitForAnimation(a Animatable) *WaitCondition {
	return &WaitCondition{
		eval: func(float32) bool { return a.IsRunning() },
	}
}

// InputSource reports whether any input changed during the current tick.
type InputSource interface {
	Changed() bool
}

// WaitForInput suspends the task until src reports an input change.
// Every call builds a fresh condition, so waits on the same source never
// share their elapsed time.
func WaitForInput(src InputSource) *WaitCondition {
	return &WaitCondition{
		eval: func(float32) bool { return !src.Changed() },
	}
}
