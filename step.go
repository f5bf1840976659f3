package task

import (
	"fmt"
	"iter"
	"reflect"
	"time"
)

// handle applies what the top frame yielded. The accepted steps are:
//
//   - nil: resume on the next tick
//   - any integer or float kind, named types included: wait that many seconds
//   - time.Duration: wait that long
//   - Frame: push it and run it until it suspends
//   - *WaitCondition: wait while it evaluates to true
//   - Animatable: wait while it is running
//
// Typed nil pointers count as nil for conditions and animations. A nil
// Frame is an error.
func (t *Task) handle(step any) error {
	switch v := step.(type) {
	case nil:
		t.delay = 0
	case time.Duration:
		t.delay = float32(v.Seconds())
	case int:
		t.delay = float32(v)
	case int8:
		t.delay = float32(v)
	case int16:
		t.delay = float32(v)
	case int32:
		t.delay = float32(v)
	case int64:
		t.delay = float32(v)
	case uint:
		t.delay = float32(v)
	case uint8:
		t.delay = float32(v)
	case uint16:
		t.delay = float32(v)
	case uint32:
		t.delay = float32(v)
	case uint64:
		t.delay = float32(v)
	case float32:
		t.delay = v
	case float64:
		t.delay = float32(v)
	case Frame:
		if isNil(v) {
			return fmt.Errorf("%w: nil frame %T", ErrInvalidYield, v)
		}
		t.push(v)
		return t.step(0)
	case *WaitCondition:
		if v != nil {
			t.cond = v
		}
	case Animatable:
		if !isNil(v) {
			t.cond = WaitForAnimation(v)
		}
	case iter.Seq[any], func(func(any) bool):
		return fmt.Errorf("%w: got a sequence %T, wrap it with task.Seq", ErrInvalidYield, v)
	default:
		delay, ok := numericSeconds(v)
		if !ok {
			return fmt.Errorf("%w: %T", ErrInvalidYield, v)
		}
		t.delay = delay
	}

	return nil
}

// numericSeconds converts named numeric types and uintptr.
func numericSeconds(v any) (float32, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float32(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float32(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return float32(rv.Float()), true
	default:
		return 0, false
	}
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
