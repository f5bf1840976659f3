// Package task implements cooperative, tick driven tasks for game logic.
//
// A [Task] is a stack of frames. Each tick the task resumes its innermost
// frame until the frame yields a step telling the task what to wait for:
//
//   - nil resumes on the next tick
//   - a number of any integer or float kind waits that many seconds
//   - a [time.Duration] waits that long
//   - a [Frame] is pushed and runs right away, its caller resumes when it ends
//   - a [*WaitCondition] waits while the condition holds
//   - an [Animatable] waits while it is running
//
// Anything else makes Advance fail with [ErrInvalidYield].
//
// Frames are usually written as iterator bodies and wrapped with [Seq]:
//
//	tasks := task.NewList()
//	tasks.Add(task.Seq(func(yield func(any) bool) {
//		door.Open()
//		if !yield(door) { // wait for the opening animation
//			return
//		}
//		if !yield(2) { // two seconds
//			return
//		}
//		door.Close()
//	}))
//
//	for running {
//		if err := tasks.Update(dt); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// A [List] advances its tasks in insertion order once per Update. Everything
// runs on the goroutine calling Update: neither Task nor List is safe for
// concurrent use, but independent lists may run on separate goroutines since
// [Current] and [CurrentList] are goroutine local.
//
// A [Seq] frame keeps its body suspended on a goroutine of its own until the
// body returns or the frame is released. Stop a List, or Dispose a Task,
// before dropping it, or those goroutines leak.
package task
