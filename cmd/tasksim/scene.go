package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnatoleLucet/task"
)

// animation plays for a fixed length once started.
type animation struct {
	remaining float32
}

func (a *animation) Play(length float32) { a.remaining = length }

func (a *animation) Update(dt float32) {
	if a.remaining > 0 {
		a.remaining -= dt
	}
}

func (a *animation) IsRunning() bool { return a.remaining > 0 }

// keyboard reports a key press on one scripted frame.
type keyboard struct {
	frame   int
	pressAt int
}

func (k *keyboard) Changed() bool { return k.pressAt > 0 && k.frame == k.pressAt }

type sprite struct {
	alpha float32
	anim  animation
}

// scene is a small scripted level exercising every kind of suspension.
type scene struct {
	logger *slog.Logger
	tasks  *task.List

	logo  sprite
	keys  keyboard
	blink int
}

func newScene(tasks *task.List, logger *slog.Logger, pressAt int) *scene {
	s := &scene{
		logger: logger,
		tasks:  tasks,
		keys:   keyboard{pressAt: pressAt},
	}

	tasks.AddSeq(s.intro, task.WithTag("intro"))
	tasks.AddSeq(s.spawner, task.WithTag("spawner"))
	tasks.AddSeq(s.prompt, task.WithTag("prompt"))
	tasks.Add(task.Sequence(
		task.Delay(0.5, func() { s.logger.Info("loading assets") }),
		task.Seq(s.load),
	), task.WithTag("loader"))

	return s
}

// tick moves the outside world forward, then the tasks.
func (s *scene) tick(frame int, dt float32) error {
	s.keys.frame = frame
	s.logo.anim.Update(dt)

	return s.tasks.Update(dt)
}

func (s *scene) intro(yield func(any) bool) {
	for alpha := range task.SinMotion(1, 0, float32(1)) {
		s.logo.alpha = alpha
		if !yield(nil) {
			return
		}
	}
	s.logger.Info("logo visible", "alpha", s.logo.alpha)

	s.logo.anim.Play(0.5)
	if !yield(&s.logo.anim) {
		return
	}
	s.logger.Info("logo animation finished")
}

func (s *scene) spawner(yield func(any) bool) {
	for i := 0; i < 3; i++ {
		if !yield(2) {
			return
		}

		n := i
		task.CurrentList().AddSeq(func(yield func(any) bool) {
			s.blink++
			s.logger.Info("blink started", "n", n)
			defer s.logger.Info("blink stopped", "n", n)

			for {
				if !yield(task.WaitFor(0.25)) {
					return
				}
			}
		}, task.WithTag("blink"))
	}
}

func (s *scene) prompt(yield func(any) bool) {
	task.StopIf(func() bool { return s.tasks.Time() > 30 })

	if !yield(task.WaitForInput(&s.keys)) {
		return
	}
	s.logger.Info("key pressed", "frame", s.keys.frame)

	s.tasks.StopByTag("blink")
}

func (s *scene) load(yield func(any) bool) {
	job := task.ExecuteAsync(context.Background(), func(ctx context.Context) error {
		sum := 0
		for i := range 1_000_000 {
			if i%10_000 == 0 && ctx.Err() != nil {
				return ctx.Err()
			}
			sum += i % 7
		}
		if sum == 0 {
			return fmt.Errorf("empty bake")
		}
		return nil
	})

	if !yield(job) {
		return
	}
	if err := job.Err(); err != nil {
		s.logger.Error("assets failed", "err", err)
		return
	}
	s.logger.Info("assets loaded")
}
