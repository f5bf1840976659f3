package task

import (
	"iter"
	"math"

	"golang.org/x/exp/constraints"
)

// LinearMotion goes from `from` to `to` over period seconds, one value per
// tick, advancing by the current task's delta. The last value is always `to`.
// Range over it from a frame body:
//
//	for alpha := range task.LinearMotion(0.5, 0, float32(1)) {
//		sprite.Alpha = alpha
//		if !yield(nil) {
//			return
//		}
//	}
func LinearMotion[F constraints.Float](period float32, from, to F) iter.Seq[F] {
	return motion(period, from, to, func(x float32) float32 { return x })
}

// SinMotion is LinearMotion eased by a quarter sine wave.
func SinMotion[F constraints.Float](period float32, from, to F) iter.Seq[F] {
	return motion(period, from, to, func(x float32) float32 {
		return float32(math.Sin(float64(x) * math.Pi / 2))
	})
}

// SqrtMotion is LinearMotion eased by a square root.
func SqrtMotion[F constraints.Float](period float32, from, to F) iter.Seq[F] {
	return motion(period, from, to, func(x float32) float32 {
		return float32(math.Sqrt(float64(x)))
	})
}

func motion[F constraints.Float](period float32, from, to F, ease func(float32) float32) iter.Seq[F] {
	return func(yield func(F) bool) {
		for t := float32(0); t < period; t += currentDelta() {
			if !yield(lerp(ease(t/period), from, to)) {
				return
			}
		}
		yield(to)
	}
}

func lerp[F constraints.Float](amount float32, from, to F) F {
	return from + (to-from)*F(amount)
}

func currentDelta() float32 {
	if t := Current(); t != nil {
		return t.Delta()
	}
	return 0
}
