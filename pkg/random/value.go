// Package random defines the single-method Value capability shared by every
// sampler in the module, plus helpers for drawing sequences and primitive values.
//
// Sources are *rand.Rand from math/rand/v2. A source is not safe for concurrent
// use; give each goroutine its own.
package random

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
)

// ErrEmpty is returned when choosing from an empty collection.
var ErrEmpty = errors.New("cannot choose from an empty collection")

// ErrInvalidRange is wrapped by the panic value of Float64Range when a bound
// is not finite or the bounds are reversed.
var ErrInvalidRange = errors.New("range bounds must be finite and ordered")

// Value produces the next value of T from a random source.
type Value[T any] interface {
	Random(r *rand.Rand) T
}

// Func adapts a plain function to Value.
type Func[T any] func(r *rand.Rand) T

func (f Func[T]) Random(r *rand.Rand) T {
	return f(r)
}

// Constant returns a Value that always yields v and never reads the source.
func Constant[T any](v T) Value[T] {
	return Func[T](func(*rand.Rand) T { return v })
}

// Choice returns a Value yielding uniformly random elements of items.
// The slice is copied.
func Choice[T any](items []T) (Value[T], error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	owned := append([]T(nil), items...)
	return Func[T](func(r *rand.Rand) T {
		return owned[r.IntN(len(owned))]
	}), nil
}

// Sample draws the next n values from v.
func Sample[T any](v Value[T], n int, r *rand.Rand) []T {
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = v.Random(r)
	}
	return out
}

// Seq returns an infinite sequence of draws from v. Stop ranging to end it.
func Seq[T any](v Value[T], r *rand.Rand) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			if !yield(v.Random(r)) {
				return
			}
		}
	}
}

// Bool returns true with probability p. p of exactly 0 or 1 consumes no randomness.
func Bool(r *rand.Rand, p float64) (bool, error) {
	switch {
	case p == 0:
		return false, nil
	case p == 1:
		return true, nil
	case p > 0 && p < 1:
		return r.Float64() < p, nil
	default:
		return false, fmt.Errorf("probability out of bounds: %v", p)
	}
}

// Float64Range returns a uniform value in [from, until), or from when the
// bounds are equal. It panics with an error wrapping ErrInvalidRange if either
// bound is NaN or infinite, or if from > until. Spans too wide to represent as
// a float64 are handled by scaling each half separately.
func Float64Range(r *rand.Rand, from, until float64) float64 {
	if err := CheckRange(from, until); err != nil {
		panic(err)
	}
	if from == until {
		return from
	}
	size := until - from
	var v float64
	if math.IsInf(size, 0) {
		half := r.Float64() * (until/2 - from/2)
		v = from + half + half
	} else {
		v = from + r.Float64()*size
	}
	if v >= until {
		return math.Nextafter(until, math.Inf(-1))
	}
	return v
}

// CheckRange reports whether [from, until) can be sampled by Float64Range.
func CheckRange(from, until float64) error {
	switch {
	case math.IsNaN(from) || math.IsNaN(until) || math.IsInf(from, 0) || math.IsInf(until, 0):
		return fmt.Errorf("random in [%v, %v): %w", from, until, ErrInvalidRange)
	case from > until:
		return fmt.Errorf("random in [%v, %v): from is after until: %w", from, until, ErrInvalidRange)
	}
	return nil
}
