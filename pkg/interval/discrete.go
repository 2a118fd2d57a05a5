// Stepping helpers for integer and rune intervals, and width for float intervals
// Discrete types resolve effective inclusive endpoints; floats only expose width
package interval

import (
	"fmt"
	"iter"
	"math"

	"golang.org/x/exp/constraints"
)

// First returns the smallest member of a discrete interval (min, or min+1 when left-open).
// The result is meaningless for an empty interval.
func First[T constraints.Integer](i Interval[T]) T {
	if i.openness.LeftOpen() {
		return i.min + 1
	}
	return i.min
}

// Last returns the largest member of a discrete interval.
func Last[T constraints.Integer](i Interval[T]) T {
	if i.openness.RightOpen() {
		return i.max - 1
	}
	return i.max
}

// Len returns the number of members of a discrete interval, 0 when it is empty.
// The full range of a 64-bit type has 2^64 members; Len saturates at math.MaxUint64.
func Len[T constraints.Integer](i Interval[T]) uint64 {
	if i.IsEmpty() {
		return 0
	}
	first, last := First(i), Last(i)
	if last < first {
		// (n, n+1) has no integer members even though it is not empty as a real interval.
		return 0
	}
	n := span(first, last)
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}

// span returns hi-lo for lo <= hi without overflowing T. Conversion to uint64
// sign-extends, so the wrapped difference is exact for signed types too.
func span[T constraints.Integer](lo, hi T) uint64 {
	return uint64(hi) - uint64(lo)
}

// Width returns max-min for a continuous interval, 0 when it is empty.
func Width[T constraints.Float](i Interval[T]) T {
	if i.IsEmpty() {
		return 0
	}
	return i.max - i.min
}

// FromRange builds an interval whose members are exactly first..last, expressed
// with the requested openness.
func FromRange[T constraints.Integer](first, last T, o Openness) Interval[T] {
	min, max := first, last
	if o.LeftOpen() {
		min--
	}
	if o.RightOpen() {
		max++
	}
	return New(min, max, o)
}

// Values iterates the members of a discrete interval from First to Last by step.
// A negative step walks from Last down to First.
func Values[T constraints.Integer](i Interval[T], step T) (iter.Seq[T], error) {
	if step == 0 {
		return nil, fmt.Errorf("step must be non-zero")
	}
	return func(yield func(T) bool) {
		if Len(i) == 0 {
			return
		}
		first, last := First(i), Last(i)
		if step > 0 {
			stride := uint64(step)
			for v := first; ; v += step {
				if !yield(v) || span(v, last) < stride {
					return
				}
			}
		}
		stride := -uint64(step)
		for v := last; ; v += step {
			if !yield(v) || span(first, v) < stride {
				return
			}
		}
	}, nil
}
