// Package interval models bounded ranges over totally ordered values with
// configurable inclusion of each endpoint.
//
// The comparator-based functions (ContainsFunc, IsEmptyFunc) are the single
// implementation of membership and emptiness; Interval[T] applies them with
// cmp.Compare, and other packages apply them to their own ordered types.
package interval

import (
	"cmp"
	"fmt"
)

// Openness records which endpoints of an interval are excluded.
type Openness uint8

const (
	ClosedOpen Openness = iota // [min, max)
	OpenOpen                   // (min, max)
	OpenClosed                 // (min, max]
	ClosedClosed               // [min, max]
)

// DefaultOpenness is used by constructors that take no explicit openness.
const DefaultOpenness = ClosedOpen

// LeftOpen reports whether min is excluded.
func (o Openness) LeftOpen() bool {
	return o == OpenOpen || o == OpenClosed
}

// RightOpen reports whether max is excluded.
func (o Openness) RightOpen() bool {
	return o == OpenOpen || o == ClosedOpen
}

// String returns the bracket pair, e.g. "[)".
func (o Openness) String() string {
	left, right := "[", "]"
	if o.LeftOpen() {
		left = "("
	}
	if o.RightOpen() {
		right = ")"
	}
	return left + right
}

// ParseOpenness accepts a bracket pair ("[)", "(]", ...) or a name such as "closed-open".
func ParseOpenness(s string) (Openness, error) {
	switch s {
	case "[)", "closed-open":
		return ClosedOpen, nil
	case "()", "open-open":
		return OpenOpen, nil
	case "(]", "open-closed":
		return OpenClosed, nil
	case "[]", "closed-closed":
		return ClosedClosed, nil
	default:
		return 0, fmt.Errorf("unknown openness %q, expected one of [), (), (], []", s)
	}
}

// Format renders bounds with the openness brackets, e.g. "[1, 5)".
func (o Openness) Format(min, max any) string {
	left, right := "[", "]"
	if o.LeftOpen() {
		left = "("
	}
	if o.RightOpen() {
		right = ")"
	}
	return fmt.Sprintf("%s%v, %v%s", left, min, max, right)
}

// ContainsFunc reports whether v lies within min..max under o, ordering values with compare.
func ContainsFunc[T any](min, max, v T, o Openness, compare func(a, b T) int) bool {
	lo, hi := compare(v, min), compare(v, max)
	switch o {
	case OpenOpen:
		return lo > 0 && hi < 0
	case OpenClosed:
		return lo > 0 && hi <= 0
	case ClosedOpen:
		return lo >= 0 && hi < 0
	default:
		return lo >= 0 && hi <= 0
	}
}

// IsEmptyFunc reports whether no value can satisfy the bounds. An interval with
// min == max is empty unless both ends are closed.
func IsEmptyFunc[T any](min, max T, o Openness, compare func(a, b T) int) bool {
	c := compare(min, max)
	if o == ClosedClosed {
		return c > 0
	}
	return c >= 0
}

// Interval is an immutable range of an ordered type. The zero value is the empty
// interval [zero, zero).
type Interval[T cmp.Ordered] struct {
	min, max T
	openness Openness
}

// New returns the interval between min and max with the given openness.
func New[T cmp.Ordered](min, max T, o Openness) Interval[T] {
	return Interval[T]{min: min, max: max, openness: o}
}

// Until returns [min, max).
func Until[T cmp.Ordered](min, max T) Interval[T] {
	return New(min, max, ClosedOpen)
}

// Closed returns [min, max].
func Closed[T cmp.Ordered](min, max T) Interval[T] {
	return New(min, max, ClosedClosed)
}

// Empty returns the canonical empty interval of T.
func Empty[T cmp.Ordered]() Interval[T] {
	return Interval[T]{}
}

func (i Interval[T]) Min() T             { return i.min }
func (i Interval[T]) Max() T             { return i.max }
func (i Interval[T]) Openness() Openness { return i.openness }

// Contains reports whether v is a member of the interval.
func (i Interval[T]) Contains(v T) bool {
	return ContainsFunc(i.min, i.max, v, i.openness, cmp.Compare[T])
}

// IsEmpty reports whether the interval has no members.
func (i Interval[T]) IsEmpty() bool {
	return IsEmptyFunc(i.min, i.max, i.openness, cmp.Compare[T])
}

// Equal reports whether two intervals have identical bounds and openness.
// Any two empty intervals are equal.
func (i Interval[T]) Equal(other Interval[T]) bool {
	return i.Key() == other.Key()
}

// Key returns a value usable as a map key: equal intervals have equal keys, and
// every empty interval collapses to Empty[T]().
func (i Interval[T]) Key() Interval[T] {
	if i.IsEmpty() {
		return Empty[T]()
	}
	return i
}

// String renders the interval as "[min, max)" etc.
func (i Interval[T]) String() string {
	return i.openness.Format(i.min, i.max)
}
