// Intervals of instants, sharing membership and emptiness rules with package interval
// Default openness is closed-open; random sampling is uniform over the raw bounds
package chrono

import (
	"math/rand/v2"

	"github.com/andrewh/timestat/pkg/interval"
)

// Interval is an immutable range of instants. The zero value is the empty
// interval [Epoch, Epoch).
type Interval struct {
	min, max Instant
	openness interval.Openness
}

// Between returns the interval from min to max with the given openness.
func Between(min, max Instant, o interval.Openness) Interval {
	return Interval{min: min, max: max, openness: o}
}

// From returns [start, start+d).
func From(start Instant, d Duration) Interval {
	return Between(start, start.Add(d), interval.DefaultOpenness)
}

// To returns [end-d, end).
func To(end Instant, d Duration) Interval {
	return Between(end.Add(d.Neg()), end, interval.DefaultOpenness)
}

// WithOpenness returns a copy of i with different endpoint inclusion.
func (i Interval) WithOpenness(o interval.Openness) Interval {
	i.openness = o
	return i
}

func (i Interval) Min() Instant                { return i.min }
func (i Interval) Max() Instant                { return i.max }
func (i Interval) Openness() interval.Openness { return i.openness }

// Duration returns Max minus Min regardless of openness.
func (i Interval) Duration() Duration {
	return i.max.Sub(i.min)
}

func (i Interval) Contains(t Instant) bool {
	return interval.ContainsFunc(i.min, i.max, t, i.openness, Instant.Compare)
}

func (i Interval) IsEmpty() bool {
	return interval.IsEmptyFunc(i.min, i.max, i.openness, Instant.Compare)
}

// Key returns a map key under which all empty intervals coincide.
func (i Interval) Key() Interval {
	if i.IsEmpty() {
		return Interval{}
	}
	return i
}

// Equal reports whether the intervals have the same bounds and openness, or are both empty.
func (i Interval) Equal(other Interval) bool {
	return i.Key() == other.Key()
}

func (i Interval) String() string {
	return i.openness.Format(i.min, i.max)
}

// Random draws an instant uniformly from [Min, Max) whatever the openness.
// A single-point interval always yields Min. It panics with a *RangeError
// when a bound is infinite or Min is after Max.
func (i Interval) Random(r *rand.Rand) Instant {
	return RandomInstant(r, i.min, i.max)
}
