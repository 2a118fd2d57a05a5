// Uniform random durations and instants
package chrono

import (
	"fmt"
	"math/rand/v2"

	"github.com/andrewh/timestat/pkg/random"
)

// RangeError is the panic value of RandomDuration, RandomInstant and
// Interval.Random when a bound is infinite or from is after until.
// It wraps random.ErrInvalidRange.
type RangeError struct {
	From, Until Duration
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("random duration in [%v, %v): %v", e.From, e.Until, random.ErrInvalidRange)
}

func (e *RangeError) Unwrap() error { return random.ErrInvalidRange }

// RandomDuration draws uniformly from [from, until). If the bounds are equal it
// returns from without consuming randomness. Both bounds must be finite with
// from <= until, otherwise it panics with a *RangeError.
func RandomDuration(r *rand.Rand, from, until Duration) Duration {
	if random.CheckRange(from.raw, until.raw) != nil {
		panic(&RangeError{From: from, Until: until})
	}
	if from.raw == until.raw {
		return from
	}
	return newDuration("random", random.Float64Range(r, from.raw, until.raw), from.raw, until.raw)
}

// RandomInstant draws uniformly from [from, until), panicking with a
// *RangeError under the same conditions as RandomDuration.
func RandomInstant(r *rand.Rand, from, until Instant) Instant {
	return Instant{fromEpoch: RandomDuration(r, from.fromEpoch, until.fromEpoch)}
}
