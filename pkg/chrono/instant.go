// Instants: points in time measured as a Duration from the Unix epoch
// Instant arithmetic and the Until/To range constructors
package chrono

import (
	"time"

	"github.com/andrewh/timestat/pkg/interval"
)

// Instant is a point in time stored as its offset from Epoch. The zero value is Epoch.
type Instant struct {
	fromEpoch Duration
}

var (
	// Epoch is 1970-01-01T00:00:00Z.
	Epoch = Instant{}
	// MinInstant lies before every finite instant.
	MinInstant = Instant{fromEpoch: NegativeInfinity}
	// MaxInstant lies after every finite instant.
	MaxInstant = Instant{fromEpoch: PositiveInfinity}
)

// FromEpoch returns the instant d after Epoch.
func FromEpoch(d Duration) Instant {
	return Instant{fromEpoch: d}
}

// SinceEpoch returns the offset of t from Epoch.
func (t Instant) SinceEpoch() Duration { return t.fromEpoch }

func (t Instant) Add(d Duration) Instant {
	return Instant{fromEpoch: t.fromEpoch.Add(d)}
}

// Sub returns the duration t-u.
func (t Instant) Sub(u Instant) Duration {
	return t.fromEpoch.Sub(u.fromEpoch)
}

func (t Instant) Compare(u Instant) int { return t.fromEpoch.Compare(u.fromEpoch) }
func (t Instant) Before(u Instant) bool { return t.fromEpoch.raw < u.fromEpoch.raw }
func (t Instant) After(u Instant) bool  { return t.fromEpoch.raw > u.fromEpoch.raw }

func (t Instant) IsFinite() bool   { return t.fromEpoch.IsFinite() }
func (t Instant) IsInfinite() bool { return t.fromEpoch.IsInfinite() }

// Until returns the closed-open interval [t, end).
func (t Instant) Until(end Instant) Interval {
	return Between(t, end, interval.ClosedOpen)
}

// To returns the closed interval [t, end].
func (t Instant) To(end Instant) Interval {
	return Between(t, end, interval.ClosedClosed)
}

// String renders finite instants that fit a time.Time in RFC 3339 form with
// nanoseconds, and anything else by its offset from Epoch.
func (t Instant) String() string {
	if tm, err := t.Time(); err == nil {
		return tm.Format(time.RFC3339Nano)
	}
	offset := t.fromEpoch.String()
	if offset[0] != '-' && offset[0] != '+' {
		offset = "+" + offset
	}
	return "Epoch" + offset
}
