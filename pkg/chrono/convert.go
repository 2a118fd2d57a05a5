// Conversions between chrono values and the standard library's time types
// Precision is limited by float64: about a nanosecond near the epoch, coarser far from it
package chrono

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/andrewh/timestat/pkg/mathx"
)

// ErrNotRepresentable is returned when a value has no time.Time equivalent.
var ErrNotRepresentable = errors.New("not representable as time.Time")

// Std converts to a time.Duration rounded to the nearest nanosecond, saturating
// at the bounds of time.Duration.
func (d Duration) Std() time.Duration {
	n, _ := d.Int(Nanoseconds, mathx.HalfEven)
	return time.Duration(n)
}

// FromStd converts a time.Duration. Whole seconds and the nanosecond remainder
// are converted separately.
func FromStd(d time.Duration) Duration {
	sec := d / time.Second
	nsec := d % time.Second
	return Seconds.Of(float64(sec)).Add(Nanoseconds.Of(float64(nsec)))
}

// maxUnixSeconds bounds the instants Time accepts; time.Unix stays exact well within it.
const maxUnixSeconds = 1 << 62

// Time converts to a UTC time.Time, rounding to the nearest nanosecond.
func (t Instant) Time() (time.Time, error) {
	raw := t.fromEpoch.raw
	if math.IsInf(raw, 0) || math.Abs(raw) >= maxUnixSeconds {
		return time.Time{}, fmt.Errorf("instant %v seconds from epoch: %w", raw, ErrNotRepresentable)
	}
	sec := t.fromEpoch.Whole(Seconds)
	rem := t.fromEpoch.Sub(Seconds.Of(float64(sec)))
	nsec, err := rem.Int(Nanoseconds, mathx.HalfEven)
	if err != nil {
		return time.Time{}, fmt.Errorf("instant nanoseconds: %w", err)
	}
	if nsec >= int64(time.Second) {
		sec++
		nsec -= int64(time.Second)
	}
	return time.Unix(sec, nsec).UTC(), nil
}

// FromTime converts a time.Time.
func FromTime(tm time.Time) Instant {
	d := Seconds.Of(float64(tm.Unix())).Add(Nanoseconds.Of(float64(tm.Nanosecond())))
	return Instant{fromEpoch: d}
}

// In returns the wall-clock time of t in loc.
func (t Instant) In(loc *time.Location) (time.Time, error) {
	tm, err := t.Time()
	if err != nil {
		return time.Time{}, err
	}
	return tm.In(loc), nil
}

// FromLocal interprets the wall-clock fields of local (ignoring its location) as
// a time in loc.
func FromLocal(local time.Time, loc *time.Location) Instant {
	y, mo, d := local.Date()
	h, mi, s := local.Clock()
	return FromTime(time.Date(y, mo, d, h, mi, s, local.Nanosecond(), loc))
}
