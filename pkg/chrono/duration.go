// Package chrono implements a double-precision time algebra: durations measured
// in seconds, configurable units, instants relative to an epoch, and instant
// intervals with explicit endpoint openness.
//
// Every value is immutable. A Duration never holds NaN: constructors return an
// error for NaN input, and arithmetic that would produce NaN (for example
// +Inf minus +Inf) panics with an *ArithmeticError.
package chrono

import (
	"cmp"
	"fmt"
	"math"
	"strconv"

	"github.com/andrewh/timestat/pkg/mathx"
)

// ArithmeticError reports an operation whose result would have been NaN.
type ArithmeticError struct {
	Op   string
	X, Y float64
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("duration %s(%v, %v): %v", e.Op, e.X, e.Y, mathx.ErrNaN)
}

func (e *ArithmeticError) Unwrap() error { return mathx.ErrNaN }

// Duration is a signed length of time stored as seconds in a float64.
// The zero value is Zero.
type Duration struct {
	raw float64
}

var (
	Zero             = Duration{}
	MinValue         = Duration{raw: math.SmallestNonzeroFloat64}
	MaxValue         = Duration{raw: math.MaxFloat64}
	NegativeInfinity = Duration{raw: math.Inf(-1)}
	PositiveInfinity = Duration{raw: math.Inf(1)}
)

func newDuration(op string, raw, x, y float64) Duration {
	if math.IsNaN(raw) {
		panic(&ArithmeticError{Op: op, X: x, Y: y})
	}
	return Duration{raw: raw}
}

// NewDuration returns amount of unit, failing if the result is NaN.
func NewDuration(amount float64, unit Unit) (Duration, error) {
	raw := amount * unit.raw
	if math.IsNaN(raw) {
		return Duration{}, fmt.Errorf("duration of %v %s: %w", amount, unit.name, mathx.ErrNaN)
	}
	return Duration{raw: raw}, nil
}

// Components sums named amounts into one Duration. Zero fields are skipped.
type Components struct {
	Years        float64
	Weeks        float64
	Days         float64
	Hours        float64
	Minutes      float64
	Seconds      float64
	Milliseconds float64
	Microseconds float64
	Nanoseconds  float64
}

// Duration panics with an *ArithmeticError if the components cancel to NaN,
// which only happens with opposite infinities.
func (c Components) Duration() Duration {
	parts := []struct {
		amount float64
		unit   Unit
	}{
		{c.Years, Years},
		{c.Weeks, Weeks},
		{c.Days, Days},
		{c.Hours, Hours},
		{c.Minutes, Minutes},
		{c.Seconds, Seconds},
		{c.Milliseconds, Milliseconds},
		{c.Microseconds, Microseconds},
		{c.Nanoseconds, Nanoseconds},
	}
	total := Zero
	for _, p := range parts {
		if p.amount != 0 {
			total = total.Add(p.unit.Of(p.amount))
		}
	}
	return total
}

func (d Duration) Add(o Duration) Duration {
	return newDuration("add", d.raw+o.raw, d.raw, o.raw)
}

func (d Duration) Sub(o Duration) Duration {
	return newDuration("sub", d.raw-o.raw, d.raw, o.raw)
}

func (d Duration) Mul(x float64) Duration {
	return newDuration("mul", d.raw*x, d.raw, x)
}

func (d Duration) Div(x float64) Duration {
	return newDuration("div", d.raw/x, d.raw, x)
}

// DivDuration returns the ratio d/o. The result may be NaN (0/0 or Inf/Inf)
// since it is not a Duration.
func (d Duration) DivDuration(o Duration) float64 {
	return d.raw / o.raw
}

// DivUnit is the same as In.
func (d Duration) DivUnit(u Unit) float64 {
	return d.raw / u.raw
}

// Rem returns the remainder of d/o truncated towards zero; it has the sign of d.
func (d Duration) Rem(o Duration) Duration {
	return newDuration("rem", math.Mod(d.raw, o.raw), d.raw, o.raw)
}

// Mod returns the remainder of d/o floored; it has the sign of o.
func (d Duration) Mod(o Duration) Duration {
	r := math.Mod(d.raw, o.raw)
	if r != 0 && (r < 0) != (o.raw < 0) {
		r += o.raw
	}
	return newDuration("mod", r, d.raw, o.raw)
}

func (d Duration) Neg() Duration { return Duration{raw: -d.raw} }

func (d Duration) Abs() Duration { return Duration{raw: math.Abs(d.raw)} }

func (d Duration) Compare(o Duration) int { return cmp.Compare(d.raw, o.raw) }

func (d Duration) Less(o Duration) bool { return d.raw < o.raw }

func (d Duration) IsZero() bool     { return d.raw == 0 }
func (d Duration) IsFinite() bool   { return !math.IsInf(d.raw, 0) }
func (d Duration) IsInfinite() bool { return math.IsInf(d.raw, 0) }

// In returns the duration as a fractional number of u.
func (d Duration) In(u Unit) float64 {
	return d.raw / u.raw
}

// Int returns the duration as a whole number of u rounded with mode.
// Out-of-range values saturate; Exact mode fails on fractions and overflow.
func (d Duration) Int(u Unit, mode mathx.RoundingMode) (int64, error) {
	return mathx.ToInt64(d.In(u), mode)
}

// Whole returns the number of complete units, rounding towards negative infinity.
func (d Duration) Whole(u Unit) int64 {
	n, _ := mathx.ToInt64(d.In(u), mathx.Floor)
	return n
}

func (d Duration) InNanoseconds() float64  { return d.In(Nanoseconds) }
func (d Duration) InMicroseconds() float64 { return d.In(Microseconds) }
func (d Duration) InMilliseconds() float64 { return d.In(Milliseconds) }
func (d Duration) InSeconds() float64      { return d.In(Seconds) }
func (d Duration) InMinutes() float64      { return d.In(Minutes) }
func (d Duration) InHours() float64        { return d.In(Hours) }
func (d Duration) InDays() float64         { return d.In(Days) }
func (d Duration) InWeeks() float64        { return d.In(Weeks) }
func (d Duration) InYears() float64        { return d.In(Years) }

func (d Duration) WholeNanoseconds() int64  { return d.Whole(Nanoseconds) }
func (d Duration) WholeMicroseconds() int64 { return d.Whole(Microseconds) }
func (d Duration) WholeMilliseconds() int64 { return d.Whole(Milliseconds) }
func (d Duration) WholeSeconds() int64      { return d.Whole(Seconds) }
func (d Duration) WholeMinutes() int64      { return d.Whole(Minutes) }
func (d Duration) WholeHours() int64        { return d.Whole(Hours) }
func (d Duration) WholeDays() int64         { return d.Whole(Days) }
func (d Duration) WholeWeeks() int64        { return d.Whole(Weeks) }
func (d Duration) WholeYears() int64        { return d.Whole(Years) }

// Format renders the duration in the given unit, e.g. "1.5h" or "3 decades".
func (d Duration) Format(u Unit) string {
	v := formatFloat(d.In(u))
	if u.symbol != "" {
		return v + u.symbol
	}
	return v + " " + u.name
}

// displayUnits are the units String chooses from, shortest first.
var displayUnits = []Unit{Nanoseconds, Microseconds, Milliseconds, Seconds, Minutes, Hours, Days, Years}

// String renders the duration in the largest display unit not exceeding it,
// e.g. "30ms", "1.5m", "2d". Infinite durations render as "+Inf" and "-Inf".
func (d Duration) String() string {
	switch {
	case d.raw == 0:
		return "0s"
	case math.IsInf(d.raw, 1):
		return "+Inf"
	case math.IsInf(d.raw, -1):
		return "-Inf"
	}
	abs := math.Abs(d.raw)
	unit := displayUnits[0]
	for _, u := range displayUnits {
		if abs >= u.raw {
			unit = u
		}
	}
	return d.Format(unit)
}

// MarshalText encodes the duration as the shortest seconds literal that
// ParseDuration reads back to the same value. String rounds for display and
// is not used here.
func (d Duration) MarshalText() ([]byte, error) {
	switch {
	case math.IsInf(d.raw, 1):
		return []byte("+Inf"), nil
	case math.IsInf(d.raw, -1):
		return []byte("-Inf"), nil
	case d.raw == 0:
		return []byte("0s"), nil
	}
	return []byte(strconv.FormatFloat(d.raw, 'g', -1, 64) + "s"), nil
}

// UnmarshalText decodes any form accepted by ParseDuration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
