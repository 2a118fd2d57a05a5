// Duration units: a name, an optional symbol, and a seconds-per-unit factor
// The standard table is derived multiplicatively from the base unit at package init
package chrono

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidUnit is returned when a unit factor is zero or not finite.
var ErrInvalidUnit = errors.New("unit factor must be finite and non-zero")

// Unit is an immutable duration unit. The zero Unit is invalid; use Base or a
// constructed unit.
type Unit struct {
	name   string
	symbol string
	raw    float64
}

// Base is the reference unit, one second, with factor 1.
var Base = Unit{name: "base", raw: 1}

// Standard units. Each is defined in terms of an earlier one.
var (
	Seconds      = mustUnit(Base.Of(1), "seconds", "s")
	Minutes      = mustUnit(Seconds.Of(60), "minutes", "m")
	Hours        = mustUnit(Minutes.Of(60), "hours", "h")
	Days         = mustUnit(Hours.Of(24), "days", "d")
	Weeks        = mustUnit(Days.Of(7), "weeks", "w")
	Years        = mustUnit(Days.Of(365.2425), "years", "y")
	Milliseconds = mustUnit(Seconds.Of(0.001), "milliseconds", "ms")
	Microseconds = mustUnit(Milliseconds.Of(0.001), "microseconds", "us")
	Nanoseconds  = mustUnit(Microseconds.Of(0.001), "nanoseconds", "ns")
	Decades      = mustUnit(Years.Of(10), "decades", "")
	Centuries    = mustUnit(Years.Of(100), "centuries", "")
	Millennia    = mustUnit(Years.Of(1000), "millennia", "")
)

// standardUnits is read-only after init.
var standardUnits = []Unit{
	Nanoseconds, Microseconds, Milliseconds, Seconds, Minutes, Hours,
	Days, Weeks, Years, Decades, Centuries, Millennia,
}

// NewUnit defines a unit whose length is d.
func NewUnit(name, symbol string, d Duration) (Unit, error) {
	if d.raw == 0 || math.IsInf(d.raw, 0) {
		return Unit{}, fmt.Errorf("unit %q: %w", name, ErrInvalidUnit)
	}
	return Unit{name: name, symbol: symbol, raw: d.raw}, nil
}

func mustUnit(d Duration, name, symbol string) Unit {
	u, err := NewUnit(name, symbol, d)
	if err != nil {
		panic(err)
	}
	return u
}

// ToUnit defines a unit whose length is d.
func (d Duration) ToUnit(name, symbol string) (Unit, error) {
	return NewUnit(name, symbol, d)
}

// Units returns the standard units ordered from shortest to longest.
func Units() []Unit {
	return append([]Unit(nil), standardUnits...)
}

// LookupUnit finds a standard unit by name or symbol. Names may be given in
// singular form and are matched case-insensitively; symbols are case-sensitive
// so that "m" and "M" stay distinct.
func LookupUnit(s string) (Unit, bool) {
	s = strings.TrimSpace(s)
	for _, u := range standardUnits {
		if u.symbol != "" && s == u.symbol {
			return u, true
		}
	}
	switch s {
	case "µs", "μs":
		return Microseconds, true
	case "sec", "secs":
		return Seconds, true
	case "min", "mins":
		return Minutes, true
	case "hr", "hrs":
		return Hours, true
	}
	lower := strings.ToLower(s)
	for _, u := range standardUnits {
		if lower == u.name || lower == singular(u.name) {
			return u, true
		}
	}
	return Unit{}, false
}

func singular(name string) string {
	switch name {
	case "centuries":
		return "century"
	case "millennia":
		return "millennium"
	}
	return strings.TrimSuffix(name, "s")
}

func (u Unit) Name() string   { return u.name }
func (u Unit) Symbol() string { return u.symbol }

// Factor returns the number of seconds in one unit.
func (u Unit) Factor() float64 { return u.raw }

// Of returns amount units as a Duration. It panics with an *ArithmeticError if
// the product is NaN.
func (u Unit) Of(amount float64) Duration {
	return newDuration("unit", amount*u.raw, amount, u.raw)
}

// Duration returns one unit.
func (u Unit) Duration() Duration {
	return Duration{raw: u.raw}
}

// Div returns how many of other fit in u.
func (u Unit) Div(other Unit) float64 {
	return u.raw / other.raw
}

func (u Unit) Compare(other Unit) int {
	return cmp.Compare(u.raw, other.raw)
}

// String returns the symbol, falling back to the name.
func (u Unit) String() string {
	if u.symbol != "" {
		return u.symbol
	}
	return u.name
}
