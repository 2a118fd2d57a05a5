// Rounding of float64 values to int64 under an explicit rounding policy
// Mirrors the familiar decimal rounding modes: up, down, ceiling, floor, half-*, exact
package mathx

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInexact is returned by ToInt64 in Exact mode when the value has a fractional part.
var ErrInexact = errors.New("rounding necessary")

// ErrNaN is returned when a NaN is converted to an integer.
var ErrNaN = errors.New("value is NaN")

// RoundingMode selects how a fractional value is converted to an integer.
type RoundingMode int

const (
	// Down truncates towards zero.
	Down RoundingMode = iota
	// Up rounds away from zero.
	Up
	// Ceiling rounds towards positive infinity.
	Ceiling
	// Floor rounds towards negative infinity.
	Floor
	// HalfUp rounds to the nearest integer, ties away from zero.
	HalfUp
	// HalfDown rounds to the nearest integer, ties towards zero.
	HalfDown
	// HalfEven rounds to the nearest integer, ties to the even neighbour.
	HalfEven
	// Exact fails unless the value is already integral.
	Exact
)

var roundingModeNames = [...]string{
	Down:     "down",
	Up:       "up",
	Ceiling:  "ceiling",
	Floor:    "floor",
	HalfUp:   "half-up",
	HalfDown: "half-down",
	HalfEven: "half-even",
	Exact:    "exact",
}

func (m RoundingMode) String() string {
	if m < 0 || int(m) >= len(roundingModeNames) {
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
	return roundingModeNames[m]
}

// ParseRoundingMode accepts the names printed by RoundingMode.String, case-insensitively.
func ParseRoundingMode(s string) (RoundingMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range roundingModeNames {
		if s == name {
			return RoundingMode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown rounding mode %q, supported: %s", s, strings.Join(roundingModeNames[:], ", "))
}

// Round applies the rounding mode without converting to an integer type.
// Exact mode returns ErrInexact for non-integral values.
func Round(x float64, mode RoundingMode) (float64, error) {
	if math.IsNaN(x) {
		return 0, ErrNaN
	}
	if math.IsInf(x, 0) {
		return x, nil
	}
	switch mode {
	case Down:
		return math.Trunc(x), nil
	case Up:
		if x >= 0 {
			return math.Ceil(x), nil
		}
		return math.Floor(x), nil
	case Ceiling:
		return math.Ceil(x), nil
	case Floor:
		return math.Floor(x), nil
	case HalfUp:
		return math.Round(x), nil
	case HalfDown:
		if x >= 0 {
			return math.Ceil(x - 0.5), nil
		}
		return math.Floor(x + 0.5), nil
	case HalfEven:
		return math.RoundToEven(x), nil
	case Exact:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: %v is not integral", ErrInexact, x)
		}
		return x, nil
	default:
		return 0, fmt.Errorf("unknown rounding mode %d", int(mode))
	}
}

// ToInt64 rounds x with the given mode and converts it to int64.
// Values outside the int64 range (including infinities) saturate, except in
// Exact mode where they fail.
func ToInt64(x float64, mode RoundingMode) (int64, error) {
	r, err := Round(x, mode)
	if err != nil {
		return 0, err
	}
	// float64(math.MaxInt64) rounds up to 2^63, so >= is the overflow test.
	switch {
	case r >= float64(math.MaxInt64):
		if mode == Exact {
			return 0, fmt.Errorf("%w: %v overflows int64", ErrInexact, x)
		}
		return math.MaxInt64, nil
	case r < float64(math.MinInt64):
		if mode == Exact {
			return 0, fmt.Errorf("%w: %v overflows int64", ErrInexact, x)
		}
		return math.MinInt64, nil
	}
	return int64(r), nil
}
