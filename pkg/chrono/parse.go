// Duration parsing for configuration files and command-line flags
// Accepts compact ("1h30m", "250ms"), spaced ("1.5 hours", "2 days 3 hours") and infinite forms
package chrono

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDuration parses a signed sequence of amount-unit pairs. Units are any
// name or symbol known to LookupUnit. "inf", "+inf" and "-inf" give the
// infinite durations, and a bare "0" is Zero.
//
// Examples: "30ms", "1h30m", "1.5 hours", "2d 4h", "-5s", "1e-3s", "inf".
func ParseDuration(s string) (Duration, error) {
	orig := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("invalid duration %q: empty", orig)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = strings.TrimSpace(s[1:])
	case '+':
		s = strings.TrimSpace(s[1:])
	}

	switch strings.ToLower(s) {
	case "inf", "infinity", "∞":
		if neg {
			return NegativeInfinity, nil
		}
		return PositiveInfinity, nil
	case "0":
		return Zero, nil
	}

	total := Zero
	for s != "" {
		n := numberPrefix(s)
		if n == 0 {
			return Zero, fmt.Errorf("invalid duration %q: expected a number at %q", orig, s)
		}
		amount, err := strconv.ParseFloat(s[:n], 64)
		if err != nil {
			return Zero, fmt.Errorf("invalid duration %q: %w", orig, err)
		}
		s = strings.TrimLeft(s[n:], " \t")

		u := unitPrefix(s)
		if u == 0 {
			return Zero, fmt.Errorf("invalid duration %q: missing unit after %v", orig, amount)
		}
		unit, ok := LookupUnit(s[:u])
		if !ok {
			return Zero, fmt.Errorf("invalid duration %q: unknown unit %q", orig, s[:u])
		}
		s = strings.TrimLeft(s[u:], " \t,")
		total = total.Add(unit.Of(amount))
	}

	if neg {
		return total.Neg(), nil
	}
	return total, nil
}

// MustParseDuration is like ParseDuration but panics on error. Intended for
// constants in tests and package variables.
func MustParseDuration(s string) Duration {
	d, err := ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

// numberPrefix returns the length of the leading decimal number in s,
// including an optional fraction and exponent.
func numberPrefix(s string) int {
	i := 0
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

// unitPrefix returns the byte length of the leading run of letters in s.
func unitPrefix(s string) int {
	for i, r := range s {
		if !unicode.IsLetter(r) {
			return i
		}
	}
	return len(s)
}
