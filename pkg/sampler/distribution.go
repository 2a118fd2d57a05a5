// Distribution DSL parsing for sampler definitions
// Supports named families such as "normal(0, 1)" and the "30ms +/- 10ms" duration shorthand
package sampler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andrewh/timestat/pkg/chrono"
	"github.com/andrewh/timestat/pkg/dist"
)

// param describes one argument of a distribution family.
type param struct {
	name string
	def  float64
	// duration marks parameters that may be written as durations such as "30ms".
	duration bool
	// keyword parameters can only be given as name=value.
	keyword bool
}

type family struct {
	params []param
	build  func(args map[string]float64) (dist.Continuous, error)
}

var families = map[string]family{
	"normal": {
		params: []param{{name: "mu", def: 0, duration: true}, {name: "sigma", def: 1, duration: true}},
		build: func(a map[string]float64) (dist.Continuous, error) {
			return dist.NewNormal(a["mu"], a["sigma"])
		},
	},
	"lognormal": {
		params: []param{{name: "mu", def: 0}, {name: "sigma", def: 1}},
		build: func(a map[string]float64) (dist.Continuous, error) {
			return dist.NewLogNormal(a["mu"], a["sigma"])
		},
	},
	"exponential": {
		params: []param{{name: "lambda", def: 1}, {name: "mean", def: math.NaN(), duration: true, keyword: true}},
		build: func(a map[string]float64) (dist.Continuous, error) {
			if mean := a["mean"]; !math.IsNaN(mean) {
				if !(mean > 0) {
					return nil, fmt.Errorf("%w: mean must be positive, got %v", dist.ErrInvalidParameter, mean)
				}
				return dist.NewExponential(1 / mean)
			}
			return dist.NewExponential(a["lambda"])
		},
	},
	"uniform": {
		params: []param{{name: "min", def: 0, duration: true}, {name: "max", def: 1, duration: true}},
		build: func(a map[string]float64) (dist.Continuous, error) {
			return dist.NewUniform(a["min"], a["max"])
		},
	},
}

// ParseDistribution parses a distribution string.
// Supported formats:
//   - "normal(0, 1)", "lognormal(mu=0, sigma=0.5)", "exponential(2)", "uniform(0, 10)"
//   - "normal(30ms, 10ms)", "exponential(mean=200ms)" (duration-valued)
//   - "30ms +/- 10ms" or "30ms ± 10ms" (normal over durations)
//   - "50ms" (fixed duration)
//
// Duration-valued distributions are expressed in seconds and the returned unit
// is chrono.Seconds. Plain numeric distributions return the zero Unit.
func ParseDistribution(s string) (dist.Continuous, chrono.Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, chrono.Unit{}, fmt.Errorf("distribution is required (e.g. 'normal(0, 1)', '1s +/- 200ms')")
	}
	if open := strings.IndexByte(s, '('); open >= 0 {
		return parseFamily(s, open)
	}
	return parseDurationShorthand(s)
}

// IsDuration reports whether u is a duration unit rather than the zero Unit.
func IsDuration(u chrono.Unit) bool {
	return u.Factor() != 0
}

func parseFamily(s string, open int) (dist.Continuous, chrono.Unit, error) {
	name := strings.ToLower(strings.TrimSpace(s[:open]))
	fam, ok := families[name]
	if !ok {
		return nil, chrono.Unit{}, fmt.Errorf("unknown distribution %q (want normal, lognormal, exponential or uniform)", name)
	}
	if !strings.HasSuffix(s, ")") {
		return nil, chrono.Unit{}, fmt.Errorf("distribution %q is missing a closing parenthesis", s)
	}

	args := make(map[string]float64, len(fam.params))
	for _, p := range fam.params {
		args[p.name] = p.def
	}

	body := strings.TrimSpace(s[open+1 : len(s)-1])
	var parts []string
	if body != "" {
		parts = strings.Split(body, ",")
	}

	seen := make(map[string]bool, len(parts))
	durations, numbers := 0, 0
	for i, part := range parts {
		part = strings.TrimSpace(part)
		var p param
		var raw string
		if key, value, ok := strings.Cut(part, "="); ok {
			key = strings.ToLower(strings.TrimSpace(key))
			found := false
			for _, candidate := range fam.params {
				if candidate.name == key {
					p, found = candidate, true
					break
				}
			}
			if !found {
				return nil, chrono.Unit{}, fmt.Errorf("%s: unknown parameter %q", name, key)
			}
			raw = strings.TrimSpace(value)
		} else {
			if i >= len(fam.params) || fam.params[i].keyword {
				return nil, chrono.Unit{}, fmt.Errorf("%s: too many arguments", name)
			}
			p, raw = fam.params[i], part
		}
		if seen[p.name] {
			return nil, chrono.Unit{}, fmt.Errorf("%s: parameter %q given twice", name, p.name)
		}
		seen[p.name] = true

		v, isDuration, err := parseNumber(raw)
		if err != nil {
			return nil, chrono.Unit{}, fmt.Errorf("%s: parameter %q: %w", name, p.name, err)
		}
		if isDuration {
			if !p.duration {
				return nil, chrono.Unit{}, fmt.Errorf("%s: parameter %q cannot be a duration", name, p.name)
			}
			durations++
		} else {
			numbers++
		}
		args[p.name] = v
	}
	if durations > 0 && numbers > 0 {
		return nil, chrono.Unit{}, fmt.Errorf("%s: cannot mix durations and plain numbers", name)
	}

	d, err := fam.build(args)
	if err != nil {
		return nil, chrono.Unit{}, err
	}
	if durations > 0 {
		return d, chrono.Seconds, nil
	}
	return d, chrono.Unit{}, nil
}

// parseNumber reads a plain number, or a duration converted to seconds.
func parseNumber(s string) (float64, bool, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) {
			return 0, false, fmt.Errorf("%q is not a number", s)
		}
		return v, false, nil
	}
	d, err := chrono.ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("%q is neither a number nor a duration", s)
	}
	return d.InSeconds(), true, nil
}

func parseDurationShorthand(s string) (dist.Continuous, chrono.Unit, error) {
	var meanStr, stddevStr string
	if parts := strings.SplitN(s, "+/-", 2); len(parts) == 2 {
		meanStr = strings.TrimSpace(parts[0])
		stddevStr = strings.TrimSpace(parts[1])
	} else if parts := strings.SplitN(s, "±", 2); len(parts) == 2 {
		meanStr = strings.TrimSpace(parts[0])
		stddevStr = strings.TrimSpace(parts[1])
	} else {
		meanStr = s
	}

	mean, err := chrono.ParseDuration(meanStr)
	if err != nil {
		return nil, chrono.Unit{}, fmt.Errorf("invalid mean duration: %w", err)
	}
	if !(mean.InSeconds() > 0) || mean.IsInfinite() {
		return nil, chrono.Unit{}, fmt.Errorf("mean duration must be positive and finite")
	}

	var stddev chrono.Duration
	if stddevStr != "" {
		stddev, err = chrono.ParseDuration(stddevStr)
		if err != nil {
			return nil, chrono.Unit{}, fmt.Errorf("invalid stddev duration: %w", err)
		}
		if stddev.InSeconds() < 0 || stddev.IsInfinite() {
			return nil, chrono.Unit{}, fmt.Errorf("stddev must not be negative or infinite")
		}
	}

	if stddev.IsZero() {
		d, err := dist.NewUniform(mean.InSeconds(), mean.InSeconds())
		return d, chrono.Seconds, err
	}
	d, err := dist.NewNormal(mean.InSeconds(), stddev.InSeconds())
	return d, chrono.Seconds, err
}
