// Tests for distribution DSL parsing
// Covers named families, duration arguments, the +/- shorthand and rejected inputs
package sampler

import (
	"testing"

	"github.com/andrewh/timestat/pkg/chrono"
	"github.com/andrewh/timestat/pkg/dist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDistributionFamilies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input      string
		mean       float64
		stddev     float64
		durational bool
	}{
		{"normal(0, 1)", 0, 1, false},
		{"normal()", 0, 1, false},
		{"Normal(mu=5, sigma=2)", 5, 2, false},
		{"normal(sigma=2, mu=5)", 5, 2, false},
		{"normal(30ms, 10ms)", 0.03, 0.01, true},
		{"exponential(2)", 0.5, 0.5, false},
		{"exponential(lambda=4)", 0.25, 0.25, false},
		{"exponential(mean=200ms)", 0.2, 0.2, true},
		{"uniform(0, 10)", 5, 10 / 3.4641016151377544, false},
		{"uniform(1s, 3s)", 2, 2 / 3.4641016151377544, true},
		{"30ms +/- 10ms", 0.03, 0.01, true},
		{"1.5s ± 200ms", 1.5, 0.2, true},
		{"50ms", 0.05, 0, true},
		{"  2m  ", 120, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			d, unit, err := ParseDistribution(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.mean, d.Mean(), 1e-12)
			assert.InDelta(t, tt.stddev, d.StdDev(), 1e-12)
			assert.Equal(t, tt.durational, IsDuration(unit))
			if tt.durational {
				assert.Equal(t, chrono.Seconds, unit)
			}
		})
	}
}

func TestParseDistributionLogNormal(t *testing.T) {
	t.Parallel()

	d, unit, err := ParseDistribution("lognormal(mu=0, sigma=0.5)")
	require.NoError(t, err)
	assert.False(t, IsDuration(unit))

	ln, ok := d.(dist.LogNormal)
	require.True(t, ok)
	assert.Equal(t, 0.0, ln.Mu())
	assert.Equal(t, 0.5, ln.Sigma())
	assert.InDelta(t, 1.0, d.Median(), 1e-12)
}

func TestParseDistributionFixedIsDegenerate(t *testing.T) {
	t.Parallel()

	d, _, err := ParseDistribution("50ms")
	require.NoError(t, err)
	u, ok := d.(dist.Uniform)
	require.True(t, ok)
	assert.Equal(t, 0.05, u.Min())
	assert.Equal(t, 0.05, u.Max())
	assert.Equal(t, 0.05, d.Random(nil))
}

func TestParseDistributionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "distribution is required"},
		{"unknown family", "gamma(1, 2)", "unknown distribution"},
		{"unclosed", "normal(0, 1", "closing parenthesis"},
		{"too many", "normal(0, 1, 2)", "too many arguments"},
		{"keyword only positional", "exponential(1, 2)", "too many arguments"},
		{"unknown key", "normal(mean=1)", "unknown parameter"},
		{"repeated", "normal(0, mu=1)", "given twice"},
		{"not a number", "uniform(a, b)", "neither a number nor a duration"},
		{"nan", "normal(nan, 1)", "not a number"},
		{"duration for lognormal", "lognormal(1s, 1)", "cannot be a duration"},
		{"mixed", "uniform(0, 1s)", "cannot mix"},
		{"bad sigma", "normal(0, 0)", "sigma"},
		{"bad mean", "exponential(mean=-1s)", "mean must be positive"},
		{"inverted uniform", "uniform(2, 1)", "invalid distribution parameter"},
		{"bad shorthand mean", "fast +/- 1ms", "invalid mean duration"},
		{"zero mean", "0s +/- 1ms", "must be positive"},
		{"negative stddev", "30ms +/- -1ms", "must not be negative"},
		{"bad stddev", "30ms +/- wide", "invalid stddev duration"},
		{"infinite mean", "inf", "must be positive and finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ParseDistribution(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDistributionStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"normal(1, 2)", "lognormal(0.1, 0.3)", "exponential(3)", "uniform(-1, 4)", "30ms +/- 10ms"} {
		d, _, err := ParseDistribution(input)
		require.NoError(t, err)
		back, _, err := ParseDistribution(d.(interface{ String() string }).String())
		require.NoError(t, err, input)
		assert.Equal(t, d, back, input)
	}
}
