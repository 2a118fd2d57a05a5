// Tests for YAML configuration loading, validation and sampler construction
package sampler

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrewh/timestat/pkg/chrono"
	"github.com/andrewh/timestat/pkg/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleConfig = `
seed: 42
samplers:
  latency:
    distribution: "30ms +/- 10ms"
    unit: ms
  status:
    weights: {"200": 95, "404": 3}
    probabilities: {"503": 0.01}
  arrival:
    window: {start: "2025-01-01T00:00:00Z", duration: 1h, openness: "[)"}
  rating:
    score: rating
  skill:
    score: zscore
    mu: 100
    sigma: 15
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samplers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func buildOne(t *testing.T, sc SamplerConfig) *Sampler {
	t.Helper()
	s, err := NewSampler(sc)
	require.NoError(t, err)
	return s
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfig(t, exampleConfig))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Seed)

	names := make([]string, len(cfg.Samplers))
	for i, sc := range cfg.Samplers {
		names[i] = sc.Name
	}
	assert.Equal(t, []string{"arrival", "latency", "rating", "skill", "status"}, names)
	require.NoError(t, ValidateConfig(cfg))

	samplers, err := Build(cfg)
	require.NoError(t, err)
	require.Len(t, samplers, 5)
	kinds := []Kind{KindWindow, KindDistribution, KindScore, KindScore, KindWeights}
	for i, s := range samplers {
		assert.Equal(t, kinds[i], s.Kind, s.Name)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading config")

	_, err = ParseConfig([]byte("samplers: [1, 2"))
	require.ErrorContains(t, err, "parsing config")
}

func TestValidateConfigErrors(t *testing.T) {
	t.Parallel()

	mu := 1.0
	tests := []struct {
		name string
		sc   SamplerConfig
		want string
	}{
		{"nothing declared", SamplerConfig{}, "one of distribution, weights, window or score is required"},
		{"two kinds", SamplerConfig{Distribution: "50ms", Score: "rating"}, "only one of distribution, score may be set"},
		{"bad distribution", SamplerConfig{Distribution: "normal(0, -1)"}, "invalid distribution"},
		{"unit without durations", SamplerConfig{Distribution: "normal(0, 1)", Unit: "ms"}, "without durations"},
		{"unknown unit", SamplerConfig{Distribution: "50ms", Unit: "parsec"}, "unknown unit"},
		{"negative weight", SamplerConfig{Weights: map[string]float64{"a": -1}}, "invalid weights"},
		{"bad probability", SamplerConfig{Probabilities: map[string]float64{"a": 2}}, "invalid probabilities"},
		{"label twice", SamplerConfig{Weights: map[string]float64{"a": 1}, Probabilities: map[string]float64{"a": 0.5}}, "duplicate label"},
		{"over-committed", SamplerConfig{Weights: map[string]float64{"a": 1}, Probabilities: map[string]float64{"b": 0.6, "c": 0.6}}, "invalid probability"},
		{"weights unit", SamplerConfig{Weights: map[string]float64{"a": 1}, Unit: "ms"}, "unit does not apply"},
		{"window start", SamplerConfig{Window: &WindowConfig{Start: "yesterday", Duration: "1h"}}, "window start"},
		{"window both", SamplerConfig{Window: &WindowConfig{Start: "epoch", End: "epoch", Duration: "1h"}}, "not both"},
		{"window neither", SamplerConfig{Window: &WindowConfig{Start: "epoch"}}, "requires end or duration"},
		{"window openness", SamplerConfig{Window: &WindowConfig{Start: "epoch", Duration: "1h", Openness: "<>"}}, "unknown openness"},
		{"window empty", SamplerConfig{Window: &WindowConfig{Start: "epoch", Duration: "0s"}}, "is empty"},
		{"window inverted", SamplerConfig{Window: &WindowConfig{Start: "epoch", Duration: "-1h"}}, "is empty"},
		{"window infinite", SamplerConfig{Window: &WindowConfig{Start: "epoch", Duration: "inf"}}, "must be finite"},
		{"unknown score", SamplerConfig{Score: "elo"}, "unknown score"},
		{"mu on rating", SamplerConfig{Score: "rating", Mu: &mu}, "only apply to zscore"},
		{"mu on distribution", SamplerConfig{Distribution: "50ms", Mu: &mu}, "only apply to zscore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.sc.Name = "s"
			err := ValidateConfig(&Config{Samplers: []SamplerConfig{tt.sc}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), `sampler "s"`)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	require.ErrorContains(t, ValidateConfig(&Config{}), "at least one sampler")
}

func TestDistributionSampler(t *testing.T) {
	t.Parallel()

	s := buildOne(t, SamplerConfig{Name: "latency", Distribution: "30ms +/- 10ms"})
	assert.True(t, s.Durational())
	assert.Equal(t, chrono.Milliseconds, s.Unit)
	assert.Equal(t, "normal(mu=0.03, sigma=0.01) in seconds", s.Describe())
	assert.Equal(t, "30ms", s.FormatValue(30))
	assert.InDelta(t, 30.0, s.ToUnit(0.03), 1e-9)

	rng := rand.New(rand.NewPCG(42, 0)) //nolint:gosec // deterministic seed for testing
	for range 1000 {
		d := s.Draw(rng)
		assert.Equal(t, "latency", d.Sampler)
		assert.Equal(t, "ms", d.Unit)
		assert.GreaterOrEqual(t, d.Value, 0.0)
		assert.True(t, d.Tail >= 0 && d.Tail <= 1)
	}

	plain := buildOne(t, SamplerConfig{Name: "x", Distribution: "normal(0, 1)"})
	assert.False(t, plain.Durational())
	assert.Equal(t, "", plain.Draw(rng).Unit)
	assert.Equal(t, "0.5", plain.FormatValue(0.5))
}

func TestDurationClampedAtZero(t *testing.T) {
	t.Parallel()

	s := buildOne(t, SamplerConfig{Name: "wide", Distribution: "1ms +/- 10ms"})
	rng := rand.New(rand.NewPCG(7, 0)) //nolint:gosec // deterministic seed for testing
	zeros := 0
	for range 1000 {
		d := s.Draw(rng)
		require.GreaterOrEqual(t, d.Value, 0.0)
		if d.Value == 0 {
			zeros++
		}
	}
	assert.Positive(t, zeros)
}

func TestWeightsSampler(t *testing.T) {
	t.Parallel()

	s := buildOne(t, SamplerConfig{
		Name:          "status",
		Weights:       map[string]float64{"200": 3, "404": 1},
		Probabilities: map[string]float64{"503": 0.2},
	})
	assert.Nil(t, s.Dist)

	p, err := s.Weights.Probability("200")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, p, 1e-12)
	p, err = s.Weights.Probability("503")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, p, 1e-12)

	rng := rand.New(rand.NewPCG(1, 0)) //nolint:gosec // deterministic seed for testing
	d := s.Draw(rng)
	assert.Contains(t, []string{"200", "404", "503"}, d.Label)
	want, _ := s.Weights.Probability(d.Label)
	assert.Equal(t, want, d.Tail)
}

func TestWindowSampler(t *testing.T) {
	t.Parallel()

	s := buildOne(t, SamplerConfig{
		Name:   "arrival",
		Window: &WindowConfig{Start: "2025-01-01T00:00:00Z", Duration: "1h"},
		Unit:   "m",
	})
	assert.Equal(t, interval.ClosedOpen, s.Window.Openness())
	assert.Equal(t, "[2025-01-01T00:00:00Z, 2025-01-01T01:00:00Z)", s.Describe())
	assert.Equal(t, 1800.0, s.Dist.Mean())

	rng := rand.New(rand.NewPCG(3, 0)) //nolint:gosec // deterministic seed for testing
	for range 1000 {
		d := s.Draw(rng)
		require.True(t, s.Window.Contains(d.Instant), d.Instant)
		require.True(t, d.Value >= 0 && d.Value < 60, d.Value)
		assert.Equal(t, "m", d.Unit)
	}

	closed := buildOne(t, SamplerConfig{
		Name:   "point",
		Window: &WindowConfig{Start: "epoch", End: "epoch", Openness: "[]"},
	})
	d := closed.Draw(rng)
	assert.Equal(t, chrono.Epoch, d.Instant)
	assert.Equal(t, 0.0, d.Value)
}

func TestScoreSamplers(t *testing.T) {
	t.Parallel()

	rating := buildOne(t, SamplerConfig{Name: "r", Score: "rating"})
	assert.Equal(t, "rating", rating.Describe())

	mu, sigma := 100.0, 15.0
	z := buildOne(t, SamplerConfig{Name: "z", Score: "ZScore", Mu: &mu, Sigma: &sigma})
	assert.Equal(t, "zscore(mu=100, sigma=15)", z.Describe())
	assert.Equal(t, 100.0, z.Dist.Mean())
	assert.Equal(t, 15.0, z.Dist.StdDev())

	rng := rand.New(rand.NewPCG(5, 0)) //nolint:gosec // deterministic seed for testing
	for range 1000 {
		d := rating.Draw(rng)
		require.True(t, d.Value >= 0 && d.Value < 1)
		assert.InDelta(t, 1-d.Value, d.Tail, 1e-12)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "distribution", KindDistribution.String())
	assert.Equal(t, "weights", KindWeights.String())
	assert.Equal(t, "window", KindWindow.String())
	assert.Equal(t, "score", KindScore.String())
	assert.Equal(t, "kind(9)", Kind(9).String())

	text, err := KindWindow.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "window", string(text))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("score")))
	assert.Equal(t, KindScore, k)
	require.ErrorContains(t, k.UnmarshalText([]byte("kind(9)")), "unknown sampler kind")
}
