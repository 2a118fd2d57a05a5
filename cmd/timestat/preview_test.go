package main

import (
	"bytes"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrewh/timestat/pkg/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewCommand(t *testing.T) {
	t.Parallel()

	t.Run("produces SVG to stdout", func(t *testing.T) {
		t.Parallel()
		path := writeTestConfig(t, validConfig)

		root := rootCmd()
		root.SetArgs([]string{"preview", "--seed", "1", "--samples", "2000", path, "latency"})
		var out bytes.Buffer
		root.SetOut(&out)

		require.NoError(t, root.Execute())
		assert.True(t, strings.HasPrefix(out.String(), "<svg"))
		assert.Contains(t, out.String(), "</svg>")
		assert.Contains(t, out.String(), `class="model-line"`)
		assert.Equal(t, 40, strings.Count(out.String(), `class="bar"`))
	})

	t.Run("weights sampler has one bar per label", func(t *testing.T) {
		t.Parallel()
		path := writeTestConfig(t, validConfig)

		root := rootCmd()
		root.SetArgs([]string{"preview", "--seed", "1", path, "status"})
		var out bytes.Buffer
		root.SetOut(&out)

		require.NoError(t, root.Execute())
		assert.Equal(t, 3, strings.Count(out.String(), `class="bar"`))
		assert.Contains(t, out.String(), ">503</text>")
	})

	t.Run("produces SVG to file", func(t *testing.T) {
		t.Parallel()
		path := writeTestConfig(t, validConfig)
		outFile := filepath.Join(t.TempDir(), "preview.svg")

		root := rootCmd()
		root.SetArgs([]string{"preview", "-o", outFile, path, "arrival"})

		require.NoError(t, root.Execute())
		data, err := os.ReadFile(outFile)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "<svg"))
		assert.Contains(t, string(data), "config.yaml arrival")
	})

	t.Run("unknown sampler", func(t *testing.T) {
		t.Parallel()
		path := writeTestConfig(t, validConfig)

		root := rootCmd()
		root.SetArgs([]string{"preview", path, "nope"})
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})

		require.ErrorContains(t, root.Execute(), `unknown sampler "nope"`)
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()
		root := rootCmd()
		root.SetArgs([]string{"preview", "/nonexistent.yaml", "latency"})
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})

		require.Error(t, root.Execute())
	})

	t.Run("no args shows error", func(t *testing.T) {
		t.Parallel()
		root := rootCmd()
		root.SetArgs([]string{"preview"})
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})

		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing sampler file or name")
	})

	t.Run("non-positive bins", func(t *testing.T) {
		t.Parallel()
		path := writeTestConfig(t, validConfig)
		root := rootCmd()
		root.SetArgs([]string{"preview", "--bins", "0", path, "latency"})
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})

		require.ErrorContains(t, root.Execute(), "must be positive")
	})
}

func testSampler(t *testing.T, name string) *sampler.Sampler {
	t.Helper()
	samplers, _, err := loadSamplers(writeTestConfig(t, validConfig))
	require.NoError(t, err)
	for _, s := range samplers {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no sampler %q", name)
	return nil
}

func TestValueHistogram(t *testing.T) {
	t.Parallel()

	s := testSampler(t, "latency")
	rng := rand.New(rand.NewPCG(42, 0)) //nolint:gosec // deterministic seed for testing
	h := valueHistogram(s, rng, 20_000, 20)
	require.Len(t, h.bars, 20)
	assert.Equal(t, "milliseconds", h.xLabel)

	var freq, model float64
	for _, b := range h.bars {
		freq += b.Freq
		model += b.Model
		assert.InDelta(t, b.Model, b.Freq, 0.02, b.Label)
	}
	// The bins span the central 99% of the model.
	assert.InDelta(t, 0.99, model, 1e-9)
	assert.InDelta(t, 0.99, freq, 0.01)
}

func TestLabelHistogram(t *testing.T) {
	t.Parallel()

	s := testSampler(t, "status")
	rng := rand.New(rand.NewPCG(42, 0)) //nolint:gosec // deterministic seed for testing
	h := labelHistogram(s, rng, 10_000)
	require.Len(t, h.bars, 3)

	labels := make([]string, len(h.bars))
	var total float64
	for i, b := range h.bars {
		labels[i] = b.Label
		total += b.Freq
		assert.InDelta(t, b.Model, b.Freq, 0.01, b.Label)
	}
	assert.ElementsMatch(t, []string{"200", "404", "503"}, labels)
	assert.InDelta(t, 1, total, 1e-12)
}

func TestFromUnit(t *testing.T) {
	t.Parallel()

	latency := testSampler(t, "latency")
	assert.InDelta(t, 0.03, fromUnit(latency, 30), 1e-12)
	rating := testSampler(t, "rating")
	assert.Equal(t, 0.25, fromUnit(rating, 0.25))
}

func TestFormatRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{50, "50"},
		{2.5, "2.5"},
		{1000, "1k"},
		{3000, "3k"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatRate(tt.input), "formatRate(%v)", tt.input)
	}
}

func TestRenderSVG(t *testing.T) {
	t.Parallel()

	t.Run("escapes title and labels", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		err := renderSVG(&out, histogram{
			title:  `a <b> & "c"`,
			xLabel: "label",
			bars:   []bar{{Label: "<x>", Freq: 0.5, Model: 0.5}, {Label: "y", Freq: 0.5, Model: math.NaN()}},
		})
		require.NoError(t, err)
		svg := out.String()
		assert.Contains(t, svg, "a &lt;b&gt; &amp; &quot;c&quot;")
		assert.Contains(t, svg, "&lt;x&gt;")
		assert.Equal(t, 2, strings.Count(svg, `class="bar"`))
		assert.Contains(t, svg, `class="model-line"`)
	})

	t.Run("no model omits line", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, renderSVG(&out, histogram{bars: []bar{{Label: "a", Freq: 0, Model: math.NaN()}}}))
		assert.NotContains(t, out.String(), "<polyline")
	})

	t.Run("empty histogram", func(t *testing.T) {
		t.Parallel()
		require.ErrorContains(t, renderSVG(&bytes.Buffer{}, histogram{}), "no bins")
	})
}
