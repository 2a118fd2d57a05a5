// Tests for weighted choice, validation, formatting and the mixed-declaration builder
package weights

import (
	"maps"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestProbability(t *testing.T) {
	t.Parallel()

	w, err := FromMap(map[string]float64{"a": 1, "b": 3})
	require.NoError(t, err)

	pa, err := w.Probability("a")
	require.NoError(t, err)
	assert.Equal(t, 0.25, pa)
	pb, err := w.Probability("b")
	require.NoError(t, err)
	assert.Equal(t, 0.75, pb)
	assert.Equal(t, 4.0, w.Total())
	assert.Equal(t, 2, w.Len())

	_, err = w.Get("c")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = w.Probability("c")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSamplingConverges(t *testing.T) {
	t.Parallel()

	w, err := FromMap(map[string]float64{"a": 1, "b": 3})
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(42, 0)) //nolint:gosec // deterministic seed for testing

	const n = 100_000
	counts := map[string]int{}
	for range n {
		counts[w.Random(rng)]++
	}
	assert.InDelta(t, 0.25, float64(counts["a"])/n, 0.01)
	assert.InDelta(t, 0.75, float64(counts["b"])/n, 0.01)
}

func TestSingleEntryDrawsNoRandomness(t *testing.T) {
	t.Parallel()

	w, err := FromPairs([]Entry[string]{{Label: "only", Weight: 2}})
	require.NoError(t, err)
	assert.Equal(t, "only", w.Random(nil))
}

func TestZeroWeightNeverChosen(t *testing.T) {
	t.Parallel()

	w, err := FromPairs([]Entry[string]{
		{Label: "never-first", Weight: 0},
		{Label: "yes", Weight: 1},
		{Label: "never-middle", Weight: 0},
		{Label: "also", Weight: 1},
		{Label: "never-last", Weight: 0},
	})
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic seed for testing

	for range 10_000 {
		got := w.Random(rng)
		assert.Contains(t, []string{"yes", "also"}, got)
	}
}

func TestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []Entry[string]
		want    error
	}{
		{"empty", nil, ErrEmpty},
		{"negative", []Entry[string]{{"a", 1}, {"b", -1}}, ErrNegative},
		{"nan", []Entry[string]{{"a", math.NaN()}}, ErrNegative},
		{"duplicate", []Entry[string]{{"a", 1}, {"a", 2}}, ErrDuplicate},
		{"zero total", []Entry[string]{{"a", 0}, {"b", 0}}, ErrTotal},
		{"infinite total", []Entry[string]{{"a", math.Inf(1)}}, ErrTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := FromPairs(tt.entries)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	w, err := Of(1, 2, 7)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 1, 1: 2, 2: 7}, w.Map())
	assert.Equal(t, map[int]float64{0: 0.1, 1: 0.2, 2: 0.7}, w.Normalized())

	words, err := MapWeights([]string{"go", "rust", "c"}, func(s string) float64 { return float64(len(s)) })
	require.NoError(t, err)
	assert.Equal(t, []Entry[string]{{"go", 2}, {"rust", 4}, {"c", 1}}, words.Entries())

	_, err = MapWeights([]string{"x", "x"}, func(string) float64 { return 1 })
	require.ErrorIs(t, err, ErrDuplicate)

	assert.Equal(t, map[string]float64{"go": 2, "rust": 4, "c": 1}, maps.Collect(words.All()))
}

func TestString(t *testing.T) {
	t.Parallel()

	w, err := FromMap(map[string]float64{"b": 3, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, "Weights(a = 1 (25.00%), b = 3 (75.00%))", w.String())

	third, err := Of(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Weights(0 = 1 (33.33%), 1 = 2 (66.67%))", third.String())
}

func TestRandomOnlyReturnsPositiveWeights(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Float64Range(0, 10), 1, 20).Draw(t, "weights")
		if rapid.Bool().Draw(t, "zero-first") {
			raw[0] = 0
		}
		w, err := Of(raw...)
		if err != nil {
			return
		}
		rng := rand.New(rand.NewPCG(rapid.Uint64().Draw(t, "seed"), 0)) //nolint:gosec // property test
		for range 50 {
			label := w.Random(rng)
			weight, _ := w.Get(label)
			if weight == 0 && w.Len() > 1 {
				t.Fatalf("drew zero-weight label %d from %v", label, w)
			}
		}
	})
}

func TestBuilderMixed(t *testing.T) {
	t.Parallel()

	var b Builder[string]
	require.NoError(t, b.SetProbability("x", 0.5))
	require.NoError(t, b.Set("y", 1))
	w, err := b.Build()
	require.NoError(t, err)

	py, err := w.Probability("y")
	require.NoError(t, err)
	assert.Equal(t, 0.5, py)
	px, err := w.Probability("x")
	require.NoError(t, err)
	assert.Equal(t, 0.5, px)
}

func TestBuilderSharesRemainingMass(t *testing.T) {
	t.Parallel()

	var b Builder[string]
	require.NoError(t, b.Set("a", 1))
	require.NoError(t, b.Set("b", 3))
	require.NoError(t, b.SetProbability("c", 0.2))
	w, err := b.Build()
	require.NoError(t, err)

	want := map[string]float64{"a": 0.2, "b": 0.6, "c": 0.2}
	for label, p := range want {
		got, err := w.Probability(label)
		require.NoError(t, err)
		assert.InDelta(t, p, got, 1e-12, label)
	}
	assert.Equal(t, []string{"a", "b", "c"}, labels(w))
}

func TestBuilderSingleKind(t *testing.T) {
	t.Parallel()

	var weightsOnly Builder[int]
	require.NoError(t, weightsOnly.Set(1, 2))
	require.NoError(t, weightsOnly.Set(2, 6))
	w, err := weightsOnly.Build()
	require.NoError(t, err)
	assert.Equal(t, 8.0, w.Total())

	var probsOnly Builder[int]
	require.NoError(t, probsOnly.SetProbability(1, 0.1))
	require.NoError(t, probsOnly.SetProbability(2, 0.3))
	w, err = probsOnly.Build()
	require.NoError(t, err)
	p, err := w.Probability(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-12)
}

func TestBuilderErrors(t *testing.T) {
	t.Parallel()

	var empty Builder[string]
	_, err := empty.Build()
	require.ErrorIs(t, err, ErrEmpty)

	var b Builder[string]
	require.NoError(t, b.Set("a", 1))
	require.ErrorIs(t, b.Set("a", 2), ErrDuplicate)
	require.ErrorIs(t, b.SetProbability("a", 0.1), ErrDuplicate)
	require.ErrorIs(t, b.Set("n", -1), ErrNegative)
	require.ErrorIs(t, b.SetProbability("p", 1.5), ErrProbability)

	var over Builder[string]
	require.NoError(t, over.Set("a", 1))
	require.NoError(t, over.SetProbability("b", 0.7))
	require.NoError(t, over.SetProbability("c", 0.6))
	_, err = over.Build()
	require.ErrorIs(t, err, ErrProbability)
}

func TestBuilderGroups(t *testing.T) {
	t.Parallel()

	codes, err := FromMap(map[string]float64{"500": 1, "503": 3})
	require.NoError(t, err)

	var b Builder[string]
	require.NoError(t, b.Set("200", 9))
	require.NoError(t, b.SetWeightsProbability(codes, 0.1))
	w, err := b.Build()
	require.NoError(t, err)

	p500, _ := w.Probability("500")
	p503, _ := w.Probability("503")
	p200, _ := w.Probability("200")
	assert.InDelta(t, 0.025, p500, 1e-12)
	assert.InDelta(t, 0.075, p503, 1e-12)
	assert.InDelta(t, 0.9, p200, 1e-12)

	var g Builder[string]
	require.NoError(t, g.SetWeights(codes, 8))
	w, err = g.Build()
	require.NoError(t, err)
	got, _ := w.Get("503")
	assert.Equal(t, 6.0, got)

	var dup Builder[string]
	require.NoError(t, dup.Set("503", 1))
	require.ErrorIs(t, dup.SetWeights(codes, 1), ErrDuplicate)
	assert.False(t, dup.declared("500"), "a rejected group declares nothing")
}

func labels[T comparable](w Weights[T]) []T {
	var out []T
	for label := range w.All() {
		out = append(out, label)
	}
	return out
}
