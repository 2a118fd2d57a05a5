// Tests for the random Value capability and its helpers
package random

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestConstant(t *testing.T) {
	t.Parallel()

	v := Constant("fixed")
	assert.Equal(t, "fixed", v.Random(nil))
}

func TestChoice(t *testing.T) {
	t.Parallel()

	t.Run("draws every element", func(t *testing.T) {
		t.Parallel()
		v, err := Choice([]string{"a", "b", "c"})
		require.NoError(t, err)
		rng := rand.New(rand.NewPCG(42, 0)) //nolint:gosec // deterministic seed for testing

		seen := map[string]int{}
		for range 300 {
			seen[v.Random(rng)]++
		}
		assert.Len(t, seen, 3)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := Choice([]int{})
		require.ErrorIs(t, err, ErrEmpty)
	})
}

func TestSampleAndSeq(t *testing.T) {
	t.Parallel()

	counter := 0
	v := Func[int](func(*rand.Rand) int {
		counter++
		return counter
	})

	assert.Equal(t, []int{1, 2, 3}, Sample(v, 3, nil))
	assert.Nil(t, Sample(v, 0, nil))

	var got []int
	for x := range Seq(v, nil) {
		got = append(got, x)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{4, 5}, got)
}

func TestBool(t *testing.T) {
	t.Parallel()

	b, err := Bool(nil, 0)
	require.NoError(t, err)
	assert.False(t, b)

	b, err = Bool(nil, 1)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = Bool(nil, 1.5)
	require.Error(t, err)

	rng := rand.New(rand.NewPCG(7, 0)) //nolint:gosec // deterministic seed for testing
	hits := 0
	for range 10000 {
		if ok, _ := Bool(rng, 0.25); ok {
			hits++
		}
	}
	assert.InDelta(t, 0.25, float64(hits)/10000, 0.02)
}

func TestFloat64RangeStaysInBounds(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		from := rapid.Float64Range(-1e6, 1e6).Draw(t, "from")
		width := rapid.Float64Range(1e-6, 1e6).Draw(t, "width")
		until := from + width
		rng := rand.New(rand.NewPCG(rapid.Uint64().Draw(t, "seed"), 0)) //nolint:gosec // property test
		v := Float64Range(rng, from, until)
		if v < from || v >= until {
			t.Fatalf("%v not in [%v, %v)", v, from, until)
		}
	})
}

func TestFloat64RangeHugeSpan(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 0)) //nolint:gosec // deterministic seed for testing
	for range 100 {
		v := Float64Range(rng, -math.MaxFloat64, math.MaxFloat64)
		assert.False(t, math.IsInf(v, 0))
		assert.Less(t, v, math.MaxFloat64)
	}
}

func TestFloat64RangeRejectsBadBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		from, until float64
	}{
		{"reversed", 10, 0},
		{"infinite until", 0, math.Inf(1)},
		{"infinite from", math.Inf(-1), 0},
		{"both infinite", math.Inf(-1), math.Inf(1)},
		{"nan", math.NaN(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, CheckRange(tt.from, tt.until), ErrInvalidRange)
			assert.PanicsWithError(t, CheckRange(tt.from, tt.until).Error(), func() {
				Float64Range(nil, tt.from, tt.until)
			})
		})
	}

	assert.Equal(t, 3.0, Float64Range(nil, 3, 3))
}
