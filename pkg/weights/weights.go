// Package weights implements weighted random choice over arbitrary labels.
//
// A Weights value is immutable. It keeps entries in insertion order for
// display and precomputes cumulative offsets so each draw is a binary search.
package weights

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrEmpty     = errors.New("weights cannot be empty")
	ErrNegative  = errors.New("weight must be non-negative")
	ErrDuplicate = errors.New("duplicate label")
	ErrTotal     = errors.New("total weight must be positive and finite")
	ErrNotFound  = errors.New("label not found")
)

// Entry pairs a label with its weight.
type Entry[T comparable] struct {
	Label  T
	Weight float64
}

// Weights is a discrete distribution over labels of type T.
type Weights[T comparable] struct {
	entries []Entry[T]
	index   map[T]int
	// ends[i] is the sum of the weights of entries[0..i].
	ends  []float64
	total float64
}

// FromPairs builds weights from entries, keeping their order.
func FromPairs[T comparable](entries []Entry[T]) (Weights[T], error) {
	if len(entries) == 0 {
		return Weights[T]{}, ErrEmpty
	}

	w := Weights[T]{
		entries: make([]Entry[T], len(entries)),
		index:   make(map[T]int, len(entries)),
		ends:    make([]float64, len(entries)),
	}
	for i, e := range entries {
		if !(e.Weight >= 0) {
			return Weights[T]{}, fmt.Errorf("%w: %v = %v", ErrNegative, e.Label, e.Weight)
		}
		if _, ok := w.index[e.Label]; ok {
			return Weights[T]{}, fmt.Errorf("%w: %v", ErrDuplicate, e.Label)
		}
		w.index[e.Label] = i
		w.entries[i] = e
		w.total += e.Weight
		w.ends[i] = w.total
	}
	if w.total <= 0 || math.IsInf(w.total, 0) {
		return Weights[T]{}, fmt.Errorf("%w: %v", ErrTotal, w.total)
	}
	return w, nil
}

// FromMap builds weights from a map, ordering labels ascending so that draws
// from a seeded source are reproducible.
func FromMap[T cmp.Ordered](m map[T]float64) (Weights[T], error) {
	labels := make([]T, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	entries := make([]Entry[T], len(labels))
	for i, label := range labels {
		entries[i] = Entry[T]{Label: label, Weight: m[label]}
	}
	return FromPairs(entries)
}

// Of labels the given weights 0, 1, 2, ...
func Of(weights ...float64) (Weights[int], error) {
	entries := make([]Entry[int], len(weights))
	for i, w := range weights {
		entries[i] = Entry[int]{Label: i, Weight: w}
	}
	return FromPairs(entries)
}

// MapWeights weighs each item with fn.
func MapWeights[T comparable](items []T, fn func(T) float64) (Weights[T], error) {
	entries := make([]Entry[T], len(items))
	for i, item := range items {
		entries[i] = Entry[T]{Label: item, Weight: fn(item)}
	}
	return FromPairs(entries)
}

// Get returns the weight of label.
func (w Weights[T]) Get(label T) (float64, error) {
	i, ok := w.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNotFound, label)
	}
	return w.entries[i].Weight, nil
}

// Probability returns the weight of label divided by the total.
func (w Weights[T]) Probability(label T) (float64, error) {
	weight, err := w.Get(label)
	if err != nil {
		return 0, err
	}
	return weight / w.total, nil
}

func (w Weights[T]) Total() float64 { return w.total }
func (w Weights[T]) Len() int       { return len(w.entries) }

// All yields labels and weights in insertion order.
func (w Weights[T]) All() iter.Seq2[T, float64] {
	return func(yield func(T, float64) bool) {
		for _, e := range w.entries {
			if !yield(e.Label, e.Weight) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries in insertion order.
func (w Weights[T]) Entries() []Entry[T] {
	return slices.Clone(w.entries)
}

// Map returns the raw weights.
func (w Weights[T]) Map() map[T]float64 {
	m := make(map[T]float64, len(w.entries))
	for _, e := range w.entries {
		m[e.Label] = e.Weight
	}
	return m
}

// Normalized returns each label's probability.
func (w Weights[T]) Normalized() map[T]float64 {
	m := make(map[T]float64, len(w.entries))
	for _, e := range w.entries {
		m[e.Label] = e.Weight / w.total
	}
	return m
}

// Random draws a label with probability proportional to its weight. A draw that
// lands exactly on a boundary belongs to the following entry, so zero-weight
// entries are never chosen. Weights with a single entry consume no randomness.
func (w Weights[T]) Random(r *rand.Rand) T {
	if len(w.entries) == 1 {
		return w.entries[0].Label
	}
	x := r.Float64() * w.total
	i := sort.Search(len(w.ends), func(i int) bool { return w.ends[i] > x })
	if i == len(w.ends) {
		// x rounded up to the total; take the last entry with any weight.
		i = len(w.ends) - 1
		for i > 0 && w.entries[i].Weight == 0 {
			i--
		}
	}
	return w.entries[i].Label
}

// String renders "Weights(a = 1 (25.00%), b = 3 (75.00%))".
func (w Weights[T]) String() string {
	parts := make([]string, len(w.entries))
	for i, e := range w.entries {
		parts[i] = fmt.Sprintf("%v = %s (%.2f%%)", e.Label, strconv.FormatFloat(e.Weight, 'g', -1, 64), 100*e.Weight/w.total)
	}
	return "Weights(" + strings.Join(parts, ", ") + ")"
}
