// Builder for weights declared partly by absolute weight and partly by target probability
// Weight-declared entries share whatever probability mass the declared probabilities leave
package weights

import (
	"errors"
	"fmt"
)

// ErrProbability is returned for probabilities outside [0, 1] or declared
// probabilities that sum to more than 1.
var ErrProbability = errors.New("invalid probability")

// Builder collects declarations for Build. Each label may be declared once,
// either by weight or by probability. The zero value is ready to use.
type Builder[T comparable] struct {
	order         []T
	weights       map[T]float64
	probabilities map[T]float64
}

func (b *Builder[T]) declared(label T) bool {
	_, w := b.weights[label]
	_, p := b.probabilities[label]
	return w || p
}

// Set declares label with an absolute weight.
func (b *Builder[T]) Set(label T, weight float64) error {
	if b.declared(label) {
		return fmt.Errorf("%w: %v", ErrDuplicate, label)
	}
	if !(weight >= 0) {
		return fmt.Errorf("%w: %v = %v", ErrNegative, label, weight)
	}
	if b.weights == nil {
		b.weights = make(map[T]float64)
	}
	b.weights[label] = weight
	b.order = append(b.order, label)
	return nil
}

// SetProbability declares label with a target probability in the built weights.
func (b *Builder[T]) SetProbability(label T, p float64) error {
	if b.declared(label) {
		return fmt.Errorf("%w: %v", ErrDuplicate, label)
	}
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%w: %v = %v", ErrProbability, label, p)
	}
	if b.probabilities == nil {
		b.probabilities = make(map[T]float64)
	}
	b.probabilities[label] = p
	b.order = append(b.order, label)
	return nil
}

// SetWeights declares every label of w with weight scaled by its probability in w,
// so the group as a whole weighs weight.
func (b *Builder[T]) SetWeights(w Weights[T], weight float64) error {
	if err := b.checkGroup(w); err != nil {
		return err
	}
	for label, lw := range w.All() {
		if err := b.Set(label, weight*lw/w.total); err != nil {
			return err
		}
	}
	return nil
}

// SetWeightsProbability declares every label of w by probability, so the group
// as a whole has probability p.
func (b *Builder[T]) SetWeightsProbability(w Weights[T], p float64) error {
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%w: group probability %v", ErrProbability, p)
	}
	if err := b.checkGroup(w); err != nil {
		return err
	}
	for label, lw := range w.All() {
		if err := b.SetProbability(label, p*lw/w.total); err != nil {
			return err
		}
	}
	return nil
}

// checkGroup rejects a group containing any already-declared label before
// anything is declared.
func (b *Builder[T]) checkGroup(w Weights[T]) error {
	for label := range w.All() {
		if b.declared(label) {
			return fmt.Errorf("%w: %v", ErrDuplicate, label)
		}
	}
	return nil
}

// Build returns the weights. When both kinds of declaration are present, the
// weight-declared entries are rescaled to share 1 minus the declared
// probabilities, and every entry is expressed against a total of 1.
func (b *Builder[T]) Build() (Weights[T], error) {
	if len(b.order) == 0 {
		return Weights[T]{}, fmt.Errorf("%w: nothing declared", ErrEmpty)
	}

	entries := make([]Entry[T], len(b.order))
	if len(b.weights) == 0 || len(b.probabilities) == 0 {
		for i, label := range b.order {
			if w, ok := b.weights[label]; ok {
				entries[i] = Entry[T]{Label: label, Weight: w}
			} else {
				entries[i] = Entry[T]{Label: label, Weight: b.probabilities[label]}
			}
		}
		return FromPairs(entries)
	}

	var totalWeight, totalProbability float64
	for _, w := range b.weights {
		totalWeight += w
	}
	for _, p := range b.probabilities {
		totalProbability += p
	}
	if totalProbability > 1 {
		return Weights[T]{}, fmt.Errorf("%w: declared probabilities sum to %v", ErrProbability, totalProbability)
	}
	if totalWeight <= 0 {
		return Weights[T]{}, fmt.Errorf("%w: weight-declared entries total %v", ErrTotal, totalWeight)
	}

	remaining := 1 - totalProbability
	for i, label := range b.order {
		if w, ok := b.weights[label]; ok {
			entries[i] = Entry[T]{Label: label, Weight: w / totalWeight * remaining}
		} else {
			entries[i] = Entry[T]{Label: label, Weight: b.probabilities[label]}
		}
	}
	return FromPairs(entries)
}
