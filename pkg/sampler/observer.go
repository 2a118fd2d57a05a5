// Observer interface for deriving signals (metrics, logs, stored rows) from draws.
// Observers receive each draw after the engine produces it.
package sampler

import (
	"github.com/andrewh/timestat/pkg/chrono"
)

// Draw holds one sampled value and the metadata observers need.
type Draw struct {
	Sampler string
	Kind    Kind
	// Value is the drawn number: a duration in Unit, an offset into a window in
	// Unit, a rating or z-score, or a plain number.
	Value float64
	// Unit is the unit symbol of Value, empty for dimensionless values.
	Unit string
	// Label is the drawn label of a weights sampler.
	Label string
	// Instant is the drawn instant of a window sampler.
	Instant chrono.Instant
	// Tail is P(X > Value) for continuous samplers and the label's probability
	// for weights samplers. Small values mark rare draws.
	Tail float64
	Seq  int64
}

// Observer receives draws as they are produced.
type Observer interface {
	Observe(d Draw)
}
