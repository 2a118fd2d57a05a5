// Sampling engine: draws a fixed number of values from each sampler in turn
// Each sampler batch is recorded as one span; observers see every individual draw
package sampler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// cancelCheckInterval is how many draws pass between context checks.
const cancelCheckInterval = 1024

// Engine drives a sampling run.
type Engine struct {
	Samplers  []*Sampler
	Rng       *rand.Rand
	Count     int
	Observers []Observer
	// Provider records a span per sampler batch; nil disables tracing.
	Provider trace.TracerProvider
}

// Run draws Count values from every sampler. Cancelling ctx stops the run
// early and returns the stats gathered so far.
func (e *Engine) Run(ctx context.Context) (*Stats, error) {
	if len(e.Samplers) == 0 {
		return nil, fmt.Errorf("no samplers to draw from")
	}
	if e.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", e.Count)
	}
	if e.Rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	provider := e.Provider
	if provider == nil {
		provider = noop.NewTracerProvider()
	}
	tracer := provider.Tracer("timestat")

	var stats Stats
	startTime := time.Now()
	var seq int64

	for _, s := range e.Samplers {
		c := newCollector(s)
		_, span := tracer.Start(ctx, "sample "+s.Name, trace.WithAttributes(
			attribute.String("sampler.name", s.Name),
			attribute.String("sampler.kind", s.Kind.String()),
			attribute.Int("sampler.requested", e.Count),
		))

		cancelled := false
	draws:
		for i := range e.Count {
			if i%cancelCheckInterval == 0 {
				select {
				case <-ctx.Done():
					cancelled = true
					break draws
				default:
				}
			}
			d := s.Draw(e.Rng)
			seq++
			d.Seq = seq
			c.add(d)
			for _, obs := range e.Observers {
				obs.Observe(d)
			}
		}

		st := c.stats()
		stats.Samplers = append(stats.Samplers, st)
		stats.Draws += st.Count

		span.SetAttributes(attribute.Int64("sampler.draws", st.Count))
		if s.Kind != KindWeights && st.Count > 0 {
			span.SetAttributes(
				attribute.Float64("sampler.mean", st.Mean),
				attribute.Float64("sampler.stddev", st.StdDev),
			)
		}
		if cancelled {
			span.SetStatus(codes.Error, ctx.Err().Error())
			span.End()
			stats.Cancelled = true
			finaliseStats(&stats, startTime)
			return &stats, nil
		}
		span.End()
	}

	finaliseStats(&stats, startTime)
	return &stats, nil
}
