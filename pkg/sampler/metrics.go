// MetricObserver records drawn values and draw counts as OTel metrics.
// Uses the OTel Metrics API with sampler name and label attributes.
package sampler

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricObserver records derived metrics for each observed draw.
type MetricObserver struct {
	value metric.Float64Histogram
	count metric.Int64Counter
}

// NewMetricObserver creates a MetricObserver backed by the given MeterProvider.
func NewMetricObserver(mp metric.MeterProvider) (*MetricObserver, error) {
	meter := mp.Meter("timestat")

	value, err := meter.Float64Histogram("timestat.draw.value",
		metric.WithDescription("Values drawn by numeric samplers, in the sampler's unit"),
	)
	if err != nil {
		return nil, err
	}

	count, err := meter.Int64Counter("timestat.draw.count",
		metric.WithDescription("Number of draws"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricObserver{value: value, count: count}, nil
}

// Observe records one draw. Weights draws count per label and record no value.
func (m *MetricObserver) Observe(d Draw) {
	ctx := context.Background()
	if d.Kind == KindWeights {
		m.count.Add(ctx, 1, metric.WithAttributes(
			attribute.String("sampler.name", d.Sampler),
			attribute.String("sampler.label", d.Label),
		))
		return
	}

	attrs := []attribute.KeyValue{attribute.String("sampler.name", d.Sampler)}
	if d.Unit != "" {
		attrs = append(attrs, attribute.String("sampler.unit", d.Unit))
	}
	opt := metric.WithAttributes(attrs...)
	m.count.Add(ctx, 1, opt)
	m.value.Record(ctx, d.Value, opt)
}
