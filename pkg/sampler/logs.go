// LogObserver derives log records from rare draws.
// Emits WARN-severity logs for draws whose tail probability is at or below a threshold.
package sampler

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/log"
)

// LogObserver emits log records for draws in the far tail.
type LogObserver struct {
	logger log.Logger
	tail   float64
}

// NewLogObserver creates a LogObserver that emits logs via the given LoggerProvider.
// A draw is logged when its Tail is at most tail; a tail of 0 disables logging.
func NewLogObserver(lp log.LoggerProvider, tail float64) *LogObserver {
	return &LogObserver{
		logger: lp.Logger("timestat"),
		tail:   tail,
	}
}

// Observe emits a record when the draw is rarer than the threshold.
func (l *LogObserver) Observe(d Draw) {
	if l.tail <= 0 || d.Tail > l.tail {
		return
	}

	attrs := []log.KeyValue{
		log.String("sampler.name", d.Sampler),
		log.String("sampler.kind", d.Kind.String()),
		log.Float64("draw.tail", d.Tail),
		log.Int64("draw.seq", d.Seq),
	}

	var body string
	if d.Kind == KindWeights {
		attrs = append(attrs, log.String("sampler.label", d.Label))
		body = fmt.Sprintf("rare label %q from %s (p=%.4g)", d.Label, d.Sampler, d.Tail)
	} else {
		attrs = append(attrs, log.Float64("draw.value", d.Value))
		value := strconv.FormatFloat(d.Value, 'g', 6, 64) + d.Unit
		body = fmt.Sprintf("tail draw %s from %s (P(X > x)=%.4g, threshold %.4g)", value, d.Sampler, d.Tail, l.tail)
	}

	var rec log.Record
	rec.SetSeverity(log.SeverityWarn)
	rec.SetSeverityText("WARN")
	rec.SetBody(log.StringValue(body))
	rec.AddAttributes(attrs...)
	l.logger.Emit(context.Background(), rec)
}
