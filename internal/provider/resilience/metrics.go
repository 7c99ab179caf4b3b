package resilience

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/veloair/veloair/internal/provider/resilience"

// providerMetrics holds the OpenTelemetry instruments for upstream calls.
// Instrument creation only fails on invalid names, so errors are swallowed
// and the affected instrument stays nil.
type providerMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

func newProviderMetrics() *providerMetrics {
	meter := otel.Meter(meterName)

	requestDuration, _ := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	requestTotal, _ := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)

	return &providerMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}
}

// record registers one completed provider attempt. A background context is
// used so a cancelled request still gets counted.
func (m *providerMetrics) record(provider string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	ctx := context.Background()
	if m.requestDuration != nil {
		m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	if m.requestTotal != nil {
		m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
