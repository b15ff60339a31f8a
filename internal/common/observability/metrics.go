package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability records claim run metrics through OpenTelemetry and opens
// spans on the globally registered tracer provider.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	tracer        trace.Tracer
	runCounter    otelmetric.Int64Counter
	runDuration   otelmetric.Float64Histogram
}

// New registers a Prometheus-backed meter provider. When the exporter cannot
// be created the returned value still opens spans but drops measurements.
func New(serviceName string) (*Observability, error) {
	o := &Observability{tracer: otel.Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		return o, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o.meterProvider = provider
	o.meter = provider.Meter(serviceName)

	o.runCounter, _ = o.meter.Int64Counter(
		"claims.runs",
		otelmetric.WithDescription("Number of claim pipeline runs"),
	)
	o.runDuration, _ = o.meter.Float64Histogram(
		"claims.run.duration",
		otelmetric.WithDescription("Claim pipeline run duration"),
		otelmetric.WithUnit("ms"),
	)

	return o, nil
}

// NewNoop is used by tests and by callers that do not export metrics.
func NewNoop() *Observability {
	return &Observability{tracer: otel.Tracer("noop")}
}

// StartSpan opens a span for one pipeline stage.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordRun(ctx context.Context, intent, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	)
	if o.runCounter != nil {
		o.runCounter.Add(ctx, 1, attrs)
	}
	if o.runDuration != nil {
		o.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
