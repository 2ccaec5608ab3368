package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	predictionCounter  otelmetric.Int64Counter
	predictionDuration otelmetric.Float64Histogram
}

// New registers the otel exporter with the default Prometheus registry.
func New(serviceName string) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
}

func NewWithRegisterer(serviceName string, reg promclient.Registerer) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	predictionCounter, _ := meter.Int64Counter(
		"predictions_processed",
		otelmetric.WithDescription("Number of prediction requests processed"),
	)

	predictionDuration, _ := meter.Float64Histogram(
		"predictions_duration",
		otelmetric.WithDescription("Prediction processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		predictionCounter:  predictionCounter,
		predictionDuration: predictionDuration,
	}
}

func (o *Observability) RecordPrediction(ctx context.Context, status string) {
	if o == nil || o.predictionCounter == nil {
		return
	}
	o.predictionCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordPredictionDuration(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.predictionDuration == nil {
		return
	}
	o.predictionDuration.Record(ctx, float64(duration.Microseconds())/1000, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
