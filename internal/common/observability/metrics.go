package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"rfq-workers/internal/common/logger"
)

// Observability records job outcomes and scoring runs through OpenTelemetry.
// The zero value drops every measurement.
type Observability struct {
	meterProvider *metric.MeterProvider
	jobs          otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	scoringRuns   otelmetric.Int64Counter
	rankedVendors otelmetric.Int64Histogram
	log           logger.Logger
}

// New exports on the default Prometheus registry, next to the promauto
// worker metrics.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("prometheus exporter unavailable, otel metrics disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return &Observability{log: log}
	}
	return newWithReader(serviceName, exporter, log)
}

func newWithReader(serviceName string, reader metric.Reader, log logger.Logger) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	o := &Observability{meterProvider: provider, log: log}
	var err error
	if o.jobs, err = meter.Int64Counter("rfq.jobs.processed",
		otelmetric.WithDescription("Jobs handled, by task type and status")); err != nil {
		o.instrumentFailed("rfq.jobs.processed", err)
	}
	if o.jobDuration, err = meter.Float64Histogram("rfq.jobs.duration",
		otelmetric.WithDescription("Job handling time"),
		otelmetric.WithUnit("ms")); err != nil {
		o.instrumentFailed("rfq.jobs.duration", err)
	}
	if o.scoringRuns, err = meter.Int64Counter("rfq.scoring.runs",
		otelmetric.WithDescription("Completed scoring runs, by whether a winner was found")); err != nil {
		o.instrumentFailed("rfq.scoring.runs", err)
	}
	if o.rankedVendors, err = meter.Int64Histogram("rfq.scoring.vendors",
		otelmetric.WithDescription("Vendors ranked per scoring run")); err != nil {
		o.instrumentFailed("rfq.scoring.vendors", err)
	}
	return o
}

func (o *Observability) instrumentFailed(name string, err error) {
	o.log.Warn("otel instrument not created", map[string]interface{}{"instrument": name, "error": err.Error()})
}

// RecordJob records one handled job.
func (o *Observability) RecordJob(ctx context.Context, taskType, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	)
	if o.jobs != nil {
		o.jobs.Add(ctx, 1, attrs)
	}
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

// RecordScoringRun records the size and outcome of one ranking.
func (o *Observability) RecordScoringRun(ctx context.Context, vendorCount int, hasWinner bool) {
	if o.scoringRuns != nil {
		o.scoringRuns.Add(ctx, 1, otelmetric.WithAttributes(attribute.Bool("winner", hasWinner)))
	}
	if o.rankedVendors != nil {
		o.rankedVendors.Record(ctx, int64(vendorCount))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.meterProvider.Shutdown(ctx); err != nil && o.log != nil {
		o.log.Warn("meter provider shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
