// Package telemetry configures OpenTelemetry tracing and metrics and owns the
// instruments recorded by the stock and sale paths.
package telemetry

import (
	"context"
	"errors"
	"time"

	"go-pos-ws/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "go-pos-ws"

type ShutdownFunc func(context.Context) error

// Instruments are shared by the services.
type Instruments struct {
	Tracer         trace.Tracer
	commits        metric.Int64Counter
	commitDuration metric.Float64Histogram
	adjustments    metric.Int64Counter
	unitsSold      metric.Int64Counter
}

// Setup installs OTLP/HTTP providers when enabled. Otherwise the global noop
// providers stay in place and the returned shutdown does nothing.
func Setup(ctx context.Context, cfg *config.Config) (*Instruments, ShutdownFunc, error) {
	if !cfg.OtelEnabled {
		inst, err := NewInstruments(otel.GetTracerProvider().Tracer(instrumentationName), otel.GetMeterProvider().Meter(instrumentationName))
		return inst, func(context.Context) error { return nil }, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp, err := initTracer(ctx, cfg.OtelEndpoint, res)
	if err != nil {
		return nil, nil, err
	}
	mp, err := initMetrics(ctx, cfg.OtelEndpoint, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}

	inst, err := NewInstruments(tp.Tracer(instrumentationName), mp.Meter(instrumentationName))
	if err != nil {
		return nil, nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	return inst, shutdown, nil
}

func initTracer(ctx context.Context, endpoint string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tp)
	return tp, nil
}

func initMetrics(ctx context.Context, endpoint string, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

func NewInstruments(tracer trace.Tracer, meter metric.Meter) (*Instruments, error) {
	commits, err := meter.Int64Counter("pos.transactions.commits",
		metric.WithDescription("Transaction commit attempts by outcome"))
	if err != nil {
		return nil, err
	}
	commitDuration, err := meter.Float64Histogram("pos.transactions.commit_duration",
		metric.WithDescription("Transaction commit latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	adjustments, err := meter.Int64Counter("pos.stock.adjustments",
		metric.WithDescription("Stock adjustments by type and outcome"))
	if err != nil {
		return nil, err
	}
	unitsSold, err := meter.Int64Counter("pos.stock.units_sold",
		metric.WithDescription("Units decremented by committed sales"))
	if err != nil {
		return nil, err
	}
	return &Instruments{
		Tracer:         tracer,
		commits:        commits,
		commitDuration: commitDuration,
		adjustments:    adjustments,
		unitsSold:      unitsSold,
	}, nil
}

// Noop returns instruments that record nothing.
func Noop() *Instruments {
	inst, _ := NewInstruments(tracenoop.NewTracerProvider().Tracer(instrumentationName), metricnoop.NewMeterProvider().Meter(instrumentationName))
	return inst
}

func (i *Instruments) RecordCommit(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	i.commits.Add(ctx, 1, attrs)
	i.commitDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

func (i *Instruments) RecordUnitsSold(ctx context.Context, units int) {
	i.unitsSold.Add(ctx, int64(units))
}

func (i *Instruments) RecordAdjustment(ctx context.Context, adjustmentType, outcome string) {
	i.adjustments.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", adjustmentType),
		attribute.String("outcome", outcome),
	))
}
