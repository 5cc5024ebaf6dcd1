// Package telemetry wraps OpenTelemetry tracing and RED metrics for batch
// issuance and certificate verification. A nil *Provider is a valid,
// no-op value, so pkg/batch can accept one optionally without becoming
// telemetry-aware itself. pkg/certificate does not take a Provider.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls Provider construction. An empty OTLPEndpoint means
// telemetry is disabled and New returns a nil, error-free *Provider.
type Config struct {
	ServiceName  string
	IssuerID     string
	OTLPEndpoint string
	Insecure     bool
	BatchTimeout time.Duration
}

// Provider holds the tracer/meter and the counters and histograms recorded
// across batch issuance and certificate verification.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter

	assertionsPerBatch   metric.Int64Histogram
	treeBuildDuration    metric.Float64Histogram
	certsVerified        metric.Int64Counter
	verificationFailures metric.Int64Counter
}

// New constructs a Provider exporting traces and metrics over OTLP gRPC. If
// cfg.OTLPEndpoint is empty, New returns (nil, nil): telemetry is disabled
// and every method on *Provider below is safe to call on that nil value.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.OTLPEndpoint == "" {
		return nil, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceInstanceID(cfg.IssuerID),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp, err := initTraceProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("telemetry: init trace provider: %w", err)
	}
	mp, err := initMetricProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("telemetry: init metric provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	p := &Provider{
		tracerProvider: tp,
		meterProvider:  mp,
		tracer:         tp.Tracer("mtc"),
		meter:          mp.Meter("mtc"),
	}
	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("telemetry: init metrics: %w", err)
	}
	return p, nil
}

func initTraceProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 5 * time.Second
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
	), nil
}

func initMetricProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}

func (p *Provider) initMetrics() error {
	var err error

	p.assertionsPerBatch, err = p.meter.Int64Histogram("mtc.batch.assertions",
		metric.WithDescription("number of assertions issued in a batch"))
	if err != nil {
		return err
	}
	p.treeBuildDuration, err = p.meter.Float64Histogram("mtc.batch.tree_build_duration",
		metric.WithDescription("merkle tree build duration"), metric.WithUnit("s"))
	if err != nil {
		return err
	}
	p.certsVerified, err = p.meter.Int64Counter("mtc.certificate.verified",
		metric.WithDescription("certificates successfully verified"))
	if err != nil {
		return err
	}
	p.verificationFailures, err = p.meter.Int64Counter("mtc.certificate.verification_failures",
		metric.WithDescription("certificate verification failures, by kind"))
	if err != nil {
		return err
	}
	return nil
}

// Shutdown flushes and closes the exporters. Safe to call on a nil Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	return p.meterProvider.Shutdown(ctx)
}

// StartBatchSpan starts a span covering the issuance of batchNumber,
// returning a context carrying it and a completion closure that ends the
// span and records assertion count and build duration. Safe to call on a
// nil Provider: it returns ctx unchanged and a no-op closure.
func (p *Provider) StartBatchSpan(ctx context.Context, batchNumber uint32) (context.Context, func(assertionCount int, buildDuration time.Duration)) {
	if p == nil {
		return ctx, func(int, time.Duration) {}
	}

	spanCtx, span := p.tracer.Start(ctx, "mtc.batch.issue",
		trace.WithAttributes(semconv.ServiceInstanceID(fmt.Sprintf("batch-%d", batchNumber))))

	return spanCtx, func(assertionCount int, buildDuration time.Duration) {
		p.assertionsPerBatch.Record(spanCtx, int64(assertionCount))
		p.treeBuildDuration.Record(spanCtx, buildDuration.Seconds())
		span.End()
	}
}

// RecordVerification records the outcome of one certificate verification.
// kind is empty on success, or a short failure category ("expired",
// "future", "bad-path", "bad-signature", ...) otherwise. Safe to call on a
// nil Provider.
func (p *Provider) RecordVerification(ctx context.Context, kind string) {
	if p == nil {
		return
	}
	if kind == "" {
		p.certsVerified.Add(ctx, 1)
		return
	}
	p.verificationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
