package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/goto/salt/log"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/contrib/samplers/probability/consistent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"google.golang.org/grpc/encoding/gzip"
)

type OpenTelemetryConfig struct {
	Enabled                bool          `yaml:"enabled" mapstructure:"enabled" default:"false"`
	CollectorAddr          string        `yaml:"collector_addr" mapstructure:"collector_addr" default:"localhost:4317"`
	PeriodicReadInterval   time.Duration `yaml:"periodic_read_interval" mapstructure:"periodic_read_interval" default:"1s"`
	TraceSampleProbability float64       `yaml:"trace_sample_probability" mapstructure:"trace_sample_probability" default:"1"`
}

// traversalBuckets are the boundaries, in milliseconds, of the lineage
// traversal duration histogram.
var traversalBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

type provider interface {
	Shutdown(ctx context.Context) error
}

func initOTLP(ctx context.Context, cfg Config, logger log.Logger) (func(), error) {
	otlpCfg := cfg.OpenTelemetry
	if !otlpCfg.Enabled {
		logger.Info("OpenTelemetry monitoring is disabled.")
		return noOp, nil
	}
	if p := otlpCfg.TraceSampleProbability; p < 0 || p > 1 {
		return nil, fmt.Errorf("init otlp: trace sample probability %v out of range [0, 1]", p)
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithOS(),
		resource.WithHost(),
		resource.WithProcess(),
		resource.WithProcessRuntimeName(),
		resource.WithProcessRuntimeVersion(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.AppName),
			semconv.ServiceVersion(cfg.AppVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("init otlp: create resource: %w", err)
	}

	var providers []provider
	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
		defer cancel()
		for i := len(providers) - 1; i >= 0; i-- {
			if err := providers[i].Shutdown(shutdownCtx); err != nil {
				logger.Error("otlp provider failed to shutdown", "err", err)
			}
		}
	}

	mp, err := newMeterProvider(ctx, res, otlpCfg)
	if err != nil {
		return nil, err
	}
	providers = append(providers, mp)
	otel.SetMeterProvider(mp)

	tp, err := newTracerProvider(ctx, res, otlpCfg)
	if err != nil {
		shutdown()
		return nil, err
	}
	providers = append(providers, tp)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	if err := host.Start(); err != nil {
		shutdown()
		return nil, fmt.Errorf("init otlp: start host instrumentation: %w", err)
	}
	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(otlpCfg.PeriodicReadInterval)); err != nil {
		shutdown()
		return nil, fmt.Errorf("init otlp: start runtime instrumentation: %w", err)
	}

	logger.Info("OpenTelemetry monitoring is enabled", "collector", otlpCfg.CollectorAddr)
	return shutdown, nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, cfg OpenTelemetryConfig) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.CollectorAddr),
		otlpmetricgrpc.WithCompressor(gzip.Name),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("init otlp: create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.PeriodicReadInterval))),
		sdkmetric.WithResource(res),
		sdkmetric.WithView(traversalDurationView()),
	), nil
}

func traversalDurationView() sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: "lineage.traversal.duration"},
		sdkmetric.Stream{Aggregation: aggregation.ExplicitBucketHistogram{Boundaries: traversalBuckets}},
	)
}

func newTracerProvider(ctx context.Context, res *resource.Resource, cfg OpenTelemetryConfig) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(cfg.CollectorAddr),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithCompressor(gzip.Name),
	))
	if err != nil {
		return nil, fmt.Errorf("init otlp: create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(consistent.ProbabilityBased(cfg.TraceSampleProbability)),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	), nil
}

func noOp() {}
