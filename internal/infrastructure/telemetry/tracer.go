package telemetry

import (
	"context"
	"fmt"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerProvider owns the global OpenTelemetry tracer provider
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
	cfg      config.TelemetryConfig
}

// NewTracerProvider exports spans over OTLP/gRPC. With telemetry disabled the
// global no-op provider stays in place.
func NewTracerProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{logger: logger, cfg: cfg}
	if !cfg.Enabled {
		logger.Info("Tracing disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	tp.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
	)
	tp.install()

	logger.Info("Tracing initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return tp, nil
}

// NewTracerProviderWithExporter builds a provider around a caller supplied
// span processor, used by tests with an in-memory recorder
func NewTracerProviderWithExporter(processor sdktrace.SpanProcessor, logger *zap.Logger) *TracerProvider {
	tp := &TracerProvider{
		provider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(processor)),
		logger:   logger,
		cfg:      config.TelemetryConfig{Enabled: true, SamplingRatio: 1},
	}
	tp.install()
	return tp
}

func (tp *TracerProvider) install() {
	var provider trace.TracerProvider = tp.provider
	if tp.cfg.ProfilingEnabled && tp.cfg.SpanProfiles {
		// tags CPU samples with the active span id
		provider = otelpyroscope.NewTracerProvider(tp.provider)
	}
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// Tracer returns a named tracer
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.provider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.provider.Tracer(name, opts...)
}

// IsEnabled reports whether spans are exported
func (tp *TracerProvider) IsEnabled() bool {
	return tp.provider != nil
}

// ForceFlush exports pending spans
func (tp *TracerProvider) ForceFlush(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	return tp.provider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	tp.logger.Info("Tracing shutdown complete")
	return nil
}
