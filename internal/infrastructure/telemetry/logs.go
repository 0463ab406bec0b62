package telemetry

import (
	"context"
	"fmt"

	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider exports zap entries as OpenTelemetry log records
type LoggerProvider struct {
	provider    *sdklog.LoggerProvider
	serviceName string
	logger      *zap.Logger
}

// NewLoggerProvider ships logs over OTLP/gRPC when LogsEnabled is set
func NewLoggerProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{serviceName: cfg.ServiceName, logger: logger}
	if !cfg.LogsEnabled {
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.provider)
	logger.Info("OTLP logs initialized", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return lp, nil
}

// IsEnabled reports whether logs are exported
func (lp *LoggerProvider) IsEnabled() bool {
	return lp.provider != nil
}

// Bridge returns base teed into the OTLP exporter for entries at or above
// level. With export disabled base is returned unchanged.
func (lp *LoggerProvider) Bridge(base *zap.Logger, level zapcore.Level) *zap.Logger {
	if lp.provider == nil {
		return base
	}
	otelCore := otelzap.NewCore(lp.serviceName, otelzap.WithLoggerProvider(lp.provider))
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, &levelCore{Core: otelCore, min: level})
	}))
}

// Shutdown flushes and stops the provider
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := lp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown logger provider: %w", err)
	}
	return nil
}

// levelCore drops entries below min; otelzap has no level of its own
type levelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *levelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *levelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), min: c.min}
}
