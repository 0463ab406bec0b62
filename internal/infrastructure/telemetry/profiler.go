package telemetry

import (
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Profiler runs Pyroscope continuous profiling
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
}

// StartProfiler starts CPU, heap and goroutine profiling when enabled
func StartProfiler(cfg config.TelemetryConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.ProfilingEnabled {
		return p, nil
	}
	if cfg.ProfilingServer == "" {
		return nil, fmt.Errorf("telemetry.profiling_server is required when profiling is enabled")
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.ProfilingServer,
		Logger:          pyroscopeLogger{logger.Sugar()},
		Tags:            tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	p.profiler = profiler
	logger.Info("Continuous profiling started", zap.String("server", cfg.ProfilingServer))
	return p, nil
}

// IsRunning reports whether profiles are being sent
func (p *Profiler) IsRunning() bool {
	return p.profiler != nil
}

// Stop flushes and stops the profiler
func (p *Profiler) Stop() error {
	if p.profiler == nil {
		return nil
	}
	err := p.profiler.Stop()
	p.profiler = nil
	return err
}

// pyroscopeLogger adapts zap to pyroscope.Logger
type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
