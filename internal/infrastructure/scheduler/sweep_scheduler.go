package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	apporder "github.com/tungtungsport/storefront/internal/application/order"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const maxRetryDelay = 5 * time.Minute

// Sweeper applies due auto transitions
type Sweeper interface {
	Sweep(ctx context.Context) (apporder.SweepResult, error)
}

// SweepSchedulerConfig holds the sweep scheduler settings
type SweepSchedulerConfig struct {
	Interval      time.Duration
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	MaxHistory    int
}

// NewSweepSchedulerConfig builds the scheduler settings from application config
func NewSweepSchedulerConfig(cfg config.SchedulerConfig) SweepSchedulerConfig {
	return SweepSchedulerConfig{
		Interval:      cfg.SweepInterval,
		JobTimeout:    cfg.JobTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		MaxHistory:    50,
	}
}

// Validate validates the configuration
func (c SweepSchedulerConfig) Validate() error {
	if c.Interval <= 0 || c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || (c.RetryAttempts > 0 && c.RetryDelay <= 0) {
		return ErrInvalidConfig
	}
	return nil
}

// SweepScheduler runs the auto transition sweep on a fixed interval and on
// demand. At most one sweep runs at a time.
type SweepScheduler struct {
	config  SweepSchedulerConfig
	sweeper Sweeper
	metrics *telemetry.PromMetrics
	logger  *zap.Logger
	now     func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	sweeping  bool

	historyMu sync.RWMutex
	history   []*SweepRun
}

// NewSweepScheduler creates a new sweep scheduler. metrics may be nil.
func NewSweepScheduler(cfg SweepSchedulerConfig, sweeper Sweeper, metrics *telemetry.PromMetrics, logger *zap.Logger) (*SweepScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepScheduler{
		config:  cfg,
		sweeper: sweeper,
		metrics: metrics,
		logger:  logger.Named("sweep_scheduler"),
		now:     time.Now,
		history: make([]*SweepRun, 0, cfg.MaxHistory),
	}, nil
}

// Start starts the ticker loop. The first sweep runs immediately so orders
// that came due while the service was down are caught up.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Auto transition scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop stops the loop and waits for a running sweep to finish
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Auto transition scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Auto transition scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the ticker loop is active
func (s *SweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *SweepScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	s.runFromLoop(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runFromLoop(ctx)
		}
	}
}

func (s *SweepScheduler) runFromLoop(ctx context.Context) {
	if _, err := s.run(ctx, TriggerTicker); err != nil && !errors.Is(err, ErrSweepInProgress) {
		s.logger.Error("Auto transition sweep failed", zap.Error(err))
	}
}

// RunNow sweeps immediately and returns the finished run
func (s *SweepScheduler) RunNow(ctx context.Context) (*SweepRun, error) {
	if !s.IsRunning() {
		return nil, ErrSchedulerNotRunning
	}
	return s.run(ctx, TriggerManual)
}

// run executes one sweep with retries. Retries back off exponentially and
// stop early when ctx is cancelled.
func (s *SweepScheduler) run(ctx context.Context, trigger RunTrigger) (*SweepRun, error) {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		return nil, ErrSweepInProgress
	}
	s.sweeping = true
	s.mu.Unlock()

	run, err := s.sweepWithRetry(ctx, trigger)

	s.mu.Lock()
	s.sweeping = false
	s.mu.Unlock()

	s.record(run)
	return run, err
}

func (s *SweepScheduler) sweepWithRetry(ctx context.Context, trigger RunTrigger) (*SweepRun, error) {
	run := newSweepRun(trigger, s.now())
	for {
		run.Attempts++
		result, err := s.attempt(ctx)
		if err == nil {
			run.complete(result, s.now())
			return run, nil
		}
		if run.Attempts > s.config.RetryAttempts || ctx.Err() != nil {
			run.fail(err, s.now())
			return run, err
		}

		delay := retryDelay(s.config.RetryDelay, run.Attempts, maxRetryDelay)
		s.logger.Warn("Auto transition sweep failed, retrying",
			zap.String("run_id", run.ID.String()),
			zap.Int("attempt", run.Attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			run.fail(err, s.now())
			return run, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *SweepScheduler) attempt(ctx context.Context) (apporder.SweepResult, error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	return s.sweeper.Sweep(jobCtx)
}

func (s *SweepScheduler) record(run *SweepRun) {
	if s.metrics != nil {
		s.metrics.SweepRuns.WithLabelValues(string(run.Status)).Inc()
		if run.Result.Arrived > 0 {
			s.metrics.AutoTransitions.WithLabelValues("ARRIVED").Add(float64(run.Result.Arrived))
		}
		if run.Result.Completed > 0 {
			s.metrics.AutoTransitions.WithLabelValues("COMPLETED").Add(float64(run.Result.Completed))
		}
	}

	s.logger.Debug("Auto transition sweep recorded",
		zap.String("run_id", run.ID.String()),
		zap.String("trigger", string(run.Trigger)),
		zap.String("status", string(run.Status)),
		zap.Int("attempts", run.Attempts),
		zap.Duration("duration", run.Duration()),
	)

	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	if len(s.history) >= s.config.MaxHistory {
		s.history = s.history[1:]
	}
	s.history = append(s.history, run)
}

// History returns the most recent runs, newest first
func (s *SweepScheduler) History(limit int) []SweepRun {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	runs := make([]SweepRun, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, *s.history[i])
	}
	return runs
}

// LastRun returns the most recent run
func (s *SweepScheduler) LastRun() (SweepRun, bool) {
	runs := s.History(1)
	if len(runs) == 0 {
		return SweepRun{}, false
	}
	return runs[0], true
}
