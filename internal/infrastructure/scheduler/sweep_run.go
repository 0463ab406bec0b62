package scheduler

import (
	"time"

	"github.com/google/uuid"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
)

// RunStatus is the status of a sweep run
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusPartial RunStatus = "PARTIAL"
	RunStatusFailed  RunStatus = "FAILED"
)

// RunTrigger tells what started a sweep
type RunTrigger string

const (
	TriggerTicker RunTrigger = "TICKER"
	TriggerManual RunTrigger = "MANUAL"
)

// SweepRun records one execution of the auto transition sweep
type SweepRun struct {
	ID          uuid.UUID
	Trigger     RunTrigger
	Status      RunStatus
	Attempts    int
	Result      apporder.SweepResult
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

func newSweepRun(trigger RunTrigger, now time.Time) *SweepRun {
	return &SweepRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		Status:    RunStatusRunning,
		StartedAt: now,
	}
}

// complete records the result. Orders that failed to persist make the run
// partial; lost optimistic-lock races do not.
func (r *SweepRun) complete(result apporder.SweepResult, now time.Time) {
	r.Result = result
	r.CompletedAt = &now
	r.Error = ""
	if result.Failed > 0 {
		r.Status = RunStatusPartial
		return
	}
	r.Status = RunStatusSuccess
}

func (r *SweepRun) fail(err error, now time.Time) {
	r.Status = RunStatusFailed
	r.Error = err.Error()
	r.CompletedAt = &now
}

// Duration returns how long the run took
func (r *SweepRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// retryDelay doubles base for every attempt already made, capped at max
func retryDelay(base time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base * time.Duration(1<<(attempt-1))
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}
