package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSweepInProgress is returned when a sweep is requested while one runs
	ErrSweepInProgress = errors.New("auto transition sweep already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
