package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"locationapp-backend/internal/config"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/service"
)

const JobReleaseExpiredRooms = "release-expired-rooms"

// jobTimeout bounds one run so a hung store call cannot stack ticks.
const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Availability service.AvailabilityService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Jobs lists the runnable jobs by name.
func (jr *JobRunner) Jobs() map[string]func() error {
	return map[string]func() error{
		JobReleaseExpiredRooms: jr.ReleaseExpiredRooms,
	}
}

// JobNames returns the job names in a stable order.
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, len(jr.Jobs()))
	for name := range jr.Jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs a job by name once.
func (jr *JobRunner) RunJob(name string) error {
	job, ok := jr.Jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job()
}

// ReleaseExpiredRooms flips every overdue en_location room back to libre.
// A failed run needs no retry: the next tick re-evaluates the same predicate.
func (jr *JobRunner) ReleaseExpiredRooms() error {
	return jr.runWithRecovery(JobReleaseExpiredRooms, func(ctx context.Context) error {
		ids, err := jr.services.Availability.ReleaseExpiredRooms(ctx)
		if err != nil {
			return err
		}
		logger.Info("Released expired rooms", "count", len(ids))
		return nil
	})
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return nil
}
