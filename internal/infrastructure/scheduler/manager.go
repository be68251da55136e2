// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"nomadly/internal/shared/logger"
)

// Job is one scheduled maintenance task.
type Job interface {
	Execute(ctx context.Context) error
}

// SchedulerManager runs the background jobs on a single gocron instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterRegistrationRetryJob schedules the incomplete-registration sweep.
// Singleton mode keeps overlapping sweeps from double-processing an order.
func (m *SchedulerManager) RegisterRegistrationRetryJob(job Job, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := job.Execute(ctx); err != nil {
				m.logger.Errorw("registration retry sweep failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("registration", "retry"),
		gocron.WithName("registration-retry"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered registration retry job", "interval", interval.String())
	return nil
}

// Start begins executing registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started")
}

// Stop shuts the scheduler down and waits for running jobs.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}
	if err := m.scheduler.Shutdown(); err != nil {
		return err
	}
	m.started = false
	m.logger.Infow("scheduler stopped")
	return nil
}
