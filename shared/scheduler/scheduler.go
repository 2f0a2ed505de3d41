package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"creator-dashboard/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Metrics defines the common interface for job metrics
type Metrics interface {
	// GetSummary returns a human-readable summary of the run
	GetSummary() string
}

// JobEvents provides callbacks for monitoring job execution
type JobEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Job is a background task run on a cron schedule.
type Job interface {
	Name() string
	RunOnce(ctx context.Context, events *JobEvents) error
}

// Scheduler runs one job on a schedule and reports to a monitor.
type Scheduler struct {
	schedule string
	monitor  *monitoring.Monitor
	job      Job
	cron     *cron.Cron
}

func New(schedule string, monitor *monitoring.Monitor, job Job) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		monitor:  monitor,
		job:      job,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("Error running scheduled job for %s: %v", s.job.Name(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	log.Printf("Scheduler started for %s with schedule: %s", s.job.Name(), s.schedule)
	s.cron.Start()

	<-ctx.Done()
	log.Printf("Scheduler stopped for %s", s.job.Name())
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	jobName := s.job.Name()

	events := &JobEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", jobName, err), duration)
		},
	}

	if err := s.job.RunOnce(ctx, events); err != nil {
		duration := time.Since(startTime)
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", jobName, err), duration)
		return fmt.Errorf("%s run failed: %w", jobName, err)
	}

	return nil
}
