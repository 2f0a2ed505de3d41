package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"creator-dashboard/shared/monitoring"
)

type testMetrics string

func (m testMetrics) GetSummary() string { return string(m) }

type testJob struct {
	err     error
	runs    int
	metrics Metrics
}

func (j *testJob) Name() string { return "Test Job" }

func (j *testJob) RunOnce(ctx context.Context, events *JobEvents) error {
	j.runs++
	if j.err != nil {
		return j.err
	}
	events.OnSuccess(j.metrics, time.Millisecond)
	return nil
}

func TestRunOnceSuccess(t *testing.T) {
	monitor := monitoring.NewMonitor()
	job := &testJob{metrics: testMetrics("pruned 2 sessions")}
	s := New("@every 1h", monitor, job)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if job.runs != 1 {
		t.Errorf("runs = %d, want 1", job.runs)
	}
	if !monitor.IsHealthy() {
		t.Error("monitor should be healthy after success")
	}
}

func TestRunOnceFailure(t *testing.T) {
	monitor := monitoring.NewMonitor()
	job := &testJob{err: errors.New("write failed")}
	s := New("@every 1h", monitor, job)

	err := s.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, job.err) {
		t.Errorf("error should wrap the job error, got %v", err)
	}
	if monitor.IsHealthy() {
		t.Error("monitor should be unhealthy after a failed run")
	}
}

func TestStartInvalidSchedule(t *testing.T) {
	s := New("not a schedule", monitoring.NewMonitor(), &testJob{})

	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	s := New("@every 1h", monitoring.NewMonitor(), &testJob{metrics: testMetrics("ok")})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
