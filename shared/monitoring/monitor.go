package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

type Monitor struct {
	mu             sync.Mutex
	lastRunSuccess bool
	lastRunTime    time.Time
	actionFailures map[string]int
	lastFailure    string
}

func NewMonitor() *Monitor {
	return &Monitor{actionFailures: make(map[string]int)}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.mu.Unlock()

	log.Printf("Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.mu.Unlock()

	log.Printf("CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

// RecordActionFailure counts a failed user action. These are reported to
// the user and do not affect health.
func (m *Monitor) RecordActionFailure(action string, err error) {
	m.mu.Lock()
	m.actionFailures[action]++
	m.lastFailure = fmt.Sprintf("%s: %v", action, err)
	m.mu.Unlock()

	log.Printf("Action %s failed: %v", action, err)
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return true // no housekeeping run yet
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var run string
	switch {
	case m.lastRunTime.IsZero():
		run = "No runs yet"
	case m.lastRunSuccess:
		run = fmt.Sprintf("Last run: %s", m.lastRunTime.Format("Jan 2 15:04"))
	default:
		run = fmt.Sprintf("Last run failed: %s", m.lastRunTime.Format("Jan 2 15:04"))
	}

	total := 0
	for _, n := range m.actionFailures {
		total += n
	}
	if total == 0 {
		return run
	}
	return fmt.Sprintf("%s; %d failed actions (last: %s)", run, total, m.lastFailure)
}
