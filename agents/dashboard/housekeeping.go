package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"creator-dashboard/shared/scheduler"
)

// KeyPruner drops API keys nobody has used recently.
// *storage.KeyStore satisfies it.
type KeyPruner interface {
	Prune() (int, error)
	Count() int
}

// HousekeepingMetrics implements scheduler.Metrics.
type HousekeepingMetrics struct {
	SessionsRemoved int
	SessionsLive    int
	KeysRemoved     int
	KeysStored      int
}

func (m HousekeepingMetrics) GetSummary() string {
	return fmt.Sprintf("removed %d idle sessions (%d live), pruned %d API keys (%d stored)",
		m.SessionsRemoved, m.SessionsLive, m.KeysRemoved, m.KeysStored)
}

// Housekeeping sweeps idle sessions and stale keys. It implements
// scheduler.Job.
type Housekeeping struct {
	sessions *SessionStore
	keys     KeyPruner
}

func NewHousekeeping(sessions *SessionStore, keys KeyPruner) *Housekeeping {
	return &Housekeeping{sessions: sessions, keys: keys}
}

func (h *Housekeeping) Name() string {
	return "Dashboard Housekeeping"
}

func (h *Housekeeping) RunOnce(ctx context.Context, events *scheduler.JobEvents) error {
	start := time.Now()

	metrics := HousekeepingMetrics{
		SessionsRemoved: h.sessions.Sweep(),
		SessionsLive:    h.sessions.Len(),
	}

	if h.keys != nil {
		removed, err := h.keys.Prune()
		if err != nil {
			err = fmt.Errorf("failed to prune API keys: %w", err)
			if events != nil && events.OnCriticalFailure != nil {
				events.OnCriticalFailure(err, time.Since(start))
			}
			return err
		}
		metrics.KeysRemoved = removed
		metrics.KeysStored = h.keys.Count()
	}

	if metrics.SessionsRemoved > 0 || metrics.KeysRemoved > 0 {
		log.Printf("Housekeeping: %s", metrics.GetSummary())
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(start))
	}
	return nil
}
