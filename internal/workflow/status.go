package workflow

import (
	"context"

	"videolab/internal/queue"
)

// StatusSummary is a point-in-time view of the manager and its queue.
type StatusSummary struct {
	Running   bool
	LastError string
	LastJob   *queue.Job
	Queue     queue.HealthSummary
}

// Status reports whether the manager is running, the most recent error, the
// job it last touched, and queue counters.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{Running: m.running}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.lastJob != nil {
		jobCopy := *m.lastJob
		summary.LastJob = &jobCopy
	}
	m.mu.RUnlock()

	if health, err := m.store.Health(ctx); err == nil {
		summary.Queue = health
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *queue.Job) {
	m.mu.Lock()
	if job == nil {
		m.lastJob = nil
	} else {
		jobCopy := *job
		m.lastJob = &jobCopy
	}
	m.mu.Unlock()
}
