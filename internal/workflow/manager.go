package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"videolab/internal/config"
	"videolab/internal/logging"
	"videolab/internal/queue"
)

// Manager claims pending export jobs from the store and runs them
// sequentially. Jobs carry their own pipeline configuration, so one manager
// never needs per-job state beyond the job row itself.
type Manager struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	runner    JobRunner
	heartbeat *HeartbeatMonitor

	pollInterval time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// NewManager builds a manager with the production export runner.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Manager, error) {
	return NewManagerWithRunner(cfg, store, logger, newExportRunner(cfg, logger))
}

// NewManagerWithRunner builds a manager around an explicit runner. Tests use
// this to substitute job execution while keeping the claim, heartbeat, and
// status bookkeeping real.
func NewManagerWithRunner(cfg *config.Config, store *queue.Store, logger *slog.Logger, runner JobRunner) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow manager requires configuration")
	}
	if store == nil {
		return nil, errors.New("workflow manager requires queue store")
	}
	if runner == nil {
		return nil, errors.New("workflow manager requires job runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "workflow")
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		runner:       runner,
		heartbeat:    NewHeartbeatMonitor(store, logger, cfg.HeartbeatInterval(), cfg.HeartbeatTimeout()),
		pollInterval: cfg.QueuePollInterval(),
	}, nil
}

// Start begins background processing. Jobs left in processing by a previous
// worker are reset to pending before the loop starts so they run again.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}

	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.mu.Unlock()
		return err
	} else if reset > 0 {
		m.logger.Info("reset jobs stuck in processing", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight job to
// be released.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStale(ctx); err != nil {
			m.logger.Warn("reclaim stale processing failed; stuck jobs may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}

		job, err := m.store.Claim(ctx)
		if err != nil {
			m.handleClaimError(ctx, err)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx)
			continue
		}

		if err := m.processJob(ctx, job); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) handleClaimError(ctx context.Context, err error) {
	m.setLastError(err)
	m.logger.Error("failed to claim next job",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_claim_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	m.waitForJobOrShutdown(ctx)
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}
