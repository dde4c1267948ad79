package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"videolab/internal/config"
	"videolab/internal/logging"
	"videolab/internal/queue"
)

// Worker hosts a Manager behind a file lock so at most one worker processes
// a given queue. The lock lives in the log directory, next to the queue
// database it guards.
type Worker struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	manager *Manager

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewWorker builds a worker around an existing manager and store.
func NewWorker(cfg *config.Config, store *queue.Store, logger *slog.Logger, manager *Manager) (*Worker, error) {
	if cfg == nil || store == nil || manager == nil {
		return nil, errors.New("worker requires configuration, store, and manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "videolab-worker.lock")
	return &Worker{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "worker"),
		manager:  manager,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// LockPath returns the path of the single-instance lock file.
func (w *Worker) LockPath() string { return w.lockPath }

// Start acquires the instance lock and launches the manager. It fails when
// another worker already holds the lock.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker already running")
	}

	locked, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire worker lock: %w", err)
	}
	if !locked {
		return errors.New("another videolab worker is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := w.manager.Start(runCtx); err != nil {
		cancel()
		if unlockErr := w.lock.Unlock(); unlockErr != nil {
			w.logger.Warn("failed to release worker lock", logging.Error(unlockErr))
		}
		return err
	}

	w.cancel = cancel
	w.running = true
	w.logger.Info("worker started",
		logging.String("queue_db", w.store.Path()),
		logging.String("lock", w.lockPath),
	)
	return nil
}

// Stop shuts the manager down, waits for the in-flight job to be released,
// and drops the instance lock.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.manager.Stop()
	if err := w.lock.Unlock(); err != nil {
		w.logger.Warn("failed to release worker lock", logging.Error(err))
	}
	w.logger.Info("worker stopped")
}

// Status reports the hosted manager's status.
func (w *Worker) Status(ctx context.Context) StatusSummary {
	return w.manager.Status(ctx)
}
