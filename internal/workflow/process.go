package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"videolab/internal/export"
	"videolab/internal/logging"
	"videolab/internal/queue"
	"videolab/internal/services"
)

// processJob runs one claimed job to a terminal status. The returned error
// is context.Canceled when the worker shut down mid-job; the run loop exits
// on that, all other errors only mark the job failed.
func (m *Manager) processJob(ctx context.Context, job *queue.Job) error {
	runID := uuid.NewString()
	jobCtx := services.WithRunID(services.WithJobID(ctx, job.ID), runID)
	logger := m.logger.With(
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldRunID, runID),
		logging.String("title", job.DisplayTitle),
	)

	m.setLastJob(job)
	job.SetProgress("Exporting", "starting", 0)
	if err := m.store.Update(jobCtx, job); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist job start", logging.Error(err))
		return err
	}

	started := time.Now()
	logger.Info("export started",
		logging.String(logging.FieldEventType, "export_started"),
		logging.String("source", job.SourcePath),
		logging.String("output", job.OutputPath),
		logging.String("kind", string(job.Kind)),
		logging.String("format", job.Format),
	)

	hbCtx, stopHeartbeat := context.WithCancel(jobCtx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)

	outcome, runErr := m.runner.Run(jobCtx, job, m.progressFunc(jobCtx, job, logger))

	stopHeartbeat()
	hbWG.Wait()

	if runErr != nil {
		interrupted := errors.Is(runErr, context.Canceled)
		if interrupted {
			job.SetFailed(queue.WorkerStopReason)
		} else {
			job.SetFailed(failureMessage(outcome, runErr))
		}
		m.setLastError(runErr)
		m.setLastJob(job)

		// jobCtx is dead when the worker is shutting down; the terminal
		// status still has to land in the store.
		updateCtx := jobCtx
		if interrupted {
			updateCtx = context.Background()
		}
		if err := m.store.Update(updateCtx, job); err != nil {
			logger.Error("failed to persist job failure", logging.Error(err))
		}
		if interrupted {
			logger.Info("export interrupted by shutdown",
				logging.Int("frames_written", outcome.FramesWritten))
			return runErr
		}
		logger.Error("export failed",
			logging.Error(runErr),
			logging.String(logging.FieldEventType, "export_failure"),
			logging.String(logging.FieldErrorHint, "check source file and output destination"),
			logging.Int("frames_written", outcome.FramesWritten),
			logging.Int("last_index", outcome.LastIndex),
		)
		return runErr
	}

	job.SetCompleted(fmt.Sprintf("Exported %d frames", outcome.FramesWritten))
	m.setLastJob(job)
	if err := m.store.Update(jobCtx, job); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist job completion", logging.Error(err))
		return err
	}

	logger.Info("export completed",
		logging.String(logging.FieldEventType, "export_complete"),
		logging.Int("frames_written", outcome.FramesWritten),
		logging.Duration("export_duration", time.Since(started)),
	)
	return nil
}

// progressFunc adapts driver progress callbacks into queue updates, writing
// at most one row per whole percent so tight frame loops do not hammer the
// database.
func (m *Manager) progressFunc(ctx context.Context, job *queue.Job, logger *slog.Logger) export.ProgressFunc {
	lastPercent := -1
	return func(fraction float64) {
		percent := int(fraction * 100)
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		job.SetProgress("Exporting", fmt.Sprintf("%d%% complete", percent), float64(percent))
		if err := m.store.Update(ctx, job); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("progress update failed", logging.Error(err))
		}
	}
}

func failureMessage(outcome export.Outcome, err error) string {
	if outcome.LastIndex >= 0 {
		return fmt.Sprintf("%s (last good frame %d)", err, outcome.LastIndex)
	}
	return err.Error()
}
