package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"videolab/internal/logging"
	"videolab/internal/media"
	"videolab/internal/pipeline"
)

// Outcome summarizes an export run, successful or not.
type Outcome struct {
	// FramesWritten counts frames the sink accepted.
	FramesWritten int
	// LastIndex is the index of the last frame successfully written, or -1
	// when none were.
	LastIndex int
	// Completed reports whether the whole source was exported.
	Completed bool
}

// ProgressFunc receives the fraction of the source processed so far,
// in [0, 1).
type ProgressFunc func(fraction float64)

// Driver streams a source through a pipeline snapshot into a sink, frame by
// frame and strictly in order.
type Driver struct {
	logger *slog.Logger
}

func NewDriver(logger *slog.Logger) *Driver {
	return &Driver{logger: logging.NewComponentLogger(logger, "export")}
}

// Run exports every frame of src. The snapshot is fixed for the whole run,
// so edits made mid-export never bleed into the output. On failure the
// returned Outcome still reports how far the run got; the last written frame
// index is the resume point. Cancellation is checked between frames.
func (d *Driver) Run(ctx context.Context, src media.Source, snap *pipeline.Snapshot, sink media.Sink, progress ProgressFunc) (Outcome, error) {
	outcome := Outcome{LastIndex: -1}
	info := src.Info()
	count := info.FrameCount

	d.logger.Info("export run started",
		logging.Int("frame_count", count),
		logging.Int("width", info.Width),
		logging.Int("height", info.Height),
	)

	if err := src.Seek(0); err != nil {
		return outcome, fmt.Errorf("seek to start: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Warn("export run canceled",
				logging.Int("frames_written", outcome.FramesWritten))
			return outcome, ctx.Err()
		default:
		}

		raw, err := src.ReadNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.logger.Warn("export read failed",
				logging.Int("frame", outcome.LastIndex+1),
				logging.Error(err))
			return outcome, fmt.Errorf("decode frame %d: %w", outcome.LastIndex+1, err)
		}

		rendered, err := snap.Apply(raw)
		if err != nil {
			d.logger.Warn("export render failed",
				logging.Int("frame", raw.Index),
				logging.Error(err))
			return outcome, fmt.Errorf("render frame %d: %w", raw.Index, err)
		}

		if err := sink.Write(rendered); err != nil {
			d.logger.Warn("export write failed",
				logging.Int("frame", raw.Index),
				logging.Error(err))
			return outcome, fmt.Errorf("write frame %d: %w", raw.Index, err)
		}

		outcome.FramesWritten++
		outcome.LastIndex = raw.Index
		if progress != nil && count > 0 {
			progress(float64(raw.Index) / float64(count))
		}
	}

	outcome.Completed = true
	d.logger.Info("export run finished",
		logging.Int("frames_written", outcome.FramesWritten))
	return outcome, nil
}
