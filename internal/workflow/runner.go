package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"videolab/internal/config"
	"videolab/internal/export"
	"videolab/internal/fileutil"
	"videolab/internal/logging"
	"videolab/internal/media"
	"videolab/internal/media/rawvideo"
	"videolab/internal/pipeline"
	"videolab/internal/project"
	"videolab/internal/queue"
	"videolab/internal/services"
)

// JobRunner executes one claimed job and reports how far the export got.
type JobRunner interface {
	Run(ctx context.Context, job *queue.Job, progress export.ProgressFunc) (export.Outcome, error)
}

// exportRunner is the production runner. It compiles the job's project into
// a pipeline snapshot, decodes the source with ffmpeg, streams rendered
// frames into the requested sink, and for video jobs publishes the finished
// container from a staging file to the job's output path.
type exportRunner struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newExportRunner(cfg *config.Config, logger *slog.Logger) *exportRunner {
	return &exportRunner{cfg: cfg, logger: logging.NewComponentLogger(logger, "export-runner")}
}

func (r *exportRunner) Run(ctx context.Context, job *queue.Job, progress export.ProgressFunc) (export.Outcome, error) {
	snap, err := r.loadSnapshot(job)
	if err != nil {
		return export.Outcome{LastIndex: -1}, err
	}

	src, err := rawvideo.OpenSource(ctx, r.cfg.FFmpegBinary(), r.cfg.FFprobeBinary(), job.SourcePath, r.cfg.Playback.FallbackFPS)
	if err != nil {
		return export.Outcome{LastIndex: -1}, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	sink, staging, err := r.openSink(ctx, job, src.Info(), snap)
	if err != nil {
		return export.Outcome{LastIndex: -1}, err
	}

	outcome, runErr := export.NewDriver(r.logger).Run(ctx, src, snap, sink, progress)

	closeErr := sink.Close()
	if runErr == nil {
		runErr = closeErr
	} else if closeErr != nil {
		r.logger.Warn("sink close failed after export error", logging.Error(closeErr))
	}

	if staging == "" {
		return outcome, runErr
	}
	if runErr != nil {
		if err := os.Remove(staging); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("failed to remove staging file", logging.Error(err), logging.String("path", staging))
		}
		return outcome, runErr
	}
	if err := r.publish(staging, job.OutputPath); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// loadSnapshot compiles the job's project, or default parameters when the
// job carries no project file.
func (r *exportRunner) loadSnapshot(job *queue.Job) (*pipeline.Snapshot, error) {
	proj := project.New()
	if strings.TrimSpace(job.ProjectPath) != "" {
		loaded, err := project.Load(job.ProjectPath)
		if err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
		proj = loaded
	}
	snap, err := proj.Compile(nil)
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}
	return snap, nil
}

// openSink builds the output sink for the job. Video jobs encode into a
// staging file next to the other outputs so a failed run never leaves a
// truncated container at the destination; the second return value is that
// staging path, empty for sequence jobs which write directly.
func (r *exportRunner) openSink(ctx context.Context, job *queue.Job, info media.SourceInfo, snap *pipeline.Snapshot) (media.Sink, string, error) {
	switch job.Kind {
	case queue.KindSequence:
		sink, err := export.NewSequenceSink(job.OutputPath, job.Format)
		if err != nil {
			return nil, "", err
		}
		return sink, "", nil
	case queue.KindVideo:
		width, height := snap.OutputSize(info.Width, info.Height)
		staging := filepath.Join(r.cfg.Paths.OutputDir, fmt.Sprintf(".export-job-%d.%s", job.ID, job.Format))
		enc, err := rawvideo.NewEncoder(ctx, r.cfg.FFmpegBinary(), staging, rawvideo.EncodeOptions{
			Width:   width,
			Height:  height,
			FPS:     info.FPS,
			Format:  job.Format,
			Quality: job.Quality,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open encoder: %w", err)
		}
		return enc, staging, nil
	default:
		return nil, "", services.Wrap(services.ErrValidation, "workflow", "open sink",
			fmt.Sprintf("unknown job kind %q", job.Kind), nil)
	}
}

// publish moves the finished container from staging to the final output
// path, verifying the copy before removing the staging file.
func (r *exportRunner) publish(staging, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := fileutil.CopyFileVerified(staging, outputPath); err != nil {
		return fmt.Errorf("publish output: %w", err)
	}
	if err := os.Remove(staging); err != nil {
		r.logger.Warn("failed to remove staging file", logging.Error(err), logging.String("path", staging))
	}
	return nil
}
