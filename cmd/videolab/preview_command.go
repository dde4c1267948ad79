package main

import (
	"fmt"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/frame"
	"videolab/internal/logging"
	"videolab/internal/media/rawvideo"
	"videolab/internal/pipeline"
	"videolab/internal/playback"
	"videolab/internal/tracker"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var projectPath string
	var startFrame int
	var maxFrames int

	cmd := &cobra.Command{
		Use:   "preview <video>",
		Short: "Play the source through the pipeline without a display",
		Long: `Preview decodes the source and renders each frame through the project's
pipeline at the source frame rate, reporting the effective render rate at
the end. It is a dry run of playback: no window opens and no file is
written. Stops at the last frame, after --frames frames, or on Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sourcePath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			proj, err := loadProjectOrDefault(projectPath)
			if err != nil {
				return err
			}
			state := pipeline.NewState()
			if err := proj.ApplyTo(state); err != nil {
				return err
			}

			src, err := rawvideo.OpenSource(cmd.Context(), cfg.FFmpegBinary(), cfg.FFprobeBinary(), sourcePath, cfg.Playback.FallbackFPS)
			if err != nil {
				return err
			}
			defer src.Close()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			controller := playback.New(src, state, cfg, logger)
			if startFrame > 0 {
				if _, err := controller.Seek(startFrame); err != nil {
					return fmt.Errorf("seek to frame %d: %w", startFrame, err)
				}
			}

			signalCtx, stopSignals := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stopSignals()

			var rendered atomic.Int64
			var once sync.Once
			budgetDone := make(chan struct{})
			controller.SetPreview(func(_ *frame.Frame, _ int, _ []tracker.Point) {
				if n := rendered.Add(1); maxFrames > 0 && n >= int64(maxFrames) {
					once.Do(func() { close(budgetDone) })
				}
			})

			started := time.Now()
			controller.Play()

			// The controller stops itself at the last frame; poll for that
			// alongside the cancellation paths.
			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
		wait:
			for {
				select {
				case <-signalCtx.Done():
					break wait
				case <-budgetDone:
					break wait
				case <-ticker.C:
					if controller.Status() == playback.StatusStopped {
						break wait
					}
				}
			}
			controller.Pause()
			elapsed := time.Since(started)

			count := rendered.Load()
			effective := 0.0
			if count > 0 && elapsed > 0 {
				effective = float64(count) / elapsed.Seconds()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d frames in %s (%.1f fps, source %.3f fps), playhead at frame %d\n",
				count, elapsed.Round(time.Millisecond), effective, controller.FPS(), controller.Current())
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "Project file with the pipeline to apply")
	cmd.Flags().IntVar(&startFrame, "start", 0, "Frame index to start from")
	cmd.Flags().IntVar(&maxFrames, "frames", 0, "Stop after rendering this many frames (0 plays to the end)")
	return cmd
}
