package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/export"
	"videolab/internal/logging"
	"videolab/internal/media"
	"videolab/internal/media/rawvideo"
	"videolab/internal/project"
	"videolab/internal/textutil"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var format string
	var quality int
	var sequence bool
	var projectPath string
	var overlayPath string

	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Run the pipeline over every frame and write the result",
		Long: `Export decodes the source, applies the project's effects, overlay, and
crop to every frame in order, and writes either a single video container
(mp4, mov, avi) or a numbered image sequence (png, jpg, webp) with
--sequence. Without --project the default parameters apply, which leaves
frames untouched.`,
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

			if format == "" {
				if sequence {
					format = cfg.Export.SequenceFormat
				} else {
					format = cfg.Export.Format
				}
			}
			format = strings.ToLower(strings.TrimSpace(format))
			if !cmd.Flags().Changed("quality") {
				quality = cfg.Export.Quality
			}

			proj, err := loadProjectOrDefault(projectPath)
			if err != nil {
				return err
			}
			var overlayImg image.Image
			if overlayPath != "" {
				overlayImg, err = imaging.Open(overlayPath)
				if err != nil {
					return fmt.Errorf("load overlay image: %w", err)
				}
			}
			snap, err := proj.Compile(overlayImg)
			if err != nil {
				return err
			}

			src, err := rawvideo.OpenSource(cmd.Context(), cfg.FFmpegBinary(), cfg.FFprobeBinary(), sourcePath, cfg.Playback.FallbackFPS)
			if err != nil {
				return err
			}
			defer src.Close()
			info := src.Info()

			if outputPath == "" {
				outputPath = defaultExportPath(cfg, sourcePath, format, sequence)
			} else if outputPath, err = config.ExpandPath(outputPath); err != nil {
				return err
			}

			var sink media.Sink
			if sequence {
				sink, err = export.NewSequenceSink(outputPath, format)
			} else {
				width, height := snap.OutputSize(info.Width, info.Height)
				sink, err = rawvideo.NewEncoder(cmd.Context(), cfg.FFmpegBinary(), outputPath, rawvideo.EncodeOptions{
					Width:   width,
					Height:  height,
					FPS:     info.FPS,
					Format:  format,
					Quality: quality,
				})
			}
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			bar := newExportBar(cmd, info.FrameCount)
			progress := func(fraction float64) {
				if bar != nil {
					_ = bar.Set(int(fraction*float64(info.FrameCount) + 0.5))
				}
			}

			started := time.Now()
			outcome, runErr := export.NewDriver(logger).Run(cmd.Context(), src, snap, sink, progress)
			closeErr := sink.Close()
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if runErr != nil {
				if outcome.LastIndex >= 0 {
					return fmt.Errorf("%w (last good frame %d)", runErr, outcome.LastIndex)
				}
				return runErr
			}
			if closeErr != nil {
				return closeErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d frames to %s in %s\n",
				outcome.FramesWritten, outputPath, time.Since(started).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (or directory with --sequence)")
	cmd.Flags().StringVar(&format, "format", "", "Container or image format (video: mp4, mov, avi; sequence: png, jpg, webp)")
	cmd.Flags().IntVar(&quality, "quality", 0, "CRF quality, 0-51, lower is better")
	cmd.Flags().BoolVar(&sequence, "sequence", false, "Write a numbered image sequence instead of a video file")
	cmd.Flags().StringVar(&projectPath, "project", "", "Project file with the pipeline to apply")
	cmd.Flags().StringVar(&overlayPath, "overlay", "", "Overlay image composited per the project placement")
	return cmd
}

// loadProjectOrDefault loads the project file when given, or returns default
// parameters so a bare export is a frame-true copy.
func loadProjectOrDefault(path string) (*project.Project, error) {
	if strings.TrimSpace(path) == "" {
		return project.New(), nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return project.Load(expanded)
}

func defaultExportPath(cfg *config.Config, sourcePath, format string, sequence bool) string {
	stem := textutil.SanitizeFileName(strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath)))
	if stem == "" {
		stem = "export"
	}
	if sequence {
		return filepath.Join(cfg.Paths.OutputDir, stem+"_frames")
	}
	return filepath.Join(cfg.Paths.OutputDir, fmt.Sprintf("%s_export.%s", stem, format))
}

// newExportBar builds a frame-count progress bar on stderr, or nil when
// stderr is not a terminal so piped output stays clean.
func newExportBar(cmd *cobra.Command, frameCount int) *progressbar.ProgressBar {
	if frameCount <= 0 {
		return nil
	}
	if file, ok := cmd.ErrOrStderr().(*os.File); !ok || !shouldColorize(file) {
		return nil
	}
	return progressbar.NewOptions(frameCount,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Exporting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{Saucer: "=", SaucerHead: ">", SaucerPadding: " ", BarStart: "[", BarEnd: "]"}),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}
