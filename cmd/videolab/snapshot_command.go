package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/media"
	"videolab/internal/media/rawvideo"
	"videolab/internal/textutil"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	var frameIndex int
	var outputPath string
	var projectPath string
	var overlayPath string

	cmd := &cobra.Command{
		Use:   "snapshot <video>",
		Short: "Render a single frame through the pipeline and save it as an image",
		Args:  cobra.ExactArgs(1),
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
			var overlayImg image.Image
			if strings.TrimSpace(overlayPath) != "" {
				expanded, err := config.ExpandPath(overlayPath)
				if err != nil {
					return err
				}
				overlayImg, err = imaging.Open(expanded)
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

			raw, err := media.ReadAt(src, frameIndex)
			if err != nil {
				return err
			}
			out, err := snap.Apply(raw)
			if err != nil {
				return err
			}

			if strings.TrimSpace(outputPath) == "" {
				outputPath = defaultSnapshotPath(cfg, sourcePath, frameIndex)
			} else if outputPath, err = config.ExpandPath(outputPath); err != nil {
				return err
			}
			if err := saveImage(out.ToNRGBA(), outputPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved frame %d to %s\n", frameIndex, outputPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&frameIndex, "frame", 0, "Frame index to capture")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output image path (defaults into the snapshot directory)")
	cmd.Flags().StringVar(&projectPath, "project", "", "Project file with the pipeline to apply")
	cmd.Flags().StringVar(&overlayPath, "overlay", "", "Image composited by the project's overlay settings")
	return cmd
}

func defaultSnapshotPath(cfg *config.Config, sourcePath string, frameIndex int) string {
	base := filepath.Base(sourcePath)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "snapshot"
	}
	return filepath.Join(cfg.Paths.SnapshotDir, fmt.Sprintf("%s_frame_%06d.png", stem, frameIndex))
}

// saveImage picks the encoder from the file extension: png, jpg, or webp.
func saveImage(img *image.NRGBA, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(95))
	case "webp":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := webp.Encode(file, img, &webp.Options{Quality: 90}); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	default:
		return fmt.Errorf("unsupported image extension %q (use png, jpg, or webp)", filepath.Ext(path))
	}
}
