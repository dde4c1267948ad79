package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/media"
	"videolab/internal/media/rawvideo"
	"videolab/internal/tracker"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var frameIndex int
	var follow int
	var csvPath string
	var maxCorners int
	var quality float64
	var minDistance float64
	var blockSize int

	cmd := &cobra.Command{
		Use:   "detect <video>",
		Short: "Detect corner features in a frame",
		Long: `Detect finds strong corners in one frame of the source and prints them as
a table, or as CSV with --csv. With --follow N the points are additionally
propagated across the next N frames by optical flow and every frame's points
are written as CSV rows; following requires tracking.enable_propagation in
the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if follow < 0 {
				return errors.New("--follow must be zero or positive")
			}
			if follow > 0 && !cfg.Tracking.EnablePropagation {
				return errors.New("--follow requires tracking.enable_propagation = true in the configuration")
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			src, err := rawvideo.OpenSource(cmd.Context(), cfg.FFmpegBinary(), cfg.FFprobeBinary(), path, cfg.Playback.FallbackFPS)
			if err != nil {
				return err
			}
			defer src.Close()

			params := tracker.DetectParams{
				MaxCorners:   cfg.Tracking.MaxCorners,
				QualityLevel: cfg.Tracking.QualityLevel,
				MinDistance:  cfg.Tracking.MinDistance,
				BlockSize:    cfg.Tracking.BlockSize,
			}
			flags := cmd.Flags()
			if flags.Changed("max-corners") {
				params.MaxCorners = maxCorners
			}
			if flags.Changed("quality") {
				params.QualityLevel = quality
			}
			if flags.Changed("min-distance") {
				params.MinDistance = minDistance
			}
			if flags.Changed("block-size") {
				params.BlockSize = blockSize
			}

			raw, err := media.ReadAt(src, frameIndex)
			if err != nil {
				return fmt.Errorf("read frame %d: %w", frameIndex, err)
			}
			points := tracker.Detect(raw, params)

			if csvPath == "" && follow == 0 {
				if len(points) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No corners detected")
					return nil
				}
				rows := make([][]string, 0, len(points))
				for _, p := range points {
					rows = append(rows, []string{
						strconv.Itoa(p.ID),
						strconv.FormatFloat(p.X, 'f', -1, 64),
						strconv.FormatFloat(p.Y, 'f', -1, 64),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "X", "Y"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight},
				))
				fmt.Fprintf(out, "%d corners on frame %d\n", len(points), frameIndex)
				return nil
			}

			var out io.Writer = cmd.OutOrStdout()
			if csvPath != "" {
				file, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("create csv file: %w", err)
				}
				defer file.Close()
				out = file
			}

			writer := tracker.NewCSVWriter(out)
			if err := writer.WritePoints(frameIndex, points); err != nil {
				return err
			}
			if follow > 0 {
				flow := tracker.FlowParams{
					Window:     cfg.Tracking.FlowWindow,
					Levels:     cfg.Tracking.FlowLevels,
					Iterations: cfg.Tracking.FlowIterations,
					Epsilon:    cfg.Tracking.FlowEpsilon,
				}
				prev := raw
				current := points
				for i := frameIndex + 1; i <= frameIndex+follow && len(current) > 0; i++ {
					next, err := src.ReadNext()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						return fmt.Errorf("read frame %d: %w", i, err)
					}
					current, err = tracker.Propagate(prev, next, current, flow)
					if err != nil {
						return err
					}
					if err := writer.WritePoints(i, current); err != nil {
						return err
					}
					prev = next
				}
			}
			return writer.Flush()
		},
	}

	cmd.Flags().IntVar(&frameIndex, "frame", 0, "Frame index to analyze")
	cmd.Flags().IntVar(&follow, "follow", 0, "Propagate points across N subsequent frames (CSV output)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write points as CSV to this file instead of a table")
	cmd.Flags().IntVar(&maxCorners, "max-corners", 0, "Override tracking.max_corners")
	cmd.Flags().Float64Var(&quality, "quality", 0, "Override tracking.quality_level")
	cmd.Flags().Float64Var(&minDistance, "min-distance", 0, "Override tracking.min_distance")
	cmd.Flags().IntVar(&blockSize, "block-size", 0, "Override tracking.block_size")
	return cmd
}
