package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"videolab/internal/geometry"
)

func newCropRectCommand() *cobra.Command {
	var width int
	var height int
	var aspect string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "crop-rect",
		Short:       "Compute the largest centered crop of an aspect ratio that fits a frame",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("--width and --height must be positive (got %dx%d)", width, height)
			}
			ratioW, ratioH, err := geometry.ParseAspect(aspect)
			if err != nil {
				return err
			}
			x, y, w, h := geometry.AspectRect(width, height, ratioW, ratioH)

			if jsonOutput {
				return writeJSON(cmd, map[string]int{"x": x, "y": y, "width": w, "height": h})
			}
			rows := [][]string{
				{"X", strconv.Itoa(x)},
				{"Y", strconv.Itoa(y)},
				{"Width", strconv.Itoa(w)},
				{"Height", strconv.Itoa(h)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Frame width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Frame height in pixels")
	cmd.Flags().StringVar(&aspect, "aspect", "16:9", "Target aspect ratio as W:H")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the rectangle as JSON")
	return cmd
}
