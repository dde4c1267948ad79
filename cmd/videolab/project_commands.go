package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/project"
)

func newProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "project",
		Short:       "Create and inspect project files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newProjectInitCommand())
	cmd.AddCommand(newProjectShowCommand())
	return cmd
}

func newProjectInitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write a new project file with default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !overwrite {
				return fmt.Errorf("project file already exists at %s (use --overwrite to replace it)", path)
			}
			if err := project.New().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project file at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing project file")
	return cmd
}

func newProjectShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a project's pipeline, placement, and markers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			proj, err := project.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			renderSectionHeader(out, "Effects Pipeline")
			if len(proj.Effects) == 0 {
				fmt.Fprintln(out, "No effects configured.")
			} else {
				rows := make([][]string, 0, len(proj.Effects))
				for i, ref := range proj.Effects {
					rows = append(rows, []string{strconv.Itoa(i), ref.Type, yesNo(ref.Enabled)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Type", "Enabled"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
			}

			renderSectionHeader(out, "Placement")
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Overlay position", fmt.Sprintf("(%d, %d)", proj.Overlay.X, proj.Overlay.Y)},
					{"Overlay opacity", strconv.FormatFloat(proj.Overlay.Opacity, 'f', 2, 64)},
					{"Overlay scale", strconv.FormatFloat(proj.Overlay.Scale, 'f', 2, 64)},
					{"Crop rectangle", fmt.Sprintf("(%d, %d, %d, %d)", proj.Crop.X, proj.Crop.Y, proj.Crop.W, proj.Crop.H)},
					{"Crop enabled", yesNo(proj.Crop.Enabled)},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))

			renderSectionHeader(out, "Parameters")
			params := proj.Parameters
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Canny thresholds", fmt.Sprintf("%d / %d", params.CannyLow, params.CannyHigh)},
					{"Blur kernel", strconv.Itoa(params.BlurKernel)},
					{"Blur sigma", strconv.FormatFloat(params.BlurSigma, 'f', 2, 64)},
					{"Brightness", strconv.FormatFloat(params.Brightness, 'f', 2, 64)},
					{"Contrast", strconv.FormatFloat(params.Contrast, 'f', 2, 64)},
					{"Text content", params.TextContent},
					{"Text size", strconv.Itoa(params.TextSize)},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))

			renderSectionHeader(out, "Markers")
			markers := proj.SortedMarkers()
			if len(markers) == 0 {
				fmt.Fprintln(out, "No markers set.")
				return nil
			}
			rows := make([][]string, 0, len(markers))
			for _, m := range markers {
				rows = append(rows, []string{strconv.Itoa(m.Frame), m.Name})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Frame", "Name"},
				rows,
				[]columnAlignment{alignRight, alignLeft},
			))
			return nil
		},
	}
}
