package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/project"
)

func newMarkerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "marker",
		Short:       "Manage frame markers in a project file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newMarkerAddCommand())
	cmd.AddCommand(newMarkerListCommand())
	cmd.AddCommand(newMarkerClearCommand())
	return cmd
}

func newMarkerAddCommand() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "add <frame> [name]",
		Short: "Label a frame in the project",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frameIndex, err := strconv.Atoi(args[0])
			if err != nil || frameIndex < 0 {
				return fmt.Errorf("frame index %q must be a non-negative integer", args[0])
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			path, proj, err := loadMarkerProject(projectPath)
			if err != nil {
				return err
			}
			m := proj.AddMarker(frameIndex, name)
			if err := proj.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added marker %q at frame %d\n", m.Name, m.Frame)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "Project file to modify")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newMarkerListCommand() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the project's markers in frame order",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proj, err := loadMarkerProject(projectPath)
			if err != nil {
				return err
			}
			markers := proj.SortedMarkers()
			if len(markers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No markers set.")
				return nil
			}
			rows := make([][]string, 0, len(markers))
			for _, m := range markers {
				rows = append(rows, []string{strconv.Itoa(m.Frame), m.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Frame", "Name"},
				rows,
				[]columnAlignment{alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "Project file to read")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newMarkerClearCommand() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every marker from the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, proj, err := loadMarkerProject(projectPath)
			if err != nil {
				return err
			}
			count := len(proj.Markers)
			proj.ClearMarkers()
			if err := proj.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d markers\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "Project file to modify")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func loadMarkerProject(projectPath string) (string, *project.Project, error) {
	if strings.TrimSpace(projectPath) == "" {
		return "", nil, fmt.Errorf("a project file is required")
	}
	path, err := config.ExpandPath(projectPath)
	if err != nil {
		return "", nil, err
	}
	proj, err := project.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, proj, nil
}
