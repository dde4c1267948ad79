package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/preflight"
	"videolab/internal/project"
	"videolab/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the export job queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var kindValue string
	var format string
	var quality int
	var projectPath string

	cmd := &cobra.Command{
		Use:   "add <video>",
		Short: "Enqueue an export job for the worker",
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
			info, err := os.Stat(sourcePath)
			if err != nil {
				return fmt.Errorf("source file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source %s is a directory", sourcePath)
			}

			kind, ok := queue.ParseKind(kindValue)
			if !ok {
				return fmt.Errorf("unknown export kind %q (use video or sequence)", kindValue)
			}
			if format == "" {
				if kind == queue.KindSequence {
					format = cfg.Export.SequenceFormat
				} else {
					format = cfg.Export.Format
				}
			}
			if !cmd.Flags().Changed("quality") {
				quality = cfg.Export.Quality
			}

			if strings.TrimSpace(projectPath) != "" {
				if projectPath, err = config.ExpandPath(projectPath); err != nil {
					return err
				}
				// Validate up front so a bad project fails at enqueue time,
				// not minutes later inside the worker.
				if _, err := project.Load(projectPath); err != nil {
					return err
				}
			}

			if strings.TrimSpace(outputPath) == "" {
				outputPath = defaultExportPath(cfg, sourcePath, format, kind == queue.KindSequence)
			} else if outputPath, err = config.ExpandPath(outputPath); err != nil {
				return err
			}

			return ctx.withStore(func(store *queue.Store) error {
				job, err := store.NewJob(cmd.Context(), queue.JobSpec{
					SourcePath:  sourcePath,
					ProjectPath: projectPath,
					OutputPath:  outputPath,
					Kind:        kind,
					Format:      format,
					Quality:     quality,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added job %d (%s) -> %s\n", job.ID, job.DisplayTitle, job.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (defaults into the configured output directory)")
	cmd.Flags().StringVar(&kindValue, "kind", string(queue.KindVideo), "Export kind: video or sequence")
	cmd.Flags().StringVar(&format, "format", "", "Container or image format (defaults from configuration)")
	cmd.Flags().IntVar(&quality, "quality", 0, "Encoder CRF for video exports")
	cmd.Flags().StringVar(&projectPath, "project", "", "Project file applied during the export")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List export jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, statusStr := range listStatuses {
				status, ok := queue.ParseStatus(statusStr)
				if !ok {
					return fmt.Errorf("unknown status %q", statusStr)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						strconv.FormatInt(job.ID, 10),
						job.DisplayTitle,
						string(job.Status),
						formatJobProgress(job),
						job.CreatedAt.Local().Format(time.RFC3339),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Status", "Progress", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	return cmd
}

// formatJobProgress condenses the three progress columns into one cell.
func formatJobProgress(job *queue.Job) string {
	switch job.Status {
	case queue.StatusPending:
		return "-"
	case queue.StatusFailed:
		if job.ErrorMessage != "" {
			return job.ErrorMessage
		}
		return "failed"
	}
	if job.ProgressMessage != "" {
		return fmt.Sprintf("%.0f%% (%s)", job.ProgressPercent, job.ProgressMessage)
	}
	if job.ProgressStage != "" {
		return fmt.Sprintf("%.0f%% (%s)", job.ProgressPercent, job.ProgressStage)
	}
	return fmt.Sprintf("%.0f%%", job.ProgressPercent)
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counts and environment checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				renderSectionHeader(out, "Queue")
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Count"},
					[][]string{
						{"Pending", strconv.Itoa(health.Pending)},
						{"Processing", strconv.Itoa(health.Processing)},
						{"Completed", strconv.Itoa(health.Completed)},
						{"Failed", strconv.Itoa(health.Failed)},
						{"Total", strconv.Itoa(health.Total)},
					},
					[]columnAlignment{alignLeft, alignRight},
				))

				renderSectionHeader(out, "Environment")
				renderPreflight(out, preflight.RunAll(cmd.Context(), cfg), shouldColorize(out))
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [jobID...]",
		Short: "Retry failed export jobs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid job id %q", arg)
				}
				ids = append(ids, id)
			}

			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					updated, err := store.RetryFailed(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Retried %d failed jobs\n", updated)
					return nil
				}

				for _, id := range ids {
					job, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if job == nil {
						fmt.Fprintf(out, "Job %d not found\n", id)
						continue
					}
					if job.Status != queue.StatusFailed {
						fmt.Fprintf(out, "Job %d is not in failed state\n", id)
						continue
					}
					updated, err := store.RetryFailed(cmd.Context(), id)
					if err != nil {
						return err
					}
					if updated > 0 {
						fmt.Fprintf(out, "Job %d reset for retry\n", id)
					} else {
						fmt.Fprintf(out, "Job %d is not in failed state\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <jobID>",
		Short: "Delete a job from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withStore(func(store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("job %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job %d\n", id)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove export jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				var removed int64
				var err error
				switch {
				case clearCompleted:
					removed, err = store.ClearCompleted(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d completed jobs\n", removed)
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d failed jobs\n", removed)
				default:
					removed, err = store.Clear(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d jobs\n", removed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed jobs")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed jobs")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue database health (schema, integrity, columns)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database path: %s\n", health.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Schema version: %s\n", health.SchemaVersion)
				fmt.Fprintf(out, "export_jobs table present: %s\n", yesNo(health.TableExists))
				if len(health.ColumnsPresent) > 0 {
					cols := append([]string(nil), health.ColumnsPresent...)
					sort.Strings(cols)
					fmt.Fprintf(out, "Columns: %s\n", strings.Join(cols, ", "))
				}
				if len(health.MissingColumns) > 0 {
					missing := append([]string(nil), health.MissingColumns...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
				} else {
					fmt.Fprintln(out, "Missing columns: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Total jobs: %d\n", health.TotalJobs)
				if health.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", health.Error)
				}
				return err
			})
		},
	}
}
