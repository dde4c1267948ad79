package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"videolab/internal/logging"
	"videolab/internal/preflight"
	"videolab/internal/queue"
	"videolab/internal/workflow"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the export queue worker",
	}
	workerCmd.AddCommand(newWorkerRunCommand(ctx))
	return workerCmd
}

func newWorkerRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process queued export jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			out := cmd.OutOrStdout()
			results := preflight.RunAll(signalCtx, cfg)
			renderPreflight(out, results, shouldColorize(out))
			if !preflight.Passed(results) {
				return errors.New("environment checks failed; resolve the issues above and retry")
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			manager, err := workflow.NewManager(cfg, store, logger)
			if err != nil {
				return err
			}
			worker, err := workflow.NewWorker(cfg, store, logger, manager)
			if err != nil {
				return err
			}
			if err := worker.Start(signalCtx); err != nil {
				return err
			}

			fmt.Fprintf(out, "Worker running (queue: %s). Press Ctrl-C to stop.\n", store.Path())
			<-signalCtx.Done()
			worker.Stop()
			logger.Info("videolab worker shutting down")
			return nil
		},
	}
}
