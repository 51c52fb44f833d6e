package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/taskdash/internal/logger"
	"github.com/custodia-labs/taskdash/internal/telemetry"
)

var (
	workerMetrics         bool
	workerMetricsInterval time.Duration
)

// errNoWorker is returned when the configured substrate runs tasks in-process.
var errNoWorker = errors.New("no worker for this substrate: set substrate.driver = \"asynq\"")

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process submitted tasks",
	Long: `Starts a worker that consumes tasks from the asynq queue and runs them
through the executor, writing each attempt to the history store.

Runs until interrupted. Only available with substrate.driver = "asynq".`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().BoolVar(&workerMetrics, "metrics", false, "periodically print metrics to stdout")
	workerCmd.Flags().DurationVar(&workerMetricsInterval, "metrics-interval",
		telemetry.DefaultExportInterval, "how often metrics are printed")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if worker == nil {
		return errNoWorker
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if workerMetrics {
		_, shutdown, err := telemetry.SetupStdout(cmd.OutOrStdout(), workerMetricsInterval)
		if err != nil {
			return fmt.Errorf("setting up metrics: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("flushing metrics: %v", err)
			}
		}()
	}

	cmd.Println("Worker started. Press Ctrl+C to stop.")
	if err := worker.Run(ctx); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	logger.Info("worker stopped")
	return nil
}
