package asynq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hibiken/asynq"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// Worker consumes the queue and runs each task through the executor.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	executor driving.TaskExecutor
}

// NewWorker creates a worker with a handler per registered function.
func NewWorker(config Config, registry driving.FunctionRegistry, executor driving.TaskExecutor) *Worker {
	config = config.withDefaults()

	w := &Worker{
		mux:      asynq.NewServeMux(),
		executor: executor,
	}
	for _, fn := range registry.List() {
		w.mux.HandleFunc(fn.Name, w.ProcessTask)
	}

	w.server = asynq.NewServer(config.redisOpt(), asynq.Config{
		Concurrency: config.Concurrency,
		Queues:      map[string]int{config.Queue: 1},
		Logger:      asynqLogger{},
		LogLevel:    asynq.WarnLevel,
	})
	return w
}

// Run processes tasks until ctx is cancelled, then shuts down gracefully.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("starting worker: %w", err)
	}
	logger.Info("worker started")

	<-ctx.Done()
	w.server.Shutdown()
	logger.Info("worker stopped")
	return nil
}

// ProcessTask decodes the argument tuple, invokes the function and writes
// its payload as the task result. Failures are never retried.
func (w *Worker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var args []any
	if err := json.Unmarshal(task.Payload(), &args); err != nil {
		return fmt.Errorf("%w: %v: %w", domain.ErrArgumentEncoding, err, asynq.SkipRetry)
	}

	outcome, err := w.executor.Invoke(ctx, task.Type(), args)
	if err != nil {
		return fmt.Errorf("%s: %w", failureText(err), asynq.SkipRetry)
	}
	if outcome.Warning != nil {
		logger.Warn("%s: %v", task.Type(), outcome.Warning)
	}

	if rw := task.ResultWriter(); rw != nil {
		payload, err := encodeResult(outcome)
		if err != nil {
			return fmt.Errorf("encoding result of %s: %w: %w", task.Type(), err, asynq.SkipRetry)
		}
		if _, err := rw.Write(payload); err != nil {
			return fmt.Errorf("writing result of %s: %w", task.Type(), err)
		}
	}
	return nil
}

// failureText is the message the submitting side reports. A user function
// error is passed through as-is.
func failureText(err error) string {
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Message
	}
	return err.Error()
}

// asynqLogger routes asynq's logs through the application logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug("%s", fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { logger.Info("%s", fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { logger.Warn("%s", fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { logger.Error("%s", fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) {
	logger.Error("%s", fmt.Sprint(args...))
	os.Exit(1)
}
