// Package cli provides the cobra command tree for taskdash.
// It is a driving adapter: commands call core services through driving ports.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// version is set at build time.
var version = "dev"

// verbose enables debug output for all commands.
var verbose bool

// Worker consumes submitted tasks until its context is cancelled.
type Worker interface {
	Run(ctx context.Context) error
}

// Services bundles the ports the commands drive.
type Services struct {
	Runner   driving.TaskRunner
	Registry driving.FunctionRegistry
	Queue    driving.QueueReporter
	History  driving.HistoryService
	Settings driving.SettingsService

	// Worker is nil unless the configured substrate has a separate worker.
	Worker Worker
}

// Services used by commands. Nil until Configure is called.
var (
	runner          driving.TaskRunner
	registry        driving.FunctionRegistry
	queueReporter   driving.QueueReporter
	historyService  driving.HistoryService
	settingsService driving.SettingsService
	worker          Worker
)

// errNotConfigured is returned by commands run before Configure.
var errNotConfigured = errors.New("services not configured")

// Factory builds the services for a command that needs them. The returned
// func releases what the factory opened.
type Factory func(ctx context.Context) (Services, func(), error)

var (
	factory Factory
	release func()
)

// withoutServices marks a command that runs without the factory.
const withoutServices = "taskdash.without-services"

var rootCmd = &cobra.Command{
	Use:   "taskdash",
	Short: "Run cached, single-flight tasks from the terminal",
	Long: `taskdash runs registered functions with per-function single-flight
locking, caches successful results by their arguments and keeps an audit
history of every invocation.

Functions run on a local goroutine pool or on asynq workers through Redis.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return buildServices(cmd)
	},
}

// buildServices runs the factory once, on the first command that needs it.
func buildServices(cmd *cobra.Command) error {
	if factory == nil || runner != nil || !needsServices(cmd) {
		return nil
	}

	s, closeFn, err := factory(cmd.Context())
	if err != nil {
		return err
	}
	Configure(s)
	release = closeFn
	return nil
}

func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[withoutServices]; ok || c.Name() == "completion" {
			return false
		}
	}
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	return true
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Configure injects the services used by commands.
func Configure(s Services) {
	runner = s.Runner
	registry = s.Registry
	queueReporter = s.Queue
	historyService = s.History
	settingsService = s.Settings
	worker = s.Worker
}

// SetFactory installs the builder used by commands that need services.
// Services passed to Configure take precedence.
func SetFactory(f Factory) {
	factory = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases any services it built.
func Execute(ctx context.Context) error {
	defer func() {
		if release != nil {
			release()
			release = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
