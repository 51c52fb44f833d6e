package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// errNotTerminal is returned when the dashboard is started without a TTY.
var errNotTerminal = errors.New("the dashboard needs an interactive terminal")

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive task dashboard",
	Long: `Launch the interactive terminal dashboard for taskdash.

Every registered function is listed with its queue depth and the status of
its latest invocation. Queue depths refresh on tui.refresh_interval, which
is re-read when the config file changes.

Controls:
  ↑/k, ↓/j - Select function
  Enter    - Enter arguments and run
  h        - History of the selected function
  r        - Refresh
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if !isTerminal() {
		return errNotTerminal
	}

	ports := tui.NewPorts(runner, registry, queueReporter, historyService)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app.WithContext(ctx)
	if settingsService != nil {
		app.WithRefreshInterval(settingsService.Get().RefreshInterval)
	}

	// Log lines would corrupt the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if settingsService != nil {
		go func() {
			watchErr := settingsService.Watch(ctx, func(s domain.Settings) {
				p.Send(messages.RefreshIntervalChanged{Interval: s.RefreshInterval})
			})
			if watchErr != nil {
				logger.Warn("config watch stopped: %v", watchErr)
			}
		}()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
