package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/views/functions"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/views/history"
)

// DefaultRefreshInterval is how often queue depths are re-queried.
const DefaultRefreshInterval = time.Second

// App is the dashboard application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	functionsView *functions.View
	historyView   *history.View
	statusBar     *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// refreshInterval is read when each tick is scheduled.
	refreshInterval time.Duration

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new dashboard with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		keymap:          km,
		functionsView:   functions.NewView(s, ports.Registry, ports.Runner, ports.Queue, ports.History),
		historyView:     history.NewView(s, ports.History),
		statusBar:       status.NewBar(s, km),
		currentView:     messages.ViewFunctions,
		refreshInterval: DefaultRefreshInterval,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.functionsView.SetContext(ctx)
	a.historyView.SetContext(ctx)
	return a
}

// WithRefreshInterval sets the queue depth refresh interval.
func (a *App) WithRefreshInterval(d time.Duration) *App {
	if d > 0 {
		a.refreshInterval = d
	}
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("taskdash"),
		a.functionsView.Init(),
		a.tick(),
	)
}

// tick schedules the next refresh.
func (a *App) tick() tea.Cmd {
	return tea.Tick(a.refreshInterval, func(t time.Time) tea.Msg {
		return messages.RefreshTick{Time: t}
	})
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewFunctions:
			a.functionsView, cmd = a.functionsView.Update(msg)
			a.syncStatus()
			return a, cmd

		case messages.ViewHistory:
			a.historyView, cmd = a.historyView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			switch msg.String() {
			case "esc", "?":
				a.currentView = messages.ViewFunctions
				a.statusBar.SetState(status.StateReady)
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		return a, nil

	case messages.RefreshTick:
		if a.currentView == messages.ViewHistory {
			return a, tea.Batch(a.historyView.Refresh(), a.functionsView.Refresh(), a.tick())
		}
		return a, tea.Batch(a.functionsView.Refresh(), a.tick())

	case messages.RefreshIntervalChanged:
		a.WithRefreshInterval(msg.Interval)
		return a, nil

	case messages.QueueRefreshed:
		a.functionsView, cmd = a.functionsView.Update(msg)
		return a, cmd

	case messages.TaskStarted:
		a.statusBar.SetMessage(fmt.Sprintf("Running %s...", msg.Function))
		a.syncStatus()
		return a, nil

	case messages.TaskFinished:
		a.functionsView, cmd = a.functionsView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(fmt.Sprintf("%s: %v", msg.Function, msg.Err))
			return a, cmd
		}
		a.err = nil
		a.statusBar.SetMessage("")
		a.statusBar.SetState(status.StateReady)
		a.syncStatus()
		if a.currentView == messages.ViewHistory && a.historyView.Function().Name == msg.Function {
			return a, tea.Batch(cmd, a.historyView.Refresh())
		}
		return a, cmd

	case messages.FunctionSelected:
		a.currentView = messages.ViewHistory
		return a, a.historyView.SetFunction(msg.Function)

	case messages.HistoryLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewHelp {
			a.statusBar.SetState(status.StateHelp)
		} else {
			a.syncStatus()
		}
		if msg.View == messages.ViewFunctions {
			return a, a.functionsView.Refresh()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.functionsView, cmd = a.functionsView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink) to the active view.
	if a.currentView == messages.ViewFunctions {
		a.functionsView, cmd = a.functionsView.Update(msg)
	}
	return a, cmd
}

// syncStatus derives the status bar state from the function view.
func (a *App) syncStatus() {
	a.statusBar.SetRunning(a.functionsView.Running())
	switch {
	case a.functionsView.Prompting():
		a.statusBar.SetState(status.StatePrompt)
	case a.functionsView.Running() > 0:
		a.statusBar.SetState(status.StateRunning)
	case a.statusBar.State() != status.StateError:
		a.statusBar.SetState(status.StateReady)
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewFunctions:
		body = a.functionsView.View()
	case messages.ViewHistory:
		body = a.historyView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.functionsView.View()
	}
	return body + "\n\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Functions:
  j/k, ↑/↓    Select function
  enter       Enter arguments and run
  R           Rerun with the last arguments
  h           Show history
  r           Refresh queue depths
  q           Quit

Arguments:
  (type)      Space-separated values, JSON where possible
  enter       Run
  esc         Cancel

History:
  j/k, ↑/↓    Select record
  r           Refresh
  esc         Back to functions

[esc] back to functions`
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// RefreshInterval returns the current refresh interval.
func (a *App) RefreshInterval() time.Duration {
	return a.refreshInterval
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// The status bar takes the last two lines.
	a.functionsView.SetDimensions(width, height-2)
	a.historyView.SetDimensions(width, height-2)
	a.statusBar.SetWidth(width)
}
