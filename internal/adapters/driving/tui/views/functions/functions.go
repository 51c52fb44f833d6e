// Package functions provides the function list view, the dashboard's home.
package functions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
)

// errNoServices is reported when the view was built without its ports.
var errNoServices = errors.New("dashboard services not available")

// View lists registered functions with their queue depth and the status of
// their latest invocation, and runs them with typed arguments.
type View struct {
	styles   *styles.Styles
	registry driving.FunctionRegistry
	runner   driving.TaskRunner
	queue    driving.QueueReporter
	history  driving.HistoryService
	ctx      context.Context

	functions []domain.Function
	depths    map[string]int
	latest    map[string]domain.TaskStatus
	results   map[string]string
	failures  map[string]string
	lastArgs  map[string][]any
	input     *input.ArgsInput
	prompting bool
	selected  int
	running   int
	width     int
	height    int
	err       error
}

// NewView creates a new function list view.
func NewView(
	s *styles.Styles,
	registry driving.FunctionRegistry,
	runner driving.TaskRunner,
	queue driving.QueueReporter,
	history driving.HistoryService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	v := &View{
		styles:   s,
		registry: registry,
		runner:   runner,
		queue:    queue,
		history:  history,
		ctx:      context.Background(),
		depths:   make(map[string]int),
		latest:   make(map[string]domain.TaskStatus),
		results:  make(map[string]string),
		failures: make(map[string]string),
		lastArgs: make(map[string][]any),
		input:    input.NewArgsInput(s),
		width:    80,
		height:   24,
	}
	if registry != nil {
		v.functions = registry.List()
	}
	return v
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads queue depths and latest statuses.
func (v *View) Init() tea.Cmd {
	return v.Refresh()
}

// Refresh returns a command that re-queries queue depths and the latest
// record status of every function.
func (v *View) Refresh() tea.Cmd {
	ctx := v.ctx
	fns := v.functions
	return func() tea.Msg {
		if v.queue == nil || v.history == nil {
			return messages.ErrorOccurred{Err: errNoServices}
		}

		latest := make(map[string]domain.TaskStatus, len(fns))
		for i := range fns {
			records, err := v.history.Recent(ctx, fns[i].Name, 1)
			if err != nil || len(records) == 0 {
				continue
			}
			latest[fns[i].Name] = records[0].Status
		}

		return messages.QueueRefreshed{
			Depths: v.queue.Snapshot(ctx),
			Latest: latest,
		}
	}
}

// Update handles messages for the function list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.prompting {
			return v.handlePromptKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.QueueRefreshed:
		if msg.Depths != nil {
			v.depths = msg.Depths
		}
		if msg.Latest != nil {
			v.latest = msg.Latest
		}
		v.err = nil
		return v, nil

	case messages.TaskFinished:
		if v.running > 0 {
			v.running--
		}
		if msg.Err != nil {
			v.failures[msg.Function] = msg.Err.Error()
			delete(v.results, msg.Function)
		} else {
			v.results[msg.Function] = v.renderOutcome(msg.Outcome)
			delete(v.failures, msg.Function)
		}
		return v, v.Refresh()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	if v.prompting {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses on the list.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.functions)-1 {
			v.selected++
		}
	case "enter":
		if fn := v.SelectedFunction(); fn != nil {
			v.prompting = true
			return v, v.input.Prompt(*fn)
		}
	case "h":
		if fn := v.SelectedFunction(); fn != nil {
			selected := *fn
			return v, func() tea.Msg {
				return messages.FunctionSelected{Function: selected}
			}
		}
	case "R":
		fn := v.SelectedFunction()
		if fn == nil {
			return v, nil
		}
		if args, ok := v.lastArgs[fn.Name]; ok {
			return v, v.run(fn.Name, args)
		}
		v.prompting = true
		return v, v.input.Prompt(*fn)
	case "r":
		return v, v.Refresh()
	case "?":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case "q":
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}
	return v, nil
}

// handlePromptKey handles key presses while the argument prompt is open.
func (v *View) handlePromptKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // only submit and cancel are special
	switch msg.Type {
	case tea.KeyEsc:
		v.prompting = false
		v.input.Blur()
		return v, nil
	case tea.KeyEnter:
		fn := v.SelectedFunction()
		v.prompting = false
		v.input.Blur()
		if fn == nil {
			return v, nil
		}
		return v, v.run(fn.Name, v.input.Args())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// run returns a command that invokes a function through the runner and
// remembers args for a rerun.
func (v *View) run(name string, args []any) tea.Cmd {
	v.lastArgs[name] = args
	v.running++
	ctx := v.ctx
	started := func() tea.Msg {
		return messages.TaskStarted{Function: name, Args: args}
	}
	finished := func() tea.Msg {
		if v.runner == nil {
			return messages.TaskFinished{Function: name, Err: errNoServices}
		}
		outcome, err := v.runner.Run(ctx, name, args)
		return messages.TaskFinished{Function: name, Outcome: outcome, Err: err}
	}
	return tea.Batch(started, finished, v.Refresh())
}

// renderOutcome formats a result with the function's own formatter.
func (v *View) renderOutcome(outcome *domain.Outcome) string {
	if outcome == nil {
		return ""
	}
	text := string(outcome.Result)
	if v.registry != nil {
		if fn, err := v.registry.Get(outcome.Function); err == nil {
			text = fn.Render(outcome.Result)
		}
	}
	line := fmt.Sprintf("%s%s = %s", outcome.Function, outcome.ArgumentKey, text)
	if outcome.Cached {
		line += " (cached)"
	}
	if outcome.Warning != nil {
		line += fmt.Sprintf(" [warning: %v]", outcome.Warning)
	}
	return line
}

// View renders the function list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Functions"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if len(v.functions) == 0 {
		b.WriteString(v.styles.Muted.Render("No functions registered."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	for i := range v.functions {
		b.WriteString(v.renderFunction(i, &v.functions[i]))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if fn := v.SelectedFunction(); fn != nil {
		if v.prompting {
			b.WriteString(v.input.View())
			b.WriteString("\n\n")
		}
		if failure, ok := v.failures[fn.Name]; ok {
			b.WriteString(v.styles.Error.Render("Failed: " + failure))
			b.WriteString("\n\n")
		} else if result, ok := v.results[fn.Name]; ok {
			b.WriteString(v.styles.Result.Render(result))
			b.WriteString("\n\n")
		}
	}

	b.WriteString(v.renderHelp())
	return b.String()
}

// renderFunction renders one line: name, depth, latest status, description.
func (v *View) renderFunction(index int, fn *domain.Function) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := fmt.Sprintf("%-12s", fn.Name)
	depth := fmt.Sprintf("queue %-3d", v.depths[fn.Name])
	status := fmt.Sprintf("%-12s", v.latest[fn.Name])

	description := fn.Description
	maxDescLen := v.width - 45
	if maxDescLen < 10 {
		maxDescLen = 10
	}
	if len(description) > maxDescLen {
		description = description[:maxDescLen-3] + "..."
	}

	if index == v.selected {
		return v.styles.Selected.Render(
			fmt.Sprintf("%s%s %s %s %s", indicator, name, depth, status, description))
	}
	return v.styles.Normal.Render(indicator) +
		v.styles.Button(fn.Color).Render(name) + " " +
		v.styles.Depth.Render(depth) + " " +
		v.styles.Status(v.latest[fn.Name]).Render(status) + " " +
		v.styles.Muted.Render(description)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	if v.prompting {
		return v.styles.Help.Render("[enter] run  [esc] cancel")
	}
	return v.styles.Help.Render("[enter] run  [R] rerun  [h] history  [r] refresh  [?] help  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
}

// Functions returns the listed functions.
func (v *View) Functions() []domain.Function {
	return v.functions
}

// SelectedIndex returns the currently selected function index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedFunction returns the selected function, or nil if none.
func (v *View) SelectedFunction() *domain.Function {
	if v.selected < 0 || v.selected >= len(v.functions) {
		return nil
	}
	return &v.functions[v.selected]
}

// Prompting reports whether the argument prompt is open.
func (v *View) Prompting() bool {
	return v.prompting
}

// Running returns how many invocations started here are still in flight.
func (v *View) Running() int {
	return v.running
}

// Depth returns the last known queue depth of a function.
func (v *View) Depth(function string) int {
	return v.depths[function]
}

// LatestStatus returns the last known status of a function's newest record.
func (v *View) LatestStatus(function string) domain.TaskStatus {
	return v.latest[function]
}

// LastResult returns the rendered result of the last successful run.
func (v *View) LastResult(function string) (string, bool) {
	r, ok := v.results[function]
	return r, ok
}

// LastArgs returns the arguments of the function's last run from this view.
func (v *View) LastArgs(function string) ([]any, bool) {
	args, ok := v.lastArgs[function]
	return args, ok
}

// LastFailure returns the error of the last failed run.
func (v *View) LastFailure(function string) (string, bool) {
	f, ok := v.failures[function]
	return f, ok
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
