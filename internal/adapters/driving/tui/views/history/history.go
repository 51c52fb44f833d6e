// Package history provides the invocation history view for one function.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
)

// Limit is how many records the view loads.
const Limit = 50

var errNoHistory = errors.New("history service not available")

// View lists the newest records of a function and shows the selected one.
type View struct {
	styles  *styles.Styles
	history driving.HistoryService
	ctx     context.Context

	function domain.Function
	records  *list.RecordList
	loading  bool
	width    int
	height   int
	err      error
}

// NewView creates a new history view.
func NewView(s *styles.Styles, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		history: history,
		ctx:     context.Background(),
		records: list.NewRecordList(s),
		width:   80,
		height:  24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetFunction switches the view to fn and loads its records.
func (v *View) SetFunction(fn domain.Function) tea.Cmd {
	v.function = fn
	v.records.SetRecords(nil)
	v.err = nil
	v.loading = true
	return v.Refresh()
}

// Refresh returns a command that reloads the current function's records.
func (v *View) Refresh() tea.Cmd {
	name := v.function.Name
	ctx := v.ctx
	return func() tea.Msg {
		if v.history == nil {
			return messages.HistoryLoaded{Function: name, Err: errNoHistory}
		}
		records, err := v.history.Recent(ctx, name, Limit)
		return messages.HistoryLoaded{Function: name, Records: records, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		// A late reply for a previously shown function.
		if msg.Function != v.function.Name {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.records.SetRecords(msg.Records)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewFunctions}
			}
		case "r":
			v.loading = true
			return v, v.Refresh()
		case "q":
			return v, func() tea.Msg {
				return messages.Quit{}
			}
		}
		var cmd tea.Cmd
		v.records, cmd = v.records.Update(msg)
		return v, cmd
	}

	return v, nil
}

// View renders the history view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("History: " + v.function.Name))
	b.WriteString("\n\n")

	switch {
	case v.loading && v.records.Count() == 0:
		b.WriteString(v.styles.Muted.Render("Loading history..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.records.View())
		if record := v.records.SelectedRecord(); record != nil {
			b.WriteString("\n\n")
			b.WriteString(v.renderDetail(record))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] select  [r] refresh  [esc] back  [q] quit"))
	return b.String()
}

// renderDetail renders the selected record.
func (v *View) renderDetail(r *domain.TaskRecord) string {
	lines := []string{
		fmt.Sprintf("Record    #%d", r.ID),
		fmt.Sprintf("Arguments %s", r.ArgumentKey),
		"Status    " + v.styles.Status(r.Status).Render(r.Status.String()),
		fmt.Sprintf("Started   %s", r.StartTime.Local().Format(time.DateTime)),
	}
	if !r.EndTime.IsZero() {
		lines = append(lines, fmt.Sprintf("Duration  %s", r.Duration))
	}
	if r.Status == domain.StatusInProgress {
		lines = append(lines, fmt.Sprintf("Progress  %d", r.Progress))
	}
	if r.ErrorMessage != "" {
		lines = append(lines, v.styles.Error.Render("Error     "+r.ErrorMessage))
	}
	if len(r.Result) > 0 {
		lines = append(lines, "Result    "+v.function.Render(r.Result))
	}
	return v.styles.Result.Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	// Leave room for the title, detail box and help.
	v.records.SetDimensions(width, height-14)
}

// Function returns the function being shown.
func (v *View) Function() domain.Function {
	return v.function
}

// Records returns the loaded records.
func (v *View) Records() []domain.TaskRecord {
	return v.records.Records()
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
