// Package input provides text input components for the dashboard.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// ArgsInput prompts for a function's positional arguments on one line.
type ArgsInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewArgsInput creates a new argument input component.
func NewArgsInput(s *styles.Styles) *ArgsInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "arguments, space separated"
	ti.CharLimit = 256
	ti.Width = 50

	return &ArgsInput{
		textinput: ti,
		styles:    s,
		label:     "Args",
		width:     50,
	}
}

// Init initialises the input.
func (a *ArgsInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (a *ArgsInput) Update(msg tea.Msg) (*ArgsInput, tea.Cmd) {
	var cmd tea.Cmd
	a.textinput, cmd = a.textinput.Update(msg)
	return a, cmd
}

// View renders the prompt.
func (a *ArgsInput) View() string {
	label := a.styles.Title.Render(a.label + ": ")
	field := a.styles.InputField.Render(a.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Prompt resets the input for fn, naming its parameters in the placeholder.
func (a *ArgsInput) Prompt(fn domain.Function) tea.Cmd {
	a.textinput.Reset()
	a.label = fn.Name
	a.textinput.Placeholder = "arguments, space separated"
	if len(fn.Params) > 0 {
		a.textinput.Placeholder = strings.Join(fn.Params, " ")
	}
	return a.textinput.Focus()
}

// Args parses the typed fields into arguments.
func (a *ArgsInput) Args() []any {
	return domain.ParseArgs(strings.Fields(a.textinput.Value()))
}

// Value returns the raw input.
func (a *ArgsInput) Value() string {
	return a.textinput.Value()
}

// SetValue sets the input value.
func (a *ArgsInput) SetValue(value string) {
	a.textinput.SetValue(value)
}

// Placeholder returns the current placeholder.
func (a *ArgsInput) Placeholder() string {
	return a.textinput.Placeholder
}

// Blur removes focus from the input.
func (a *ArgsInput) Blur() {
	a.textinput.Blur()
}

// Focused returns whether the input is focused.
func (a *ArgsInput) Focused() bool {
	return a.textinput.Focused()
}

// SetWidth sets the width of the input.
func (a *ArgsInput) SetWidth(width int) {
	a.width = width
	// Account for label and padding
	inputWidth := width - 20
	if inputWidth < 20 {
		inputWidth = 20
	}
	a.textinput.Width = inputWidth
}

// Width returns the current width.
func (a *ArgsInput) Width() int {
	return a.width
}
