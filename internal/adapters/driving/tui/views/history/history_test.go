package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/taskdash/internal/core/domain"
)

type mockHistory struct {
	records   []domain.TaskRecord
	err       error
	lastFn    string
	lastLimit int
}

func (m *mockHistory) Recent(_ context.Context, function string, limit int) ([]domain.TaskRecord, error) {
	m.lastFn = function
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockHistory) Get(_ context.Context, _ int64) (*domain.TaskRecord, error) {
	return nil, domain.ErrNotFound
}

func squareFn() domain.Function {
	return domain.Function{
		Name:   "square",
		Format: func(p []byte) string { return "= " + string(p) },
		Func: func(context.Context, []any, domain.ProgressFunc) (any, error) {
			return nil, nil
		},
	}
}

func testRecords() []domain.TaskRecord {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []domain.TaskRecord{
		{
			ID: 2, Function: "square", ArgumentKey: "[4]", Status: domain.StatusSuccess,
			StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second, Result: []byte("16"),
		},
		{
			ID: 1, Function: "square", ArgumentKey: "[x]", Status: domain.StatusFailed,
			StartTime: start, EndTime: start, ErrorMessage: "not a number",
		},
	}
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Empty(t, view.Records())
	assert.False(t, view.Loading())
}

func TestView_SetFunctionLoads(t *testing.T) {
	mock := &mockHistory{records: testRecords()}
	view := NewView(nil, mock)

	cmd := view.SetFunction(squareFn())

	assert.True(t, view.Loading())
	assert.Contains(t, view.View(), "Loading history...")
	require.NotNil(t, cmd)

	loaded, ok := cmd().(messages.HistoryLoaded)
	require.True(t, ok)
	assert.Equal(t, "square", mock.lastFn)
	assert.Equal(t, Limit, mock.lastLimit)

	view, _ = view.Update(loaded)
	assert.False(t, view.Loading())
	assert.Len(t, view.Records(), 2)

	out := view.View()
	assert.Contains(t, out, "History: square")
	assert.Contains(t, out, "Records (2)")
	assert.Contains(t, out, "Result    = 16")
}

func TestView_SelectionShowsFailure(t *testing.T) {
	view := NewView(nil, &mockHistory{})
	view.SetFunction(squareFn())
	view, _ = view.Update(messages.HistoryLoaded{Function: "square", Records: testRecords()})

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Contains(t, view.View(), "Error     not a number")
}

func TestView_IgnoresStaleReplies(t *testing.T) {
	view := NewView(nil, &mockHistory{})
	view.SetFunction(squareFn())

	view, _ = view.Update(messages.HistoryLoaded{Function: "sleep", Records: testRecords()})

	assert.Empty(t, view.Records())
	assert.True(t, view.Loading())
}

func TestView_LoadError(t *testing.T) {
	view := NewView(nil, &mockHistory{err: errors.New("db locked")})

	loaded := view.SetFunction(squareFn())().(messages.HistoryLoaded)
	view, _ = view.Update(loaded)

	require.Error(t, view.Err())
	assert.Contains(t, view.View(), "Error: db locked")
}

func TestView_NilService(t *testing.T) {
	view := NewView(nil, nil)

	loaded := view.SetFunction(squareFn())().(messages.HistoryLoaded)

	assert.ErrorIs(t, loaded.Err, errNoHistory)
}

func TestView_Keys(t *testing.T) {
	view := NewView(nil, &mockHistory{})
	view.SetFunction(squareFn())

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewFunctions}, cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	_, ok := cmd().(messages.HistoryLoaded)
	assert.True(t, ok)
}

func TestView_SetFunctionClearsPrevious(t *testing.T) {
	view := NewView(nil, &mockHistory{})
	view.SetFunction(squareFn())
	view, _ = view.Update(messages.HistoryLoaded{Function: "square", Records: testRecords()})

	view.SetFunction(domain.Function{Name: "sleep"})

	assert.Empty(t, view.Records())
	assert.Equal(t, "sleep", view.Function().Name)
}
