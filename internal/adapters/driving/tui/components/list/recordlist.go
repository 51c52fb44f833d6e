// Package list provides list display components for the dashboard.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/taskdash/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// RecordList displays invocation records in a navigable list.
type RecordList struct {
	records  []domain.TaskRecord
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewRecordList creates a new record list component.
func NewRecordList(s *styles.Styles) *RecordList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &RecordList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the record list.
func (r *RecordList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *RecordList) Update(msg tea.Msg) (*RecordList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the record list.
func (r *RecordList) View() string {
	if len(r.records) == 0 {
		return r.styles.Muted.Render("No invocations recorded")
	}

	// Header and footer take four lines.
	visibleCount := r.height - 4
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.records) {
		end = len(r.records)
	}

	lines := make([]string, 0, end-start+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Records (%d)", len(r.records))), "")
	for i := start; i < end; i++ {
		lines = append(lines, r.renderRecord(i, &r.records[i]))
	}
	return strings.Join(lines, "\n")
}

// renderRecord formats one record as "#id STATUS args detail".
func (r *RecordList) renderRecord(index int, record *domain.TaskRecord) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	args := record.ArgumentKey
	maxArgsLen := r.width - 40
	if maxArgsLen < 10 {
		maxArgsLen = 10
	}
	if len(args) > maxArgsLen {
		args = args[:maxArgsLen-3] + "..."
	}

	id := fmt.Sprintf("%s#%-5d ", indicator, record.ID)
	status := fmt.Sprintf("%-12s", record.Status)
	detail := Detail(record)

	if index == r.selected {
		return r.styles.Selected.Render(fmt.Sprintf("%s%s %-*s %s", id, status, maxArgsLen, args, detail))
	}
	return r.styles.Normal.Render(id) +
		r.styles.Status(record.Status).Render(status) + " " +
		r.styles.Normal.Render(fmt.Sprintf("%-*s ", maxArgsLen, args)) +
		r.styles.Muted.Render(detail)
}

// Detail summarises a record's timing, error or progress.
func Detail(record *domain.TaskRecord) string {
	switch record.Status {
	case domain.StatusSuccess:
		return record.Duration.Round(time.Millisecond).String()
	case domain.StatusFailed:
		return record.ErrorMessage
	case domain.StatusInProgress:
		return fmt.Sprintf("%d%%", record.Progress)
	case domain.StatusPending:
		return "queued"
	}
	return ""
}

// SetRecords replaces the records, keeping the selection in range.
func (r *RecordList) SetRecords(records []domain.TaskRecord) {
	r.records = records
	if r.selected >= len(records) {
		r.selected = len(records) - 1
	}
	if r.selected < 0 {
		r.selected = 0
	}
}

// Records returns the current records.
func (r *RecordList) Records() []domain.TaskRecord {
	return r.records
}

// Selected returns the index of the selected record.
func (r *RecordList) Selected() int {
	return r.selected
}

// SelectedRecord returns the currently selected record, or nil if none.
func (r *RecordList) SelectedRecord() *domain.TaskRecord {
	if len(r.records) == 0 || r.selected < 0 || r.selected >= len(r.records) {
		return nil
	}
	return &r.records[r.selected]
}

// MoveUp moves selection up.
func (r *RecordList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RecordList) MoveDown() {
	if r.selected < len(r.records)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *RecordList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of records.
func (r *RecordList) Count() int {
	return len(r.records)
}
