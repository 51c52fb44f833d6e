package mcp

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// mockRunner is a mock implementation of driving.TaskRunner.
type mockRunner struct {
	outcome  *domain.Outcome
	err      error
	lastArgs []any
}

func (m *mockRunner) Run(_ context.Context, function string, args []any) (*domain.Outcome, error) {
	m.lastArgs = args
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	key, _ := domain.ArgumentKey(args)
	return &domain.Outcome{Function: function, ArgumentKey: key, Result: []byte("16"), RecordID: 1}, nil
}

// mockRegistry is a mock implementation of driving.FunctionRegistry.
type mockRegistry struct {
	functions []domain.Function
}

func (m *mockRegistry) Register(fn domain.Function) error {
	m.functions = append(m.functions, fn)
	return nil
}

func (m *mockRegistry) Get(name string) (domain.Function, error) {
	for _, fn := range m.functions {
		if fn.Name == name {
			return fn, nil
		}
	}
	return domain.Function{}, domain.ErrUnknownFunction
}

func (m *mockRegistry) List() []domain.Function {
	return m.functions
}

// mockQueue is a mock implementation of driving.QueueReporter.
type mockQueue struct {
	depths map[string]int
}

func (m *mockQueue) Depth(_ context.Context, function string) int {
	return m.depths[function]
}

func (m *mockQueue) Snapshot(_ context.Context) map[string]int {
	return m.depths
}

// mockHistory is a mock implementation of driving.HistoryService.
type mockHistory struct {
	records   []domain.TaskRecord
	err       error
	lastLimit int
}

func (m *mockHistory) Recent(_ context.Context, function string, limit int) ([]domain.TaskRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.TaskRecord
	for _, r := range m.records {
		if function == "" || r.Function == function {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockHistory) Get(_ context.Context, id int64) (*domain.TaskRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func noopFunc(context.Context, []any, domain.ProgressFunc) (any, error) {
	return nil, nil
}

func testRegistry() *mockRegistry {
	return &mockRegistry{functions: []domain.Function{
		{Name: "sleep", Description: "Sleeps", Params: []string{"seconds"}, Func: noopFunc},
		{
			Name: "square", Description: "Squares", Params: []string{"x"}, Func: noopFunc,
			Format: func(p []byte) string { return "squared: " + string(p) },
		},
	}}
}

func testPorts() *Ports {
	return &Ports{
		Runner:   &mockRunner{},
		Registry: testRegistry(),
		Queue:    &mockQueue{depths: map[string]int{"sleep": 2, "gone": 5}},
		History:  &mockHistory{},
	}
}
