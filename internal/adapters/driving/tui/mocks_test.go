package tui

import (
	"context"
	"errors"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// MockRunner implements driving.TaskRunner for testing.
type MockRunner struct {
	RunFunc func(ctx context.Context, function string, args []any) (*domain.Outcome, error)
}

func (m *MockRunner) Run(ctx context.Context, function string, args []any) (*domain.Outcome, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, function, args)
	}
	key, _ := domain.ArgumentKey(args)
	return &domain.Outcome{Function: function, ArgumentKey: key, Result: []byte("16")}, nil
}

// MockRegistry implements driving.FunctionRegistry for testing.
type MockRegistry struct {
	Functions []domain.Function
}

func (m *MockRegistry) Register(fn domain.Function) error {
	m.Functions = append(m.Functions, fn)
	return nil
}

func (m *MockRegistry) Get(name string) (domain.Function, error) {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn, nil
		}
	}
	return domain.Function{}, domain.ErrUnknownFunction
}

func (m *MockRegistry) List() []domain.Function {
	return m.Functions
}

// MockQueueReporter implements driving.QueueReporter for testing.
type MockQueueReporter struct {
	Depths map[string]int
}

func (m *MockQueueReporter) Depth(_ context.Context, function string) int {
	return m.Depths[function]
}

func (m *MockQueueReporter) Snapshot(_ context.Context) map[string]int {
	return m.Depths
}

// MockHistoryService implements driving.HistoryService for testing.
type MockHistoryService struct {
	Records []domain.TaskRecord
}

func (m *MockHistoryService) Recent(_ context.Context, function string, _ int) ([]domain.TaskRecord, error) {
	var out []domain.TaskRecord
	for _, r := range m.Records {
		if function == "" || r.Function == function {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockHistoryService) Get(_ context.Context, id int64) (*domain.TaskRecord, error) {
	for i := range m.Records {
		if m.Records[i].ID == id {
			return &m.Records[i], nil
		}
	}
	return nil, errors.New("not found")
}

func noopFunc(context.Context, []any, domain.ProgressFunc) (any, error) {
	return nil, nil
}
