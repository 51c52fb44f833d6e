package functions

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

type mockRegistry struct {
	fns map[string]domain.Function
}

func newMockRegistry(fns ...domain.Function) *mockRegistry {
	r := &mockRegistry{fns: make(map[string]domain.Function)}
	for _, fn := range fns {
		r.fns[fn.Name] = fn
	}
	return r
}

func (m *mockRegistry) Register(fn domain.Function) error {
	m.fns[fn.Name] = fn
	return nil
}

func (m *mockRegistry) Get(name string) (domain.Function, error) {
	fn, ok := m.fns[name]
	if !ok {
		return domain.Function{}, domain.ErrUnknownFunction
	}
	return fn, nil
}

func (m *mockRegistry) List() []domain.Function {
	out := make([]domain.Function, 0, len(m.fns))
	for _, fn := range m.fns {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type mockRunner struct {
	mu      sync.Mutex
	calls   []string
	args    [][]any
	outcome *domain.Outcome
	err     error
}

func (m *mockRunner) Run(_ context.Context, function string, args []any) (*domain.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, function)
	m.args = append(m.args, args)
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	key, _ := domain.ArgumentKey(args)
	return &domain.Outcome{Function: function, ArgumentKey: key, Result: []byte("16")}, nil
}

type mockQueue struct {
	depths map[string]int
}

func (m *mockQueue) Depth(_ context.Context, function string) int {
	return m.depths[function]
}

func (m *mockQueue) Snapshot(_ context.Context) map[string]int {
	return m.depths
}

type mockHistory struct {
	records map[string][]domain.TaskRecord
	err     error
}

func (m *mockHistory) Recent(_ context.Context, function string, limit int) ([]domain.TaskRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	records := m.records[function]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *mockHistory) Get(_ context.Context, id int64) (*domain.TaskRecord, error) {
	for _, records := range m.records {
		for i := range records {
			if records[i].ID == id {
				return &records[i], nil
			}
		}
	}
	return nil, domain.ErrNotFound
}
