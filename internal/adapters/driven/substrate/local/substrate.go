// Package local provides an in-process execution substrate: a bounded
// goroutine pool that runs submitted calls through the task executor.
package local

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// DefaultConcurrency is the pool size when none is configured.
const DefaultConcurrency = 4

var _ driven.Substrate = (*Substrate)(nil)

// Substrate runs units on a bounded pool of goroutines.
// Units outlive the caller's context; Close cancels them and waits.
type Substrate struct {
	executor driving.TaskExecutor
	slots    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	seq     uint64
	pending map[string]*handle
}

// New creates a substrate running at most concurrency units at once.
func New(executor driving.TaskExecutor, concurrency int) *Substrate {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Substrate{
		executor: executor,
		slots:    make(chan struct{}, concurrency),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]*handle),
	}
}

// Submit queues a call and returns immediately.
func (s *Substrate) Submit(_ context.Context, function string, args []any) (driven.TaskHandle, error) {
	h := &handle{
		id:       uuid.NewString(),
		function: function,
		done:     make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrSubstrateClosed
	}
	s.seq++
	h.seq = s.seq
	s.pending[h.id] = h
	s.wg.Add(1)
	s.mu.Unlock()

	logger.Debug("queued %s as %s", function, h.id)
	go s.run(h, args)
	return h, nil
}

func (s *Substrate) run(h *handle, args []any) {
	defer s.wg.Done()
	defer s.finish(h)

	select {
	case s.slots <- struct{}{}:
	case <-s.ctx.Done():
		h.err = fmt.Errorf("%w: %s not started", domain.ErrSubstrateClosed, h.function)
		return
	}
	defer func() { <-s.slots }()

	s.mu.Lock()
	h.running = true
	s.mu.Unlock()

	h.outcome, h.err = s.executor.Invoke(s.ctx, h.function, args)
}

func (s *Substrate) finish(h *handle) {
	s.mu.Lock()
	delete(s.pending, h.id)
	s.mu.Unlock()
	close(h.done)
}

// Pending lists queued and running units in submission order.
func (s *Substrate) Pending(_ context.Context) ([]domain.PendingTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := make([]*handle, 0, len(s.pending))
	for _, h := range s.pending {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].seq < handles[j].seq })

	tasks := make([]domain.PendingTask, 0, len(handles))
	for _, h := range handles {
		tasks = append(tasks, domain.PendingTask{
			ID:       h.id,
			Function: h.function,
			Running:  h.running,
		})
	}
	return tasks, nil
}

// Close stops accepting work, cancels queued and running units and waits
// for them to finish.
func (s *Substrate) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return nil
}

// handle observes one unit. outcome and err are written before done closes.
type handle struct {
	id       string
	function string
	seq      uint64
	running  bool // guarded by Substrate.mu
	done     chan struct{}
	outcome  *domain.Outcome
	err      error
}

func (h *handle) ID() string       { return h.id }
func (h *handle) Function() string { return h.function }

func (h *handle) Completed(_ context.Context) (bool, error) {
	select {
	case <-h.done:
		return true, nil
	default:
		return false, nil
	}
}

func (h *handle) Result(ctx context.Context) (*domain.Outcome, error) {
	select {
	case <-h.done:
		if h.err != nil {
			return nil, h.err
		}
		return h.outcome, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
