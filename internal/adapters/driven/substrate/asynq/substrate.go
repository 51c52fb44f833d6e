package asynq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultQueue        = "default"
	DefaultRetention    = 24 * time.Hour
	DefaultScanInterval = time.Second
	pageSize            = 1000
)

// Config configures the Redis connection and queue.
type Config struct {
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string

	// Queue is the asynq queue name.
	Queue string

	// Retention is how long a finished task's result stays readable.
	Retention time.Duration

	// ScanInterval is the minimum delay between two queue scans by Pending.
	ScanInterval time.Duration

	// Concurrency is the worker pool size.
	Concurrency int
}

func (c Config) withDefaults() Config {
	if c.Queue == "" {
		c.Queue = DefaultQueue
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.ScanInterval <= 0 {
		c.ScanInterval = DefaultScanInterval
	}
	return c
}

func (c Config) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.RedisAddr}
}

// enqueuer is the subset of *asynq.Client the substrate uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// inspector is the subset of *asynq.Inspector the substrate uses.
type inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	ListPendingTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListActiveTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	Close() error
}

var _ driven.Substrate = (*Substrate)(nil)

// Substrate submits calls to an asynq queue.
type Substrate struct {
	config    Config
	client    enqueuer
	inspector inspector

	limiter *rate.Limiter
	mu      sync.Mutex
	last    []domain.PendingTask
	lastErr error
}

// New connects to Redis and returns a substrate for the configured queue.
func New(ctx context.Context, config Config) (*Substrate, error) {
	config = config.withDefaults()
	if err := Ping(ctx, config.RedisAddr); err != nil {
		return nil, err
	}

	opt := config.redisOpt()
	return newSubstrate(config, asynq.NewClient(opt), asynq.NewInspector(opt)), nil
}

func newSubstrate(config Config, client enqueuer, insp inspector) *Substrate {
	config = config.withDefaults()
	return &Substrate{
		config:    config,
		client:    client,
		inspector: insp,
		limiter:   rate.NewLimiter(rate.Every(config.ScanInterval), 1),
	}
}

// Ping verifies that Redis answers at addr.
func Ping(ctx context.Context, addr string) error {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return nil
}

// Submit enqueues a call. The task type is the function name.
func (s *Substrate) Submit(ctx context.Context, function string, args []any) (driven.TaskHandle, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArgumentEncoding, err)
	}

	info, err := s.client.EnqueueContext(ctx, asynq.NewTask(function, payload),
		asynq.Queue(s.config.Queue),
		asynq.MaxRetry(0),
		asynq.Retention(s.config.Retention),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueueing %s: %w", function, err)
	}

	logger.Debug("enqueued %s as %s on %s", function, info.ID, info.Queue)
	return &handle{
		id:        info.ID,
		queue:     info.Queue,
		function:  function,
		inspector: s.inspector,
	}, nil
}

// Pending lists pending and active tasks on the queue. Scans are rate
// limited; between scans the previous snapshot is returned.
func (s *Substrate) Pending(_ context.Context) ([]domain.PendingTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last != nil && !s.limiter.Allow() {
		return s.last, s.lastErr
	}

	s.last, s.lastErr = s.scan()
	if s.last == nil {
		s.last = []domain.PendingTask{}
	}
	return s.last, s.lastErr
}

func (s *Substrate) scan() ([]domain.PendingTask, error) {
	pending, err := s.inspector.ListPendingTasks(s.config.Queue, asynq.PageSize(pageSize))
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return []domain.PendingTask{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing pending tasks: %w", err)
	}

	active, err := s.inspector.ListActiveTasks(s.config.Queue, asynq.PageSize(pageSize))
	if err != nil && !errors.Is(err, asynq.ErrQueueNotFound) {
		return nil, fmt.Errorf("listing active tasks: %w", err)
	}

	tasks := make([]domain.PendingTask, 0, len(pending)+len(active))
	for _, info := range active {
		tasks = append(tasks, domain.PendingTask{ID: info.ID, Function: info.Type, Running: true})
	}
	for _, info := range pending {
		tasks = append(tasks, domain.PendingTask{ID: info.ID, Function: info.Type})
	}
	return tasks, nil
}

// Close releases the Redis connections.
func (s *Substrate) Close() error {
	return errors.Join(s.client.Close(), s.inspector.Close())
}

// handle observes one enqueued task through the inspector.
type handle struct {
	id        string
	queue     string
	function  string
	inspector inspector
}

func (h *handle) ID() string       { return h.id }
func (h *handle) Function() string { return h.function }

func (h *handle) Completed(_ context.Context) (bool, error) {
	info, err := h.info()
	if err != nil {
		return false, err
	}
	return info.State == asynq.TaskStateCompleted || info.State == asynq.TaskStateArchived, nil
}

func (h *handle) Result(_ context.Context) (*domain.Outcome, error) {
	info, err := h.info()
	if err != nil {
		return nil, err
	}

	switch info.State {
	case asynq.TaskStateCompleted:
		return decodeResult(h.function, info.Result)
	case asynq.TaskStateArchived:
		return nil, &domain.ExecutionError{Function: h.function, Message: failureMessage(info.LastErr)}
	default:
		return nil, fmt.Errorf("task %s is %s", h.id, info.State)
	}
}

func (h *handle) info() (*asynq.TaskInfo, error) {
	info, err := h.inspector.GetTaskInfo(h.queue, h.id)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrResultExpired, h.id)
	}
	if err != nil {
		return nil, fmt.Errorf("inspecting task %s: %w", h.id, err)
	}
	return info, nil
}

// failureMessage strips the retry marker the worker appends.
func failureMessage(lastErr string) string {
	return strings.TrimSuffix(lastErr, ": "+asynq.SkipRetry.Error())
}
