// Package functions provides the built-in functions the dashboard ships with.
package functions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// MaxSleep caps the sleep function so a typo cannot hold a worker for hours.
const MaxSleep = 10 * time.Minute

// Builtins returns the built-in functions.
func Builtins() []domain.Function {
	return []domain.Function{
		{
			Name:        "square",
			Description: "Square an integer",
			Color:       "#7D56F4",
			Params:      []string{"x"},
			Func:        square,
		},
		{
			Name:        "sleep",
			Description: "Sleep for a number of seconds and return it",
			Color:       "#04B575",
			Params:      []string{"seconds"},
			Func:        sleep,
			Format:      formatSeconds,
		},
		{
			Name:        "count",
			Description: "Count to n, reporting progress",
			Color:       "#F2C94C",
			Params:      []string{"n"},
			Func:        count,
		},
		{
			Name:        "fail",
			Description: "Always fail with the given message",
			Color:       "#FF5F87",
			Params:      []string{"message"},
			Func:        fail,
		},
		{
			Name:        "echo",
			Description: "Return the arguments unchanged",
			Params:      []string{"args..."},
			Func:        echo,
		},
	}
}

func square(_ context.Context, args []any, _ domain.ProgressFunc) (any, error) {
	x, err := domain.IntArg(args, 0)
	if err != nil {
		return nil, err
	}
	return x * x, nil
}

func sleep(ctx context.Context, args []any, _ domain.ProgressFunc) (any, error) {
	seconds, err := domain.FloatArg(args, 0)
	if err != nil {
		return nil, err
	}
	d := time.Duration(seconds * float64(time.Second))
	if d < 0 || d > MaxSleep {
		return nil, fmt.Errorf("%w: sleep must be between 0 and %s", domain.ErrInvalidInput, MaxSleep)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return seconds, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// count steps to n, reporting percent complete after each step.
func count(ctx context.Context, args []any, report domain.ProgressFunc) (any, error) {
	n, err := domain.IntArg(args, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: n must not be negative", domain.ErrInvalidInput)
	}

	step := 10 * time.Millisecond
	if len(args) > 1 {
		ms, err := domain.IntArg(args, 1)
		if err != nil {
			return nil, err
		}
		step = time.Duration(ms) * time.Millisecond
	}

	for i := 1; i <= n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(step):
		}
		if err := report(ctx, i*100/n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func fail(_ context.Context, args []any, _ domain.ProgressFunc) (any, error) {
	msg := "failed on purpose"
	if s, err := domain.StringArg(args, 0); err == nil && strings.TrimSpace(s) != "" {
		msg = s
	}
	return nil, errors.New(msg)
}

func echo(_ context.Context, args []any, _ domain.ProgressFunc) (any, error) {
	if args == nil {
		return []any{}, nil
	}
	return args, nil
}

func formatSeconds(payload []byte) string {
	seconds, err := domain.DecodeResult[float64](payload)
	if err != nil {
		return string(payload)
	}
	return fmt.Sprintf("slept %gs", seconds)
}
