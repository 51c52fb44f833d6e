package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// DefaultHistoryLimit is the task_history limit when none is given.
const DefaultHistoryLimit = 20

// RunInput is the input schema for the run_function tool.
type RunInput struct {
	Function string `json:"function" jsonschema:"name of the registered function to run"`
	Args     []any  `json:"args,omitempty" jsonschema:"positional arguments passed to the function"`
}

// RunOutput is the output schema for the run_function tool.
type RunOutput struct {
	Function string `json:"function"`
	Args     string `json:"args"`
	RecordID int64  `json:"record_id,omitempty"`
	Cached   bool   `json:"cached"`
	Result   any    `json:"result"`
	Display  string `json:"display"`
	Warning  string `json:"warning,omitempty"`
}

// QueueInput is the input schema for the queue_depth tool.
type QueueInput struct {
	Function string `json:"function,omitempty" jsonschema:"only report this function (default all)"`
}

// QueueOutput is the output schema for the queue_depth tool.
type QueueOutput struct {
	Depths map[string]int `json:"depths"`
	Total  int            `json:"total"`
}

// HistoryInput is the input schema for the task_history tool.
type HistoryInput struct {
	Function string `json:"function,omitempty" jsonschema:"only list records of this function (default all)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 20)"`
}

// HistoryOutput is the output schema for the task_history tool.
type HistoryOutput struct {
	Records []RecordOutput `json:"records"`
	Count   int            `json:"count"`
}

// RecordOutput represents a single invocation record.
type RecordOutput struct {
	ID         int64  `json:"id"`
	Function   string `json:"function"`
	Args       string `json:"args"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
	Result     any    `json:"result,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_function",
		Description: "Run a registered function, reusing a cached result for the same arguments",
	}, s.handleRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "queue_depth",
		Description: "Count queued and running invocations per function",
	}, s.handleQueueDepth)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "task_history",
		Description: "List recent invocation records, newest first",
	}, s.handleHistory)
}

// handleRun handles the run_function tool invocation.
func (s *Server) handleRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	fn, err := s.ports.Registry.Get(input.Function)
	if err != nil {
		return nil, RunOutput{}, err
	}

	args := input.Args
	if args == nil {
		args = []any{}
	}

	outcome, err := s.ports.Runner.Run(ctx, fn.Name, args)
	if err != nil {
		return nil, RunOutput{}, err
	}

	output := RunOutput{
		Function: outcome.Function,
		Args:     outcome.ArgumentKey,
		RecordID: outcome.RecordID,
		Cached:   outcome.Cached,
		Result:   decodePayload(outcome.Result),
		Display:  fn.Render(outcome.Result),
	}
	if outcome.Warning != nil {
		output.Warning = outcome.Warning.Error()
	}
	return nil, output, nil
}

// handleQueueDepth handles the queue_depth tool invocation.
func (s *Server) handleQueueDepth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueueInput,
) (*mcp.CallToolResult, QueueOutput, error) {
	if s.ports.Queue == nil {
		return nil, QueueOutput{}, errUnavailable
	}

	output := QueueOutput{Depths: make(map[string]int)}

	if input.Function != "" {
		if _, err := s.ports.Registry.Get(input.Function); err != nil {
			return nil, QueueOutput{}, err
		}
		depth := s.ports.Queue.Depth(ctx, input.Function)
		output.Depths[input.Function] = depth
		output.Total = depth
		return nil, output, nil
	}

	snapshot := s.ports.Queue.Snapshot(ctx)
	for _, fn := range s.ports.Registry.List() {
		output.Depths[fn.Name] = snapshot[fn.Name]
		output.Total += snapshot[fn.Name]
	}
	return nil, output, nil
}

// handleHistory handles the task_history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.History == nil {
		return nil, HistoryOutput{}, errUnavailable
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records, err := s.ports.History.Recent(ctx, input.Function, limit)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	output := HistoryOutput{
		Records: make([]RecordOutput, len(records)),
		Count:   len(records),
	}
	for i := range records {
		output.Records[i] = toRecordOutput(&records[i])
	}
	return nil, output, nil
}

func toRecordOutput(r *domain.TaskRecord) RecordOutput {
	out := RecordOutput{
		ID:        r.ID,
		Function:  r.Function,
		Args:      r.ArgumentKey,
		Status:    r.Status.String(),
		Progress:  r.Progress,
		StartTime: r.StartTime.UTC().Format(time.RFC3339Nano),
		Error:     r.ErrorMessage,
		Result:    decodePayload(r.Result),
	}
	if !r.EndTime.IsZero() {
		out.EndTime = r.EndTime.UTC().Format(time.RFC3339Nano)
		out.DurationMS = r.Duration.Milliseconds()
	}
	return out
}

// decodePayload turns a stored JSON payload into a value for structured
// output. An undecodable payload is returned as a string.
func decodePayload(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}
	return v
}
