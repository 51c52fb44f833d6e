package asynq

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// taskResult is the payload a worker stores as the asynq task result.
type taskResult struct {
	Result   json.RawMessage `json:"result"`
	Warning  string          `json:"warning,omitempty"`
	RecordID int64           `json:"record_id"`
	Cached   bool            `json:"cached,omitempty"`
}

func encodeResult(outcome *domain.Outcome) ([]byte, error) {
	res := taskResult{
		Result:   outcome.Result,
		RecordID: outcome.RecordID,
		Cached:   outcome.Cached,
	}
	if len(res.Result) == 0 {
		res.Result = json.RawMessage("null")
	}
	if outcome.Warning != nil {
		res.Warning = outcome.Warning.Error()
	}
	return json.Marshal(res)
}

func decodeResult(function string, payload []byte) (*domain.Outcome, error) {
	var res taskResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decoding result of %s: %w", function, err)
	}

	outcome := &domain.Outcome{
		Function: function,
		Result:   []byte(res.Result),
		RecordID: res.RecordID,
		Cached:   res.Cached,
	}
	if res.Warning != "" {
		outcome.Warning = workerWarning(res.Warning)
	}
	return outcome, nil
}

// workerWarning is a storage warning raised on the worker side. Only its
// text crosses the queue.
type workerWarning string

func (w workerWarning) Error() string { return string(w) }

func (w workerWarning) Unwrap() error { return domain.ErrStorage }
