package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [function]",
	Short: "Show recent invocations",
	Long: `Shows the most recent invocation records, newest first.
Every attempt is recorded, including cache hits and failures.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [record-id]",
	Short: "Show a single invocation record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output records as JSON")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// recordOutput is the JSON shape of a record.
type recordOutput struct {
	ID        int64           `json:"id"`
	Function  string          `json:"function"`
	Args      string          `json:"args"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Duration  string          `json:"duration,omitempty"`
	Error     string          `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

func toRecordOutput(r *domain.TaskRecord) recordOutput {
	out := recordOutput{
		ID:        r.ID,
		Function:  r.Function,
		Args:      r.ArgumentKey,
		Status:    r.Status.String(),
		Progress:  r.Progress,
		StartTime: r.StartTime,
		Error:     r.ErrorMessage,
	}
	if !r.EndTime.IsZero() {
		end := r.EndTime
		out.EndTime = &end
		out.Duration = r.Duration.String()
	}
	if len(r.Result) > 0 {
		out.Result = json.RawMessage(r.Result)
	}
	return out
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errNotConfigured
	}

	function := ""
	if len(args) == 1 {
		function = args[0]
	}

	records, err := historyService.Recent(cmd.Context(), function, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyJSON {
		out := make([]recordOutput, 0, len(records))
		for i := range records {
			out = append(out, toRecordOutput(&records[i]))
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal records: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		cmd.Println("No invocations recorded.")
		return nil
	}

	for i := range records {
		r := &records[i]
		cmd.Printf("  #%-5d %-12s %-25s %s\n",
			r.ID, r.Status, r.Function+r.ArgumentKey, recordDetail(r))
	}
	return nil
}

// recordDetail summarises timing or progress for one line.
func recordDetail(r *domain.TaskRecord) string {
	switch r.Status {
	case domain.StatusSuccess:
		return r.Duration.Round(time.Millisecond).String()
	case domain.StatusFailed:
		return r.ErrorMessage
	case domain.StatusInProgress:
		return fmt.Sprintf("%d%%", r.Progress)
	case domain.StatusPending:
		return ""
	}
	return ""
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errNotConfigured
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", args[0], domain.ErrInvalidInput)
	}

	record, err := historyService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get record %d: %w", id, err)
	}

	cmd.Printf("Record:    #%d\n", record.ID)
	cmd.Printf("Function:  %s\n", record.Function)
	cmd.Printf("Arguments: %s\n", record.ArgumentKey)
	cmd.Printf("Status:    %s\n", record.Status)
	cmd.Printf("Progress:  %d\n", record.Progress)
	cmd.Printf("Started:   %s\n", record.StartTime.Local().Format(time.RFC3339))
	if !record.EndTime.IsZero() {
		cmd.Printf("Finished:  %s\n", record.EndTime.Local().Format(time.RFC3339))
		cmd.Printf("Duration:  %s\n", record.Duration)
	}
	if record.ErrorMessage != "" {
		cmd.Printf("Error:     %s\n", record.ErrorMessage)
	}
	if len(record.Result) > 0 {
		cmd.Printf("Result:    %s\n", record.Result)
	}
	return nil
}
