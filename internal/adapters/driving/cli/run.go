package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

var (
	runTimeout time.Duration
	runJSON    bool
)

var runCmd = &cobra.Command{
	Use:   "run [function] [args...]",
	Short: "Run a function and print its result",
	Long: `Runs a registered function with positional arguments and waits for the result.

Arguments are parsed as JSON where possible, so 4 is a number and "hello" a
string. A result cached for the same arguments is returned without running
the function again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVarP(&runTimeout, "timeout", "t", 0, "give up waiting after this long (0 = wait forever)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the outcome as JSON")
	rootCmd.AddCommand(runCmd)
}

// runOutput is the JSON shape of an outcome.
type runOutput struct {
	Function string          `json:"function"`
	Args     string          `json:"args"`
	RecordID int64           `json:"record_id,omitempty"`
	Cached   bool            `json:"cached"`
	Result   json.RawMessage `json:"result"`
	Warning  string          `json:"warning,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	if runner == nil || registry == nil {
		return errNotConfigured
	}

	name := args[0]
	fn, err := registry.Get(name)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	outcome, err := runner.Run(ctx, name, domain.ParseArgs(args[1:]))
	if err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}

	if outcome.Warning != nil {
		cmd.PrintErrf("warning: %v\n", outcome.Warning)
	}

	if runJSON {
		out := runOutput{
			Function: outcome.Function,
			Args:     outcome.ArgumentKey,
			RecordID: outcome.RecordID,
			Cached:   outcome.Cached,
			Result:   json.RawMessage(outcome.Result),
		}
		if outcome.Warning != nil {
			out.Warning = outcome.Warning.Error()
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outcome: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cached := ""
	if outcome.Cached {
		cached = " (cached)"
	}
	cmd.Printf("%s%s = %s%s\n", name, outcome.ArgumentKey, fn.Render(outcome.Result), cached)
	return nil
}
