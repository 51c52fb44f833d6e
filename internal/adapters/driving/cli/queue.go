package cli

import (
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show queued and running invocations per function",
	Long: `Shows how many invocations of each function are queued or running in
the execution substrate. Counts are snapshots and may be stale.`,
	Args: cobra.NoArgs,
	RunE: runQueue,
}

func init() {
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, _ []string) error {
	if queueReporter == nil || registry == nil {
		return errNotConfigured
	}

	depths := queueReporter.Snapshot(cmd.Context())

	cmd.Println("Queue depth:")
	cmd.Println()
	for _, fn := range registry.List() {
		cmd.Printf("  %-10s %d\n", fn.Name, depths[fn.Name])
	}
	return nil
}
