package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List registered functions",
	Args:  cobra.NoArgs,
	RunE:  runFunctions,
}

func init() {
	rootCmd.AddCommand(functionsCmd)
}

func runFunctions(cmd *cobra.Command, _ []string) error {
	if registry == nil {
		return errNotConfigured
	}

	fns := registry.List()
	if len(fns) == 0 {
		cmd.Println("No functions registered.")
		return nil
	}

	cmd.Println("Functions:")
	cmd.Println()
	for i := range fns {
		params := strings.Join(fns[i].Params, " ")
		cmd.Printf("  %-10s %s\n", fns[i].Name, params)
		if fns[i].Description != "" {
			cmd.Printf("             %s\n", fns[i].Description)
		}
	}
	return nil
}
