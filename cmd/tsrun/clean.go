package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsrun/internal/session"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove stale session trees",
	Long: `Remove session trees left behind by crashed or killed runs. Sessions
belonging to still-running tsrun processes are kept.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)
	removed, err := session.NewManager(logger).Sweep()
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	if len(removed) == 0 {
		fmt.Fprintln(os.Stdout, "no stale sessions")
		return nil
	}
	for _, root := range removed {
		fmt.Fprintf(os.Stdout, "removed %s\n", root)
	}
	return nil
}
