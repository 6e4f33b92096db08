package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newLogger builds the stderr logger honoring --quiet and --color.
func newLogger(cmd *cobra.Command) *log.Logger {
	quiet, _ := cmd.Flags().GetBool("quiet")
	level := log.InfoLevel
	if quiet {
		level = log.ErrorLevel
	}
	// The logger styles itself only when stderr is a terminal; --color=off
	// for diagnostics is handled in diagfmt, not here.
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
}
