// Package cmd implements the CLI commands for CardSync using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var flagVerbose bool

// logger is shared by all commands; --verbose lowers it to debug.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.00",
})

var rootCmd = &cobra.Command{
	Use:   "cardsync",
	Short: "CardSync — convert content trees into knowledge-base collections",
	Long: `CardSync ingests pages into a content tree, normalizes the tree into
board groups, boards, sections, and cards, and packages the result as an
uploadable collection bundle.

Usage:
  cardsync sync <url> [flags]`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
