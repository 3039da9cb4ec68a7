// Package cli implements the KeepWell command-line interface using Cobra.
// Each subcommand maps to a daemon capability (serve, status, record).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keepwell",
	Short: "KeepWell — wellbeing milestones and badges",
	Long: `KeepWell turns daily self-reported wellbeing scores into milestone
badges. Consistent weeks across diet, exercise and medication adherence
climb a bronze/silver/gold/platinum ladder per category.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
