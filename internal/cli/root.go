package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "psychobot",
	Short: "Conversational self-assessment survey bot",
	Long: `psychobot serves Likert-scale self-assessment questionnaires to chat
users, scores answers into trait buckets, checks response quality, and
stores results for HR reporting.

Surveys are JSON files in the survey directory; reload them at runtime
through the admin API.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
}
