package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"trade-surveillance/internal/app"
)

var (
	analyzeInput    string
	analyzeReport   string
	analyzeActivity string
	analyzePrint    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an event log for suspicious activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeInput == "" {
			return errors.New("--input is required")
		}

		opts := app.AnalyzeOptions{
			InputPath:    analyzeInput,
			ReportPath:   analyzeReport,
			ActivityPath: analyzeActivity,
			Print:        analyzePrint,
		}

		return getApp().Analyze(cmd.Context(), opts)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Path to JSONL event log")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "Path to write compliance report JSON")
	analyzeCmd.Flags().StringVar(&analyzeActivity, "activity", "", "Path to write activity report JSON")
	analyzeCmd.Flags().BoolVar(&analyzePrint, "print", false, "Print the compliance report to stdout")
}
