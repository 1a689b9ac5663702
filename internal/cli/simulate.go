package cli

import (
	"github.com/spf13/cobra"

	"trade-surveillance/internal/app"
)

var (
	simulateAgents int
	simulateSteps  int
	simulateSeed   int64
	simulateLog    string
	simulateReport string
	simulatePrint  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a synthetic trading session and analyze it",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SimulateOptions{
			Agents:     simulateAgents,
			Steps:      simulateSteps,
			Seed:       simulateSeed,
			LogPath:    simulateLog,
			ReportPath: simulateReport,
			Print:      simulatePrint,
		}

		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateAgents, "agents", 0, "Number of trading agents (defaults to config)")
	simulateCmd.Flags().IntVar(&simulateSteps, "steps", 0, "Number of simulation steps (defaults to config)")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Random seed; the same seed reproduces the same session (defaults to config)")
	simulateCmd.Flags().StringVar(&simulateLog, "log", "", "Path to write the generated JSONL event log")
	simulateCmd.Flags().StringVar(&simulateReport, "report", "", "Path to write compliance report JSON")
	simulateCmd.Flags().BoolVar(&simulatePrint, "print", false, "Print the compliance report to stdout")
}
