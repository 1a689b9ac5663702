package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"trade-surveillance/internal/app"
)

var (
	watchInput    string
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze a growing event log at fixed intervals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchInput == "" {
			return errors.New("--input is required")
		}

		opts := app.WatchOptions{
			InputPath: watchInput,
			Interval:  watchInterval,
		}

		return getApp().Watch(cmd.Context(), opts)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "", "Path to JSONL event log")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Analysis interval (defaults to config)")
}
