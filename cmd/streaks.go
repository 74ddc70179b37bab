package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tom-bleher/music-analytics/internal/analytics"
	"github.com/tom-bleher/music-analytics/internal/report"
)

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show consecutive-day listening streaks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		dates, err := store.PlayDates(time.Time{}, time.Time{})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.New().Streaks(analytics.Streaks(dates, time.Now())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streaksCmd)
}
