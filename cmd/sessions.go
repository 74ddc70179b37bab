package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tom-bleher/music-analytics/internal/analytics"
	"github.com/tom-bleher/music-analytics/internal/report"
)

var sessionsDays int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show listening sessions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var from time.Time
		if sessionsDays > 0 {
			from = time.Now().AddDate(0, 0, -sessionsDays)
		}

		plays, err := store.Plays(from, time.Time{})
		if err != nil {
			return err
		}

		gap := time.Duration(cfg.GetSessionsConfig().GapMinutes) * time.Minute
		sessions := analytics.Sessions(plays, gap)

		fmt.Fprintln(cmd.OutOrStdout(), report.New().Sessions(sessions))
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsDays, "days", 7, "how many days back to look (0 for everything)")
	rootCmd.AddCommand(sessionsCmd)
}
