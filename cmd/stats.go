package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tom-bleher/music-analytics/internal/report"
)

var (
	statsWeek    bool
	statsMonth   bool
	statsYear    bool
	statsAllTime bool
	statsLimit   int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show listening statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		from, period := statsRange()
		var to time.Time

		r := report.New()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, r.Title(period))
		fmt.Fprintln(out)

		totals, err := store.Totals(from, to)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.Overview(totals))
		if totals.PlayCount == 0 {
			return nil
		}

		artists, err := store.TopArtists(from, to, statsLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.TopArtists(artists))

		albums, err := store.TopAlbums(from, to, statsLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.TopAlbums(albums))

		tracks, err := store.TopTracks(from, to, statsLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.TopTracks(tracks))

		hours, err := store.HourlyCounts(from, to)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.Hours(hours))

		weekdays, err := store.WeekdayCounts(from, to)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.Weekdays(weekdays))

		biggest, err := store.BiggestDay(from, to)
		if err != nil {
			return err
		}
		if s := r.BiggestDay(biggest); s != "" {
			fmt.Fprintln(out, s)
		}

		return nil
	},
}

// statsRange maps the period flags to a start time; the zero time means no
// lower bound. The most specific flag wins.
func statsRange() (time.Time, string) {
	now := time.Now()
	switch {
	case statsWeek:
		return now.AddDate(0, 0, -7), "last 7 days"
	case statsMonth:
		return now.AddDate(0, -1, 0), "last month"
	case statsYear:
		return now.AddDate(-1, 0, 0), "last year"
	default:
		return time.Time{}, "all time"
	}
}

func init() {
	statsCmd.Flags().BoolVar(&statsWeek, "week", false, "last 7 days")
	statsCmd.Flags().BoolVar(&statsMonth, "month", false, "last month")
	statsCmd.Flags().BoolVar(&statsYear, "year", false, "last year")
	statsCmd.Flags().BoolVar(&statsAllTime, "all-time", false, "everything on record (default)")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "list length for top artists, albums and tracks")
	statsCmd.MarkFlagsMutuallyExclusive("week", "month", "year", "all-time")
	rootCmd.AddCommand(statsCmd)
}
