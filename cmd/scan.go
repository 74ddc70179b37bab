package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tom-bleher/music-analytics/internal/library"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Index local music files",
	Long: `Walks the configured library sources (or the given paths) and keeps
the track index up to date. Unchanged files are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := args
		if len(sources) == 0 {
			sources = cfg.LibrarySources
		}
		if len(sources) == 0 {
			return errors.New("no library sources configured and no paths given")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		lib := library.New(store.DB())
		stats, err := lib.Scan(sources, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scan complete: %d added, %d updated, %d removed, %d unchanged\n",
			stats.Added, stats.Updated, stats.Removed, stats.Unchanged)

		totals, err := lib.Stats()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "library: %s tracks, %s artists, %s albums\n",
			humanize.Comma(int64(totals.Tracks)),
			humanize.Comma(int64(totals.Artists)),
			humanize.Comma(int64(totals.Albums)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
