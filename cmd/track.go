package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tom-bleher/music-analytics/internal/mpris"
	"github.com/tom-bleher/music-analytics/internal/probe"
	"github.com/tom-bleher/music-analytics/internal/scrobble"
	"github.com/tom-bleher/music-analytics/internal/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run the playback tracking daemon",
	Long: `Watches MPRIS players on the session bus and logs every qualifying
play to the listens database. Runs until interrupted; in-flight episodes
are flushed on shutdown.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		tc := cfg.GetTrackerConfig()
		params := tracker.RegistryParams{
			Rules: tracker.Rules{
				MinPlay:    time.Duration(tc.MinPlaySeconds) * time.Second,
				MinPercent: tc.MinPlayPercent,
				LongPlay:   time.Duration(tc.LongPlaySeconds) * time.Second,
				LocalOnly:  *tc.LocalOnly,
			},
			Locality: tracker.NewClassifier(tc.LocalPlayers),
			Sampler:  probe.NewSystem(),
			Appender: store,
			Log:      log,
		}

		if cfg.HasLastfmConfig() && cfg.Lastfm.SessionKey != "" {
			client := scrobble.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
			client.SetSessionKey(cfg.Lastfm.SessionKey)
			forwarder := scrobble.NewForwarder(client, store, log)
			forwarder.FlushPending()
			params.Forwarder = forwarder
			log.Info().Msg("last.fm scrobbling enabled")
		}

		src, err := mpris.Connect(log)
		if err != nil {
			return err
		}
		defer src.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return tracker.NewRegistry(params).Run(ctx, src)
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
}
