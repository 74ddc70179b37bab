// Package cmd wires the command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tom-bleher/music-analytics/internal/config"
	"github.com/tom-bleher/music-analytics/internal/logging"
	"github.com/tom-bleher/music-analytics/internal/playlog"
)

var (
	cfg      *config.Config
	log      zerolog.Logger
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "music-analytics",
	Short:        "Track and analyze local music listening over MPRIS",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		log = logging.Setup(cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func openStore() (*playlog.Store, error) {
	if cfg.DBPath != "" {
		return playlog.OpenAt(cfg.DBPath)
	}
	return playlog.Open()
}
