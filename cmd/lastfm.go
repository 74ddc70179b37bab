package cmd

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tom-bleher/music-analytics/internal/scrobble"
)

var lastfmAuthCmd = &cobra.Command{
	Use:   "lastfm-auth",
	Short: "Authorize Last.fm scrobbling",
	Long: `Runs the Last.fm desktop authorization flow and prints the session
key to put under [lastfm] in the config file. Requires api_key and
api_secret to be configured already.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.HasLastfmConfig() {
			return errors.New("set lastfm.api_key and lastfm.api_secret in the config first")
		}

		client := scrobble.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		token, err := client.GetToken()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Authorize this application in your browser:")
		fmt.Fprintln(out, "  "+client.AuthURL(token))
		fmt.Fprint(out, "Press Enter when done... ")

		reader := bufio.NewReader(cmd.InOrStdin())
		if _, err := reader.ReadString('\n'); err != nil {
			return err
		}

		sessionKey, err := client.GetSession(token)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Add to your config file:")
		fmt.Fprintln(out, "  [lastfm]")
		fmt.Fprintln(out, "  session_key = \""+sessionKey+"\"")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lastfmAuthCmd)
}
