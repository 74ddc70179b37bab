package tracker

import (
	"net/url"
	"strings"
)

// defaultLocalPlayers are players that only play local files and may not
// report an xesam:url for the current track.
var defaultLocalPlayers = []string{
	"io.bassi.Amberol",   // Amberol - GNOME local music player
	"org.gnome.Lollypop", // Lollypop
	"org.gnome.Music",    // GNOME Music
	"audacious",          // Audacious
	"deadbeef",           // DeaDBeeF
	"quodlibet",          // Quod Libet
	"clementine",         // Clementine
	"strawberry",         // Strawberry
	"rhythmbox",          // Rhythmbox (mostly local)
	"elisa",              // Elisa
	"sayonara",           // Sayonara
	"cantata",            // Cantata (MPD client)
}

// Classifier decides whether an episode's source is a local file or a
// network/streaming origin.
type Classifier struct {
	localPlayers map[string]struct{}
}

// NewClassifier builds a classifier from the built-in local-only player set
// plus any extra player names from configuration.
func NewClassifier(extraPlayers []string) *Classifier {
	players := make(map[string]struct{}, len(defaultLocalPlayers)+len(extraPlayers))
	for _, p := range defaultLocalPlayers {
		players[p] = struct{}{}
	}
	for _, p := range extraPlayers {
		players[p] = struct{}{}
	}
	return &Classifier{localPlayers: players}
}

// IsLocal reports whether a track locator from the given player points at
// local media. file:// URLs and absolute paths are local; tracks from
// allowlisted local-only players are local even without a URL; everything
// else (http, spotify, missing URL on an unknown player) is not.
func (c *Classifier) IsLocal(rawURL, playerBusName string) bool {
	player := ShortPlayerName(playerBusName)
	if _, ok := c.localPlayers[player]; ok {
		return true
	}

	if rawURL == "" {
		// No URL and not a known local player - likely a streaming service
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme == "file" {
		return true
	}

	// Some players provide raw paths
	if u.Scheme == "" && strings.HasPrefix(rawURL, "/") {
		return true
	}

	return false
}
