package tracker

import (
	"net/url"
	"strings"
	"time"
)

// Status is a player's playback status.
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// ParseStatus maps an MPRIS PlaybackStatus string to a Status.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "Playing":
		return StatusPlaying, true
	case "Paused":
		return StatusPaused, true
	case "Stopped":
		return StatusStopped, true
	default:
		return StatusStopped, false
	}
}

// TrackIdentity is the immutable identity of the track an episode plays.
// A new identity always starts a new episode.
type TrackIdentity struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration // 0 means unknown
	URL      string        // file or stream locator as reported by the player

	// Optional descriptive tags
	Genre       string
	AlbumArtist string
	TrackNumber int
	DiscNumber  int
	ReleaseDate string
	ArtURL      string
	UserRating  *float64 // 0.0-1.0
	BPM         int
	Composer    string
	MBTrackID   string
}

// SourcePath returns the identity's locator as a storable path: file URLs
// are decoded to plain filesystem paths, anything else passes through.
func (t *TrackIdentity) SourcePath() string {
	if t.URL == "" {
		return ""
	}
	u, err := url.Parse(t.URL)
	if err != nil || u.Scheme != "file" {
		return t.URL
	}
	if p, err := url.PathUnescape(u.Path); err == nil {
		return p
	}
	return u.Path
}

// ShortPlayerName trims the MPRIS bus prefix from a player bus name,
// e.g. "org.mpris.MediaPlayer2.io.bassi.Amberol" -> "io.bassi.Amberol".
func ShortPlayerName(busName string) string {
	return strings.TrimPrefix(busName, MPRISPrefix)
}

// MPRISPrefix is the well-known bus name prefix of media players.
const MPRISPrefix = "org.mpris.MediaPlayer2."
