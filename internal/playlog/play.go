// Package playlog persists finalized listens and serves them back for
// analytics. One row per qualifying play; rows are append-only and new
// columns may be added but existing ones never change meaning.
package playlog

import "time"

// Play is one finalized listen.
type Play struct {
	ID        int64
	Timestamp time.Time

	// Track identity
	Title      string
	Artist     string
	Album      string
	DurationMS int64 // 0 means unknown
	PlayedMS   int64
	FilePath   string

	// Extended tags
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

	// Seek statistics
	SeekCount      int
	IntroSkipped   bool
	SeekForwardMS  int64
	SeekBackwardMS int64

	// Listening context at finalize time
	HourOfDay    int
	DayOfWeek    int // 0=Sunday .. 6=Saturday
	IsWeekend    bool
	Season       string
	ActiveWindow *string
	ScreenOn     *bool
	OnBattery    *bool

	Player  string
	IsLocal bool
}

// PlayedDuration returns the played time as a duration.
func (p *Play) PlayedDuration() time.Duration {
	return time.Duration(p.PlayedMS) * time.Millisecond
}

// ListenedMS returns the best estimate of time spent on this play:
// played time when known, falling back to track duration.
func (p *Play) ListenedMS() int64 {
	if p.PlayedMS > 0 {
		return p.PlayedMS
	}
	return p.DurationMS
}
