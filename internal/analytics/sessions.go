package analytics

import (
	"time"

	"github.com/tom-bleher/music-analytics/internal/playlog"
)

// DefaultSessionGap separates listening sessions: a new session starts when
// more than this much silence passed since the previous track finished.
const DefaultSessionGap = 30 * time.Minute

// Session is one contiguous stretch of listening.
type Session struct {
	Start      time.Time
	End        time.Time // end of the last track, not its start
	Tracks     int
	Artists    int // distinct artists
	ListenedMS int64
}

// Duration is the wall-clock span of the session.
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Sessions segments plays into listening sessions. Plays must be ordered by
// timestamp; the silence before a play is measured from when the previous
// track finished playing, not when it started. A non-positive gap falls back
// to the default.
func Sessions(plays []playlog.Play, gap time.Duration) []Session {
	if len(plays) == 0 {
		return []Session{}
	}
	if gap <= 0 {
		gap = DefaultSessionGap
	}

	var sessions []Session
	var current []playlog.Play

	for i, p := range plays {
		if i > 0 {
			prev := plays[i-1]
			prevEnd := prev.Timestamp.Add(prev.PlayedDuration())
			if p.Timestamp.Sub(prevEnd) > gap {
				sessions = append(sessions, summarize(current))
				current = nil
			}
		}
		current = append(current, p)
	}
	sessions = append(sessions, summarize(current))

	return sessions
}

func summarize(plays []playlog.Play) Session {
	last := plays[len(plays)-1]
	s := Session{
		Start:  plays[0].Timestamp,
		End:    last.Timestamp.Add(last.PlayedDuration()),
		Tracks: len(plays),
	}

	artists := make(map[string]struct{})
	for _, p := range plays {
		if p.Artist != "" {
			artists[p.Artist] = struct{}{}
		}
		s.ListenedMS += p.ListenedMS()
	}
	s.Artists = len(artists)

	return s
}
