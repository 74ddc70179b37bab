package tracker

import "time"

const (
	introSkipBefore = 5 * time.Second
	introSkipAfter  = 15 * time.Second
)

// Rules holds the qualification thresholds for counting a play.
type Rules struct {
	MinPlay    time.Duration // absolute floor
	MinPercent float64       // share of track duration
	LongPlay   time.Duration // long-track override
	LocalOnly  bool          // drop non-local episodes
}

// DefaultRules mirrors scrobble conventions: 30 seconds minimum, then
// half the track or four minutes.
func DefaultRules() Rules {
	return Rules{
		MinPlay:    30 * time.Second,
		MinPercent: 0.5,
		LongPlay:   240 * time.Second,
		LocalOnly:  true,
	}
}

// Episode is the finalized summary of one qualifying playback episode,
// ready to be enriched with context and persisted.
type Episode struct {
	Identity TrackIdentity
	Player   string // bus name without the MPRIS prefix
	IsLocal  bool
	PlayedMS int64

	SeekCount      int
	IntroSkipped   bool
	SeekForwardMS  int64
	SeekBackwardMS int64
}

// Machine tracks what one player is doing right now. It lives as long as
// its player is on the bus and is only ever touched by the event loop.
type Machine struct {
	player string // full bus name
	rules  Rules
	local  *Classifier
	now    func() time.Time

	ident        *TrackIdentity
	isLocal      bool
	playing      bool
	episodeStart time.Time // zero while not playing

	seekCount    int
	introSkipped bool
	seekForward  time.Duration
	seekBackward time.Duration
	lastPosition time.Duration // only used to compute seek deltas
}

func newMachine(player string, rules Rules, local *Classifier, now func() time.Time) *Machine {
	return &Machine{
		player: player,
		rules:  rules,
		local:  local,
		now:    now,
	}
}

// Identity returns the current track identity, or nil when no track is
// loaded.
func (m *Machine) Identity() *TrackIdentity {
	return m.ident
}

// Playing reports whether the player is currently in the playing state.
func (m *Machine) Playing() bool {
	return m.playing
}

// IsLocal reports whether the current episode plays local media.
func (m *Machine) IsLocal() bool {
	return m.isLocal
}

// OnMetadata adopts a new track identity. If an episode is playing, it is
// finalized first; the returned episode is non-nil when it qualifies.
func (m *Machine) OnMetadata(id TrackIdentity) *Episode {
	var done *Episode
	if m.playing {
		done = m.qualify()
	}

	m.ident = &id
	m.isLocal = m.local.IsLocal(id.URL, m.player)
	m.resetCounters()

	if m.playing {
		m.episodeStart = m.now()
	} else {
		m.episodeStart = time.Time{}
	}

	return done
}

// OnStatus applies a playback status change. Pausing or stopping a playing
// episode finalizes it; the returned episode is non-nil when it qualifies.
func (m *Machine) OnStatus(st Status) *Episode {
	switch {
	case st == StatusPlaying && !m.playing:
		m.playing = true
		m.episodeStart = m.now()

	case (st == StatusPaused || st == StatusStopped) && m.playing:
		done := m.qualify()
		m.playing = false
		m.episodeStart = time.Time{}
		if st == StatusStopped {
			// Stop unloads the track; pause keeps it
			m.ident = nil
			m.isLocal = false
			m.resetCounters()
		}
		return done
	}
	return nil
}

// OnSeek accumulates a position jump. Play/pause state is unaffected.
func (m *Machine) OnSeek(pos time.Duration) {
	m.seekCount++

	delta := pos - m.lastPosition
	if delta > 0 {
		m.seekForward += delta
	} else {
		m.seekBackward += -delta
	}

	// Jumping past the first 15 seconds from near the start counts as
	// skipping the intro, once per episode.
	if m.lastPosition < introSkipBefore && pos > introSkipAfter {
		m.introSkipped = true
	}

	m.lastPosition = pos
}

// OnRemove finalizes a playing episode before the machine is destroyed.
func (m *Machine) OnRemove() *Episode {
	if !m.playing {
		return nil
	}
	return m.qualify()
}

// Flush finalizes a playing episode for shutdown. After a flush the
// episode is spent: a second flush yields nothing.
func (m *Machine) Flush() *Episode {
	if !m.playing {
		return nil
	}
	done := m.qualify()
	m.playing = false
	m.episodeStart = time.Time{}
	return done
}

// shouldLog is the qualification predicate. played time is wall-clock
// since the current episode start: a pause collapsed by the player into no
// status change counts as continuous listening (accepted approximation).
func (m *Machine) shouldLog(now time.Time) bool {
	if m.ident == nil || m.ident.Title == "" || m.episodeStart.IsZero() {
		return false
	}
	if m.rules.LocalOnly && !m.isLocal {
		return false
	}

	played := now.Sub(m.episodeStart)
	if played < m.rules.MinPlay {
		return false
	}

	// If duration is unknown, the floor is enough
	if m.ident.Duration == 0 {
		return true
	}

	if played >= time.Duration(float64(m.ident.Duration)*m.rules.MinPercent) {
		return true
	}
	if played >= m.rules.LongPlay {
		return true
	}

	return false
}

// qualify returns the episode summary when the current episode passes
// shouldLog, nil otherwise. It does not mutate state.
func (m *Machine) qualify() *Episode {
	now := m.now()
	if !m.shouldLog(now) {
		return nil
	}

	return &Episode{
		Identity:       *m.ident,
		Player:         ShortPlayerName(m.player),
		IsLocal:        m.isLocal,
		PlayedMS:       now.Sub(m.episodeStart).Milliseconds(),
		SeekCount:      m.seekCount,
		IntroSkipped:   m.introSkipped,
		SeekForwardMS:  m.seekForward.Milliseconds(),
		SeekBackwardMS: m.seekBackward.Milliseconds(),
	}
}

func (m *Machine) resetCounters() {
	m.seekCount = 0
	m.introSkipped = false
	m.seekForward = 0
	m.seekBackward = 0
	m.lastPosition = 0
}
