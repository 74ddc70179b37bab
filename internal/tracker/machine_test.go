package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestMachine(clock *testClock, rules Rules) *Machine {
	return newMachine("org.mpris.MediaPlayer2.testplayer", rules, NewClassifier(nil), clock.Now)
}

func localTrack(title string, duration time.Duration) TrackIdentity {
	return TrackIdentity{
		Title:    title,
		Artist:   "Artist",
		Album:    "Album",
		Duration: duration,
		URL:      "file:///music/" + title + ".flac",
	}
}

func TestShouldLogPredicate(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration // 0 = unknown
		played   time.Duration
		want     bool
	}{
		{"under 30s always rejected", 100 * time.Second, 29 * time.Second, false},
		{"under 30s rejected even without duration", 0, 10 * time.Second, false},
		{"30s enough when duration unknown", 0, 30 * time.Second, true},
		{"half of short track accepted", 100 * time.Second, 50 * time.Second, true},
		{"just under half of short track rejected", 100 * time.Second, 45 * time.Second, false},
		{"long track under half and under 4min rejected", 20 * time.Minute, 3 * time.Minute, false},
		{"long track 4min accepted", 20 * time.Minute, 4 * time.Minute, true},
		{"full playback accepted", 3 * time.Minute, 3 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newTestClock()
			m := newTestMachine(clock, DefaultRules())

			m.OnMetadata(localTrack("song", tt.duration))
			m.OnStatus(StatusPlaying)
			clock.Advance(tt.played)

			ep := m.OnStatus(StatusPaused)
			if tt.want {
				require.NotNil(t, ep, "episode should qualify")
				assert.Equal(t, tt.played.Milliseconds(), ep.PlayedMS)
			} else {
				assert.Nil(t, ep, "episode should not qualify")
			}
		})
	}
}

func TestShouldLogRequiresTitle(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(TrackIdentity{URL: "file:///music/untitled.flac"})
	m.OnStatus(StatusPlaying)
	clock.Advance(5 * time.Minute)

	assert.Nil(t, m.OnStatus(StatusPaused), "untitled episode never qualifies")
}

func TestLocalOnlyRejectsStreams(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(TrackIdentity{Title: "stream", URL: "https://example.com/radio"})
	m.OnStatus(StatusPlaying)
	clock.Advance(5 * time.Minute)

	assert.Nil(t, m.OnStatus(StatusPaused), "non-local episode rejected in local-only mode")

	// Same episode qualifies with local-only disabled
	rules := DefaultRules()
	rules.LocalOnly = false
	m2 := newTestMachine(clock, rules)
	m2.OnMetadata(TrackIdentity{Title: "stream", URL: "https://example.com/radio"})
	m2.OnStatus(StatusPlaying)
	clock.Advance(5 * time.Minute)

	ep := m2.OnStatus(StatusPaused)
	require.NotNil(t, ep)
	assert.False(t, ep.IsLocal)
}

func TestMetadataChangeFinalizesOutgoingEpisodeOnce(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("first", 3*time.Minute))
	m.OnStatus(StatusPlaying)
	clock.Advance(2 * time.Minute)

	// Track change, new title absent: old episode still finalizes
	ep := m.OnMetadata(TrackIdentity{URL: "file:///music/next.flac"})
	require.NotNil(t, ep)
	assert.Equal(t, "first", ep.Identity.Title)
	assert.Equal(t, (2 * time.Minute).Milliseconds(), ep.PlayedMS)

	// Still playing, fresh episode start: pausing immediately yields nothing
	assert.True(t, m.Playing())
	assert.Nil(t, m.OnStatus(StatusPaused))
}

func TestMetadataChangeWhilePausedStartsNoEpisode(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("first", 3*time.Minute))
	assert.Nil(t, m.OnMetadata(localTrack("second", 3*time.Minute)), "nothing playing, nothing to finalize")
	assert.False(t, m.Playing())
	assert.True(t, m.episodeStart.IsZero())
}

func TestSeekAccumulationIsDirectional(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("song", 5*time.Minute))
	m.OnStatus(StatusPlaying)

	m.OnSeek(10 * time.Second) // 0 -> 10s, forward
	m.OnSeek(2 * time.Second)  // 10s -> 2s, backward 8s

	clock.Advance(3 * time.Minute)
	ep := m.OnStatus(StatusPaused)
	require.NotNil(t, ep)

	assert.Equal(t, 2, ep.SeekCount)
	assert.Equal(t, int64(10_000), ep.SeekForwardMS)
	assert.Equal(t, int64(8_000), ep.SeekBackwardMS)
}

func TestIntroSkipped(t *testing.T) {
	tests := []struct {
		name string
		from time.Duration
		to   time.Duration
		want bool
	}{
		{"from start past 15s", 0, 20 * time.Second, true},
		{"from 4s past 15s", 4 * time.Second, 16 * time.Second, true},
		{"mid-track seek never counts", 20 * time.Second, 30 * time.Second, false},
		{"near start but not past 15s", 2 * time.Second, 14 * time.Second, false},
		{"from 5s exactly does not count", 5 * time.Second, 20 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newTestClock()
			m := newTestMachine(clock, DefaultRules())
			m.OnMetadata(localTrack("song", 5*time.Minute))
			m.OnStatus(StatusPlaying)

			m.OnSeek(tt.from)
			m.introSkipped = false // isolate the second seek
			m.OnSeek(tt.to)

			assert.Equal(t, tt.want, m.introSkipped)
		})
	}
}

func TestSeekCountersResetOnTrackChange(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("first", 5*time.Minute))
	m.OnStatus(StatusPlaying)
	m.OnSeek(30 * time.Second)
	clock.Advance(3 * time.Minute)

	m.OnMetadata(localTrack("second", 5*time.Minute))
	clock.Advance(3 * time.Minute)

	ep := m.OnStatus(StatusPaused)
	require.NotNil(t, ep)
	assert.Zero(t, ep.SeekCount)
	assert.Zero(t, ep.SeekForwardMS)
}

func TestPauseResumeCountsWallClock(t *testing.T) {
	// A pause/resume collapsed by the player into no status change is
	// treated as continuous listening: played time is wall-clock since the
	// last transition into Playing. Accepted approximation, not a bug.
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("song", 10*time.Minute))
	m.OnStatus(StatusPlaying)
	clock.Advance(4 * time.Minute) // includes any silent pause

	ep := m.OnStatus(StatusPaused)
	require.NotNil(t, ep)
	assert.Equal(t, (4 * time.Minute).Milliseconds(), ep.PlayedMS)
}

func TestExplicitPauseResumeRestartsEpisodeClock(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("song", 10*time.Minute))
	m.OnStatus(StatusPlaying)
	clock.Advance(20 * time.Second)

	assert.Nil(t, m.OnStatus(StatusPaused), "20s does not qualify")
	clock.Advance(1 * time.Hour)

	m.OnStatus(StatusPlaying)
	clock.Advance(5 * time.Minute)

	ep := m.OnStatus(StatusPaused)
	require.NotNil(t, ep)
	assert.Equal(t, (5 * time.Minute).Milliseconds(), ep.PlayedMS, "paused hour does not accumulate")
}

func TestStopUnloadsTrack(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("song", 3*time.Minute))
	m.OnStatus(StatusPlaying)
	clock.Advance(2 * time.Minute)

	ep := m.OnStatus(StatusStopped)
	require.NotNil(t, ep)
	assert.Nil(t, m.Identity(), "stop resets the episode to empty")

	// Paused keeps the track loaded
	m.OnMetadata(localTrack("song2", 3*time.Minute))
	m.OnStatus(StatusPlaying)
	clock.Advance(2 * time.Minute)
	m.OnStatus(StatusPaused)
	require.NotNil(t, m.Identity())
	assert.Equal(t, "song2", m.Identity().Title)
}

func TestFlushIsSpentAfterFirstUse(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("song", 3*time.Minute))
	m.OnStatus(StatusPlaying)
	clock.Advance(2 * time.Minute)

	require.NotNil(t, m.Flush())
	assert.Nil(t, m.Flush(), "second flush yields nothing")
}

func TestOnRemoveFinalizesPlayingEpisode(t *testing.T) {
	clock := newTestClock()
	m := newTestMachine(clock, DefaultRules())

	m.OnMetadata(localTrack("song", 3*time.Minute))
	m.OnStatus(StatusPlaying)
	clock.Advance(2 * time.Minute)

	ep := m.OnRemove()
	require.NotNil(t, ep)
	assert.Equal(t, "testplayer", ep.Player)
}
