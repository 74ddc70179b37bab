package scrobble

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom-bleher/music-analytics/internal/playlog"
)

type fakeSubmitter struct {
	err    error
	tracks []Track
}

func (s *fakeSubmitter) Scrobble(track Track) error {
	if s.err != nil {
		return s.err
	}
	s.tracks = append(s.tracks, track)
	return nil
}

type fakeQueue struct {
	pending []playlog.PendingScrobble
	nextID  int64
}

func (q *fakeQueue) AddPendingScrobble(p playlog.PendingScrobble) error {
	q.nextID++
	p.ID = q.nextID
	q.pending = append(q.pending, p)
	return nil
}

func (q *fakeQueue) PendingScrobbles() ([]playlog.PendingScrobble, error) {
	return append([]playlog.PendingScrobble(nil), q.pending...), nil
}

func (q *fakeQueue) DeletePendingScrobble(id int64) error {
	for i, p := range q.pending {
		if p.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *fakeQueue) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	for i := range q.pending {
		if q.pending[i].ID == id {
			q.pending[i].Attempts++
			q.pending[i].LastError = errMsg
		}
	}
	return nil
}

func (q *fakeQueue) DeleteOldPendingScrobbles(_ time.Duration) error {
	return nil
}

func testPlay(artist, title string) playlog.Play {
	return playlog.Play{
		Timestamp:  time.Date(2024, 6, 1, 12, 4, 0, 0, time.UTC),
		Title:      title,
		Artist:     artist,
		Album:      "Album",
		DurationMS: 240_000,
		PlayedMS:   240_000,
	}
}

func newTestForwarder(sub *fakeSubmitter, q *fakeQueue) *Forwarder {
	return NewForwarder(sub, q, zerolog.Nop())
}

func TestForwardSubmitsPlaybackStartTime(t *testing.T) {
	sub := &fakeSubmitter{}
	f := newTestForwarder(sub, &fakeQueue{})

	f.Forward(testPlay("Artist", "Song"))

	require.Len(t, sub.tracks, 1)
	tr := sub.tracks[0]
	assert.Equal(t, "Song", tr.Title)
	assert.Equal(t, 240*time.Second, tr.Duration)
	// Play was finalized at 12:04 after 4 minutes of playback
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), tr.Timestamp)
}

func TestForwardSkipsUnscrobblableTracks(t *testing.T) {
	sub := &fakeSubmitter{}
	q := &fakeQueue{}
	f := newTestForwarder(sub, q)

	f.Forward(testPlay("", "Song"))
	f.Forward(testPlay("Artist", ""))

	assert.Empty(t, sub.tracks)
	assert.Empty(t, q.pending)
}

func TestForwardQueuesOnFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("network down")}
	q := &fakeQueue{}
	f := newTestForwarder(sub, q)

	f.Forward(testPlay("Artist", "Song"))

	require.Len(t, q.pending, 1)
	assert.Equal(t, "Song", q.pending[0].Track)
	assert.Equal(t, 240, q.pending[0].DurationSecs)
}

func TestSuccessDrainsQueue(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("network down")}
	q := &fakeQueue{}
	f := newTestForwarder(sub, q)

	f.Forward(testPlay("Artist", "One"))
	f.Forward(testPlay("Artist", "Two"))
	require.Len(t, q.pending, 2)

	sub.err = nil
	f.Forward(testPlay("Artist", "Three"))

	assert.Empty(t, q.pending, "queued scrobbles submitted after recovery")
	require.Len(t, sub.tracks, 3)
	assert.Equal(t, "Three", sub.tracks[0].Title)
	assert.Equal(t, "One", sub.tracks[1].Title)
	assert.Equal(t, "Two", sub.tracks[2].Title)
}

func TestFlushStopsAtFirstFailure(t *testing.T) {
	q := &fakeQueue{}
	f := newTestForwarder(&fakeSubmitter{err: errors.New("down")}, q)

	f.Forward(testPlay("Artist", "One"))
	f.Forward(testPlay("Artist", "Two"))

	f.FlushPending()

	require.Len(t, q.pending, 2)
	assert.Equal(t, 1, q.pending[0].Attempts, "only the first entry was attempted")
	assert.Zero(t, q.pending[1].Attempts)
}
