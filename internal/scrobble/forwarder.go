package scrobble

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tom-bleher/music-analytics/internal/playlog"
)

const maxPendingAge = 14 * 24 * time.Hour

// Submitter submits a single scrobble.
type Submitter interface {
	Scrobble(track Track) error
}

// Queue persists scrobbles that could not be submitted.
type Queue interface {
	AddPendingScrobble(p playlog.PendingScrobble) error
	PendingScrobbles() ([]playlog.PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error
}

// Forwarder submits persisted plays to Last.fm. Failed submissions land in
// the pending queue and are retried after the next success.
type Forwarder struct {
	submit Submitter
	queue  Queue
	log    zerolog.Logger
}

// NewForwarder creates a forwarder over a submitter and a retry queue.
func NewForwarder(submit Submitter, queue Queue, log zerolog.Logger) *Forwarder {
	return &Forwarder{submit: submit, queue: queue, log: log}
}

// Forward submits one play. Plays without artist or title cannot be
// scrobbled and are skipped.
func (f *Forwarder) Forward(p playlog.Play) {
	if p.Artist == "" || p.Title == "" {
		return
	}

	track := Track{
		Artist:        p.Artist,
		Title:         p.Title,
		Album:         p.Album,
		AlbumArtist:   p.AlbumArtist,
		Duration:      time.Duration(p.DurationMS) * time.Millisecond,
		Timestamp:     p.Timestamp.Add(-p.PlayedDuration()),
		MBRecordingID: p.MBTrackID,
	}

	if err := f.submit.Scrobble(track); err != nil {
		f.log.Warn().Err(err).
			Str("artist", track.Artist).
			Str("title", track.Title).
			Msg("scrobble failed, queueing for retry")
		f.enqueue(track)
		return
	}

	f.log.Debug().Str("title", track.Title).Msg("scrobbled")
	f.FlushPending()
}

// FlushPending retries queued scrobbles oldest first, stopping at the
// first failure. Entries past the retention window are dropped.
func (f *Forwarder) FlushPending() {
	if err := f.queue.DeleteOldPendingScrobbles(maxPendingAge); err != nil {
		f.log.Error().Err(err).Msg("failed to prune pending scrobbles")
	}

	pending, err := f.queue.PendingScrobbles()
	if err != nil {
		f.log.Error().Err(err).Msg("failed to read pending scrobbles")
		return
	}

	for _, p := range pending {
		track := Track{
			Artist:        p.Artist,
			Title:         p.Track,
			Album:         p.Album,
			Duration:      time.Duration(p.DurationSecs) * time.Second,
			Timestamp:     p.Timestamp,
			MBRecordingID: p.MBTrackID,
		}

		if err := f.submit.Scrobble(track); err != nil {
			if uerr := f.queue.UpdatePendingScrobbleAttempt(p.ID, err.Error()); uerr != nil {
				f.log.Error().Err(uerr).Msg("failed to record scrobble attempt")
			}
			// Last.fm is likely still unreachable; try again later
			return
		}
		if err := f.queue.DeletePendingScrobble(p.ID); err != nil {
			f.log.Error().Err(err).Msg("failed to dequeue scrobble")
			return
		}
		f.log.Info().Str("title", track.Title).Msg("submitted queued scrobble")
	}
}

func (f *Forwarder) enqueue(track Track) {
	err := f.queue.AddPendingScrobble(playlog.PendingScrobble{
		Artist:       track.Artist,
		Track:        track.Title,
		Album:        track.Album,
		DurationSecs: int(track.Duration.Seconds()),
		Timestamp:    track.Timestamp,
		MBTrackID:    track.MBRecordingID,
	})
	if err != nil {
		f.log.Error().Err(err).Msg("failed to queue scrobble")
	}
}
