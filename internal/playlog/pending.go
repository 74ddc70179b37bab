package playlog

import (
	"database/sql"
	"time"

	dbutil "github.com/tom-bleher/music-analytics/internal/db"
)

// PendingScrobble is a scrobble submission queued for retry.
type PendingScrobble struct {
	ID           int64
	Artist       string
	Track        string
	Album        string
	DurationSecs int
	Timestamp    time.Time
	MBTrackID    string
	Attempts     int
	LastError    string
	CreatedAt    time.Time
}

// AddPendingScrobble queues a scrobble for later submission.
func (s *Store) AddPendingScrobble(p PendingScrobble) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO pending_scrobbles
		(artist, track, album, duration_seconds, timestamp, mb_track_id, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, '', ?)
	`, p.Artist, p.Track, dbutil.StringOrNull(p.Album), p.DurationSecs,
		p.Timestamp.Unix(), dbutil.StringOrNull(p.MBTrackID), now)
	return err
}

// PendingScrobbles returns all queued scrobbles ordered by creation time.
func (s *Store) PendingScrobbles() ([]PendingScrobble, error) {
	rows, err := s.db.Query(`
		SELECT id, artist, track, album, duration_seconds, timestamp, mb_track_id, attempts, last_error, created_at
		FROM pending_scrobbles
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingScrobble
	for rows.Next() {
		var p PendingScrobble
		var album, mbTrackID, lastError sql.NullString
		var timestamp, createdAt int64

		err := rows.Scan(
			&p.ID, &p.Artist, &p.Track, &album, &p.DurationSecs,
			&timestamp, &mbTrackID, &p.Attempts, &lastError, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		p.Album = dbutil.NullStringValue(album)
		p.MBTrackID = dbutil.NullStringValue(mbTrackID)
		p.LastError = dbutil.NullStringValue(lastError)
		p.Timestamp = time.Unix(timestamp, 0)
		p.CreatedAt = time.Unix(createdAt, 0)

		pending = append(pending, p)
	}

	return pending, rows.Err()
}

// DeletePendingScrobble removes a successfully submitted scrobble.
func (s *Store) DeletePendingScrobble(id int64) error {
	_, err := s.db.Exec(`DELETE FROM pending_scrobbles WHERE id = ?`, id)
	return err
}

// UpdatePendingScrobbleAttempt increments attempt count and records the error.
func (s *Store) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	_, err := s.db.Exec(`
		UPDATE pending_scrobbles
		SET attempts = attempts + 1, last_error = ?
		WHERE id = ?
	`, errMsg, id)
	return err
}

// DeleteOldPendingScrobbles removes queued scrobbles older than maxAge.
func (s *Store) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).Unix()
	_, err := s.db.Exec(`DELETE FROM pending_scrobbles WHERE created_at < ?`, cutoff)
	return err
}
