// Package library maintains an index of the on-disk music collection so
// plays can be cross-referenced against it.
package library

import (
	"database/sql"
	"time"

	dbutil "github.com/tom-bleher/music-analytics/internal/db"
)

// Track is one indexed music file.
type Track struct {
	ID          int64
	Path        string
	Mtime       int64
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	TrackNumber int
	DiscNumber  int
	Year        int
	Genre       string
	DurationMS  int64
}

// Stats summarizes the indexed collection.
type Stats struct {
	Tracks  int
	Artists int
	Albums  int
}

// Library reads and writes the track index. It shares the listens database.
type Library struct {
	db *sql.DB
}

// New creates a library over an open database.
func New(db *sql.DB) *Library {
	return &Library{db: db}
}

// Stats returns collection counts.
func (l *Library) Stats() (Stats, error) {
	var s Stats
	err := l.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(DISTINCT artist),
		       COUNT(DISTINCT artist || '|' || album)
		FROM library_tracks
	`).Scan(&s.Tracks, &s.Artists, &s.Albums)
	return s, err
}

// ByPath returns the indexed track at the given path, or nil.
func (l *Library) ByPath(path string) (*Track, error) {
	row := l.db.QueryRow(`
		SELECT id, path, mtime, artist, album_artist, album, title,
		       track_number, disc_number, year, genre, duration_ms
		FROM library_tracks
		WHERE path = ?
	`, path)

	var t Track
	var artist, albumArtist, album, genre sql.NullString
	var trackNumber, discNumber, year, durationMS sql.NullInt64

	err := row.Scan(
		&t.ID, &t.Path, &t.Mtime, &artist, &albumArtist, &album, &t.Title,
		&trackNumber, &discNumber, &year, &genre, &durationMS,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.Artist = dbutil.NullStringValue(artist)
	t.AlbumArtist = dbutil.NullStringValue(albumArtist)
	t.Album = dbutil.NullStringValue(album)
	t.Genre = dbutil.NullStringValue(genre)
	t.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
	t.DiscNumber = int(dbutil.NullInt64Value(discNumber))
	t.Year = int(dbutil.NullInt64Value(year))
	t.DurationMS = dbutil.NullInt64Value(durationMS)

	return &t, nil
}

func (l *Library) existingTracks() (map[string]int64, error) {
	rows, err := l.db.Query(`SELECT path, mtime FROM library_tracks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		tracks[path] = mtime
	}
	return tracks, rows.Err()
}

func (l *Library) upsertTrack(path string, mtime int64, t *fileTag) error {
	now := time.Now().Unix()
	_, err := l.db.Exec(`
		INSERT INTO library_tracks
		(path, mtime, artist, album_artist, album, title,
		 track_number, disc_number, year, genre, duration_ms, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			artist = excluded.artist,
			album_artist = excluded.album_artist,
			album = excluded.album,
			title = excluded.title,
			track_number = excluded.track_number,
			disc_number = excluded.disc_number,
			year = excluded.year,
			genre = excluded.genre,
			duration_ms = excluded.duration_ms,
			updated_at = excluded.updated_at
	`, path, mtime,
		dbutil.StringOrNull(t.artist), dbutil.StringOrNull(t.albumArtist),
		dbutil.StringOrNull(t.album), t.title,
		dbutil.Int64OrNull(int64(t.trackNumber)), dbutil.Int64OrNull(int64(t.discNumber)),
		dbutil.Int64OrNull(int64(t.year)), dbutil.StringOrNull(t.genre),
		dbutil.Int64OrNull(t.durationMS), now, now)
	return err
}

func (l *Library) deleteTrackByPath(path string) error {
	_, err := l.db.Exec(`DELETE FROM library_tracks WHERE path = ?`, path)
	return err
}
