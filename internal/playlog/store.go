package playlog

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	dbutil "github.com/tom-bleher/music-analytics/internal/db"
)

const (
	appName    = "music-analytics"
	dbFileName = "listens.db"
)

// Store is the sqlite-backed play log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the play log at the default xdg data path.
func Open() (*Store, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenAt(dbPath)
}

// OpenAt opens the play log at an explicit path. ":memory:" works for tests.
func OpenAt(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for packages sharing the database file
// (library scanner).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Append persists a finalized play. The record's ID and, if unset,
// Timestamp are filled in.
func (s *Store) Append(p *Play) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}

	res, err := s.db.Exec(`
		INSERT INTO plays (
			timestamp, title, artist, album, duration_ms, played_ms, file_path,
			genre, album_artist, track_number, disc_number, release_date, art_url,
			user_rating, bpm, composer, musicbrainz_track_id,
			seek_count, intro_skipped, seek_forward_ms, seek_backward_ms,
			hour_of_day, day_of_week, is_weekend, season, active_window, screen_on, on_battery,
			player_name, is_local
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.Timestamp.Unix(), p.Title,
		dbutil.StringOrNull(p.Artist), dbutil.StringOrNull(p.Album),
		dbutil.Int64OrNull(p.DurationMS), p.PlayedMS, dbutil.StringOrNull(p.FilePath),
		dbutil.StringOrNull(p.Genre), dbutil.StringOrNull(p.AlbumArtist),
		dbutil.Int64OrNull(int64(p.TrackNumber)), dbutil.Int64OrNull(int64(p.DiscNumber)),
		dbutil.StringOrNull(p.ReleaseDate), dbutil.StringOrNull(p.ArtURL),
		dbutil.PtrToNullFloat64(p.UserRating), dbutil.Int64OrNull(int64(p.BPM)),
		dbutil.StringOrNull(p.Composer), dbutil.StringOrNull(p.MBTrackID),
		p.SeekCount, p.IntroSkipped, p.SeekForwardMS, p.SeekBackwardMS,
		p.HourOfDay, p.DayOfWeek, p.IsWeekend, p.Season,
		dbutil.PtrToNullString(p.ActiveWindow), dbutil.PtrToNullBool(p.ScreenOn), dbutil.PtrToNullBool(p.OnBattery),
		p.Player, p.IsLocal,
	)
	if err != nil {
		return err
	}

	p.ID, err = res.LastInsertId()
	return err
}

// Plays returns plays in [from, to] ordered by timestamp ascending,
// ties broken by insertion order. Zero times mean no bound.
func (s *Store) Plays(from, to time.Time) ([]Play, error) {
	query := `
		SELECT id, timestamp, title, artist, album, duration_ms, played_ms, file_path,
			genre, album_artist, track_number, disc_number, release_date, art_url,
			user_rating, bpm, composer, musicbrainz_track_id,
			seek_count, intro_skipped, seek_forward_ms, seek_backward_ms,
			hour_of_day, day_of_week, is_weekend, season, active_window, screen_on, on_battery,
			player_name, is_local
		FROM plays
		WHERE 1=1`
	args := []any{}

	if !from.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, to.Unix())
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		p, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

// PlayDates returns the distinct local calendar dates bearing at least one
// play in [from, to], ascending. Dates are midnight in the local zone.
func (s *Store) PlayDates(from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT DATE(timestamp, 'unixepoch', 'localtime') AS play_date
		FROM plays
		WHERE 1=1`
	args := []any{}

	if !from.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, to.Unix())
	}
	query += ` ORDER BY play_date ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func scanPlay(rows *sql.Rows) (Play, error) {
	var p Play
	var ts int64
	var artist, album, filePath, genre, albumArtist, releaseDate, artURL, composer, mbTrackID sql.NullString
	var durationMS, trackNumber, discNumber, bpm sql.NullInt64
	var userRating sql.NullFloat64
	var activeWindow sql.NullString
	var screenOn, onBattery sql.NullBool

	err := rows.Scan(
		&p.ID, &ts, &p.Title, &artist, &album, &durationMS, &p.PlayedMS, &filePath,
		&genre, &albumArtist, &trackNumber, &discNumber, &releaseDate, &artURL,
		&userRating, &bpm, &composer, &mbTrackID,
		&p.SeekCount, &p.IntroSkipped, &p.SeekForwardMS, &p.SeekBackwardMS,
		&p.HourOfDay, &p.DayOfWeek, &p.IsWeekend, &p.Season, &activeWindow, &screenOn, &onBattery,
		&p.Player, &p.IsLocal,
	)
	if err != nil {
		return Play{}, err
	}

	p.Timestamp = time.Unix(ts, 0)
	p.Artist = dbutil.NullStringValue(artist)
	p.Album = dbutil.NullStringValue(album)
	p.DurationMS = dbutil.NullInt64Value(durationMS)
	p.FilePath = dbutil.NullStringValue(filePath)
	p.Genre = dbutil.NullStringValue(genre)
	p.AlbumArtist = dbutil.NullStringValue(albumArtist)
	p.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
	p.DiscNumber = int(dbutil.NullInt64Value(discNumber))
	p.ReleaseDate = dbutil.NullStringValue(releaseDate)
	p.ArtURL = dbutil.NullStringValue(artURL)
	p.UserRating = dbutil.NullFloat64ToPtr(userRating)
	p.BPM = int(dbutil.NullInt64Value(bpm))
	p.Composer = dbutil.NullStringValue(composer)
	p.MBTrackID = dbutil.NullStringValue(mbTrackID)
	p.ActiveWindow = dbutil.NullStringToPtr(activeWindow)
	p.ScreenOn = dbutil.NullBoolToPtr(screenOn)
	p.OnBattery = dbutil.NullBoolToPtr(onBattery)

	return p, nil
}
