package playlog

import (
	"database/sql"
	"time"

	dbutil "github.com/tom-bleher/music-analytics/internal/db"
)

// Totals summarizes the play log over a range.
type Totals struct {
	PlayCount     int
	TotalMS       int64
	UniqueArtists int
	UniqueAlbums  int
	UniqueTracks  int
}

// ArtistCount is a per-artist aggregate.
type ArtistCount struct {
	Artist    string
	PlayCount int
	TotalMS   int64
}

// AlbumCount is a per-album aggregate.
type AlbumCount struct {
	Album     string
	Artist    string
	PlayCount int
	TotalMS   int64
}

// TrackCount is a per-track aggregate.
type TrackCount struct {
	Title     string
	Artist    string
	PlayCount int
	TotalMS   int64
}

// DayTotal is the play volume of one calendar day.
type DayTotal struct {
	Date      time.Time
	PlayCount int
	TotalMS   int64
}

func rangeClause(from, to time.Time) (string, []any) {
	clause := ""
	args := []any{}
	if !from.IsZero() {
		clause += ` AND timestamp >= ?`
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		clause += ` AND timestamp <= ?`
		args = append(args, to.Unix())
	}
	return clause, args
}

// Totals returns overall counts for [from, to].
func (s *Store) Totals(from, to time.Time) (Totals, error) {
	clause, args := rangeClause(from, to)

	var t Totals
	var totalMS sql.NullInt64
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			SUM(played_ms),
			COUNT(DISTINCT artist),
			COUNT(DISTINCT album),
			COUNT(DISTINCT title)
		FROM plays
		WHERE 1=1`+clause, args...,
	).Scan(&t.PlayCount, &totalMS, &t.UniqueArtists, &t.UniqueAlbums, &t.UniqueTracks)
	if err != nil {
		return Totals{}, err
	}
	t.TotalMS = dbutil.NullInt64Value(totalMS)
	return t, nil
}

// TopArtists returns the most played artists by play count.
func (s *Store) TopArtists(from, to time.Time, limit int) ([]ArtistCount, error) {
	clause, args := rangeClause(from, to)
	args = append(args, limit)

	rows, err := s.db.Query(`
		SELECT artist, COUNT(*), SUM(played_ms)
		FROM plays
		WHERE 1=1`+clause+`
		AND artist IS NOT NULL
		GROUP BY artist
		ORDER BY COUNT(*) DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ArtistCount
	for rows.Next() {
		var a ArtistCount
		var totalMS sql.NullInt64
		if err := rows.Scan(&a.Artist, &a.PlayCount, &totalMS); err != nil {
			return nil, err
		}
		a.TotalMS = dbutil.NullInt64Value(totalMS)
		result = append(result, a)
	}
	return result, rows.Err()
}

// TopAlbums returns the most played albums by play count.
func (s *Store) TopAlbums(from, to time.Time, limit int) ([]AlbumCount, error) {
	clause, args := rangeClause(from, to)
	args = append(args, limit)

	rows, err := s.db.Query(`
		SELECT album, artist, COUNT(*), SUM(played_ms)
		FROM plays
		WHERE 1=1`+clause+`
		AND album IS NOT NULL
		GROUP BY album, artist
		ORDER BY COUNT(*) DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AlbumCount
	for rows.Next() {
		var a AlbumCount
		var artist sql.NullString
		var totalMS sql.NullInt64
		if err := rows.Scan(&a.Album, &artist, &a.PlayCount, &totalMS); err != nil {
			return nil, err
		}
		a.Artist = dbutil.NullStringValue(artist)
		a.TotalMS = dbutil.NullInt64Value(totalMS)
		result = append(result, a)
	}
	return result, rows.Err()
}

// TopTracks returns the most played tracks by play count.
func (s *Store) TopTracks(from, to time.Time, limit int) ([]TrackCount, error) {
	clause, args := rangeClause(from, to)
	args = append(args, limit)

	rows, err := s.db.Query(`
		SELECT title, artist, COUNT(*), SUM(played_ms)
		FROM plays
		WHERE 1=1`+clause+`
		GROUP BY title, artist
		ORDER BY COUNT(*) DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TrackCount
	for rows.Next() {
		var t TrackCount
		var artist sql.NullString
		var totalMS sql.NullInt64
		if err := rows.Scan(&t.Title, &artist, &t.PlayCount, &totalMS); err != nil {
			return nil, err
		}
		t.Artist = dbutil.NullStringValue(artist)
		t.TotalMS = dbutil.NullInt64Value(totalMS)
		result = append(result, t)
	}
	return result, rows.Err()
}

// HourlyCounts returns play counts keyed by hour of day (0-23).
// Hours without plays are absent from the map.
func (s *Store) HourlyCounts(from, to time.Time) (map[int]int, error) {
	return s.groupedCounts(`hour_of_day`, from, to)
}

// WeekdayCounts returns play counts keyed by day of week (0=Sunday).
func (s *Store) WeekdayCounts(from, to time.Time) (map[int]int, error) {
	return s.groupedCounts(`day_of_week`, from, to)
}

func (s *Store) groupedCounts(column string, from, to time.Time) (map[int]int, error) {
	clause, args := rangeClause(from, to)

	rows, err := s.db.Query(`
		SELECT `+column+`, COUNT(*)
		FROM plays
		WHERE 1=1`+clause+`
		GROUP BY `+column, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var key, count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// BiggestDay returns the calendar day with the most plays, or nil if the
// range holds no plays.
func (s *Store) BiggestDay(from, to time.Time) (*DayTotal, error) {
	clause, args := rangeClause(from, to)

	var raw string
	var d DayTotal
	var totalMS sql.NullInt64
	err := s.db.QueryRow(`
		SELECT DATE(timestamp, 'unixepoch', 'localtime') AS play_date, COUNT(*), SUM(played_ms)
		FROM plays
		WHERE 1=1`+clause+`
		GROUP BY play_date
		ORDER BY COUNT(*) DESC, play_date ASC
		LIMIT 1`, args...,
	).Scan(&raw, &d.PlayCount, &totalMS)
	if err == sql.ErrNoRows {
		return nil, nil //nolint:nilnil // no plays means no biggest day, not an error
	}
	if err != nil {
		return nil, err
	}

	d.Date, err = time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	d.TotalMS = dbutil.NullInt64Value(totalMS)
	return &d, nil
}
