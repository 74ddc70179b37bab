package playlog

import (
	"database/sql"
)

const currentSchemaVersion = 3

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			duration_ms INTEGER,
			played_ms INTEGER NOT NULL,
			file_path TEXT,
			genre TEXT,
			album_artist TEXT,
			track_number INTEGER,
			disc_number INTEGER,
			release_date TEXT,
			art_url TEXT,
			user_rating REAL,
			bpm INTEGER,
			composer TEXT,
			musicbrainz_track_id TEXT,
			seek_count INTEGER NOT NULL DEFAULT 0,
			intro_skipped INTEGER NOT NULL DEFAULT 0,
			seek_forward_ms INTEGER NOT NULL DEFAULT 0,
			seek_backward_ms INTEGER NOT NULL DEFAULT 0,
			hour_of_day INTEGER NOT NULL,
			day_of_week INTEGER NOT NULL,
			is_weekend INTEGER NOT NULL,
			season TEXT NOT NULL,
			active_window TEXT,
			screen_on INTEGER,
			on_battery INTEGER,
			player_name TEXT NOT NULL,
			is_local INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_plays_timestamp ON plays(timestamp);
		CREATE INDEX IF NOT EXISTS idx_plays_artist ON plays(artist);

		CREATE TABLE IF NOT EXISTS library_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL,
			artist TEXT,
			album_artist TEXT,
			album TEXT,
			title TEXT NOT NULL,
			track_number INTEGER,
			disc_number INTEGER,
			year INTEGER,
			genre TEXT,
			duration_ms INTEGER,
			added_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_library_artist ON library_tracks(artist);

		CREATE TABLE IF NOT EXISTS pending_scrobbles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			artist TEXT NOT NULL,
			track TEXT NOT NULL,
			album TEXT,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			timestamp INTEGER NOT NULL,
			mb_track_id TEXT,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add duration_ms to library_tracks if missing
	_, _ = db.Exec(`ALTER TABLE library_tracks ADD COLUMN duration_ms INTEGER`)

	return nil
}
