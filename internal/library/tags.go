package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

var musicExtensions = map[string]struct{}{
	".mp3":  {},
	".flac": {},
	".ogg":  {},
	".opus": {},
	".m4a":  {},
	".aac":  {},
	".wav":  {},
	".wv":   {},
	".ape":  {},
}

// IsMusicFile reports whether the path has a known music file extension.
func IsMusicFile(path string) bool {
	_, ok := musicExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// fileTag holds the metadata read from one file.
type fileTag struct {
	title       string
	artist      string
	albumArtist string
	album       string
	trackNumber int
	discNumber  int
	year        int
	genre       string
	durationMS  int64 // 0 when the container does not carry it
}

// readTag extracts metadata from a music file. The title falls back to the
// file name when the tags carry none.
func readTag(path string) (*fileTag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	track, _ := m.Track()
	disc, _ := m.Disc()

	t := &fileTag{
		title:       m.Title(),
		artist:      m.Artist(),
		albumArtist: m.AlbumArtist(),
		album:       m.Album(),
		trackNumber: track,
		discNumber:  disc,
		year:        m.Year(),
		genre:       m.Genre(),
	}
	if t.title == "" {
		base := filepath.Base(path)
		t.title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return t, nil
}
