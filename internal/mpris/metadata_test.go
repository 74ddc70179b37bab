package mpris

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	meta := map[string]dbus.Variant{
		"xesam:title":       dbus.MakeVariant("Song"),
		"xesam:artist":      dbus.MakeVariant([]string{"A", "B"}),
		"xesam:album":       dbus.MakeVariant("Album"),
		"xesam:url":         dbus.MakeVariant("file:///music/song.flac"),
		"mpris:length":      dbus.MakeVariant(int64(245_000_000)),
		"xesam:genre":       dbus.MakeVariant([]string{"Rock"}),
		"xesam:albumArtist": dbus.MakeVariant([]string{"A"}),
		"xesam:trackNumber": dbus.MakeVariant(int32(7)),
		"xesam:discNumber":  dbus.MakeVariant(int32(1)),
		"mpris:artUrl":      dbus.MakeVariant("file:///covers/album.jpg"),
		"xesam:userRating":  dbus.MakeVariant(0.8),
		"xesam:audioBPM":    dbus.MakeVariant(int32(120)),
		"xesam:composer":    dbus.MakeVariant([]string{"C"}),
	}

	id := parseMetadata(meta)
	assert.Equal(t, "Song", id.Title)
	assert.Equal(t, "A, B", id.Artist)
	assert.Equal(t, "Album", id.Album)
	assert.Equal(t, 245*time.Second, id.Duration)
	assert.Equal(t, "Rock", id.Genre)
	assert.Equal(t, 7, id.TrackNumber)
	assert.Equal(t, 1, id.DiscNumber)
	assert.Equal(t, 120, id.BPM)
	require.NotNil(t, id.UserRating)
	assert.InDelta(t, 0.8, *id.UserRating, 1e-9)
}

func TestParseMetadataToleratesOddTypes(t *testing.T) {
	meta := map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Song"),
		"xesam:artist": dbus.MakeVariant("Solo"),                // bare string
		"mpris:length": dbus.MakeVariant(uint64(180_000_000)),   // unsigned
		"xesam:genre":  dbus.MakeVariant([]interface{}{"Jazz"}), // boxed list
	}

	id := parseMetadata(meta)
	assert.Equal(t, "Solo", id.Artist)
	assert.Equal(t, 3*time.Minute, id.Duration)
	assert.Equal(t, "Jazz", id.Genre)
	assert.Nil(t, id.UserRating)
}

func TestParseMetadataEmpty(t *testing.T) {
	id := parseMetadata(map[string]dbus.Variant{})
	assert.Empty(t, id.Title)
	assert.Zero(t, id.Duration)
}
