package mpris

import (
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/tom-bleher/music-analytics/internal/tracker"
)

// parseMetadata maps an MPRIS metadata dictionary onto a track identity.
// Players disagree on value types for several keys, so the accessors accept
// the common encodings.
func parseMetadata(meta map[string]dbus.Variant) tracker.TrackIdentity {
	id := tracker.TrackIdentity{
		Title:       metaString(meta, "xesam:title"),
		Artist:      metaStringOrList(meta, "xesam:artist"),
		Album:       metaString(meta, "xesam:album"),
		URL:         metaString(meta, "xesam:url"),
		Genre:       metaStringOrList(meta, "xesam:genre"),
		AlbumArtist: metaStringOrList(meta, "xesam:albumArtist"),
		TrackNumber: metaInt(meta, "xesam:trackNumber"),
		DiscNumber:  metaInt(meta, "xesam:discNumber"),
		ReleaseDate: metaString(meta, "xesam:contentCreated"),
		ArtURL:      metaString(meta, "mpris:artUrl"),
		BPM:         metaInt(meta, "xesam:audioBPM"),
		Composer:    metaStringOrList(meta, "xesam:composer"),
		MBTrackID:   metaString(meta, "xesam:musicBrainzTrackID"),
	}

	if us := metaInt64(meta, "mpris:length"); us > 0 {
		id.Duration = time.Duration(us) * time.Microsecond
	}
	if v, ok := meta["xesam:userRating"]; ok {
		if f, ok := v.Value().(float64); ok {
			id.UserRating = &f
		}
	}

	return id
}

func metaString(meta map[string]dbus.Variant, key string) string {
	v, ok := meta[key]
	if !ok {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}

func metaStringOrList(meta map[string]dbus.Variant, key string) string {
	v, ok := meta[key]
	if !ok {
		return ""
	}
	switch val := v.Value().(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			if s, ok := p.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func metaInt(meta map[string]dbus.Variant, key string) int {
	return int(metaInt64(meta, key))
}

func metaInt64(meta map[string]dbus.Variant, key string) int64 {
	v, ok := meta[key]
	if !ok {
		return 0
	}
	switch n := v.Value().(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
