package tracker

import "time"

// Event is one notification about a single player. The set of variants is
// closed: appearance, disappearance, property changes and seeks.
type Event interface {
	// Player returns the full bus name of the player this event concerns.
	Player() string
}

// PlayerAppeared is emitted when a player shows up on the bus.
type PlayerAppeared struct {
	Name string
}

func (e PlayerAppeared) Player() string { return e.Name }

// PlayerVanished is emitted when a player leaves the bus.
type PlayerVanished struct {
	Name string
}

func (e PlayerVanished) Player() string { return e.Name }

// PropertiesChanged carries a metadata and/or playback status update.
// Either field may be nil when the player only changed the other.
type PropertiesChanged struct {
	Name     string
	Identity *TrackIdentity
	Status   *Status
}

func (e PropertiesChanged) Player() string { return e.Name }

// Seeked is emitted when a player jumps to a new position.
type Seeked struct {
	Name     string
	Position time.Duration
}

func (e Seeked) Player() string { return e.Name }

// Source delivers player events. Implementations own the transport; the
// registry only pulls from the channel, one event at a time.
type Source interface {
	// Events returns the channel of inbound events. It is closed when the
	// source shuts down.
	Events() <-chan Event

	// ListPlayers returns the players already present at startup.
	ListPlayers() ([]string, error)

	Close() error
}
