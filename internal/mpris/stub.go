//go:build !linux

package mpris

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/tom-bleher/music-analytics/internal/tracker"
)

// Monitor is unavailable on non-Linux platforms.
type Monitor struct{}

// Connect always fails off Linux; MPRIS is a Linux desktop interface.
func Connect(_ zerolog.Logger) (*Monitor, error) {
	return nil, errors.New("mpris monitoring requires a Linux session bus")
}

// Events returns nil on non-Linux platforms.
func (m *Monitor) Events() <-chan tracker.Event {
	return nil
}

// ListPlayers returns nothing on non-Linux platforms.
func (m *Monitor) ListPlayers() ([]string, error) {
	return nil, nil
}

// Close is a no-op on non-Linux platforms.
func (m *Monitor) Close() error {
	return nil
}
