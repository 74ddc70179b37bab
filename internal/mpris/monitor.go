//go:build linux

package mpris

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/tom-bleher/music-analytics/internal/tracker"
)

const (
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	playerInterface = "org.mpris.MediaPlayer2.Player"
	propsInterface  = "org.freedesktop.DBus.Properties"
)

// Monitor watches the session bus for media players and translates their
// D-Bus signals into tracker events.
type Monitor struct {
	conn    *dbus.Conn
	log     zerolog.Logger
	signals chan *dbus.Signal
	events  chan tracker.Event

	mu     sync.Mutex
	owners map[string]string // unique bus name -> well-known MPRIS name

	closeOnce sync.Once
	closeErr  error
}

// Connect opens the session bus and subscribes to player lifecycle,
// property and seek signals.
func Connect(log zerolog.Logger) (*Monitor, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}

	matches := [][]dbus.MatchOption{
		{
			dbus.WithMatchSender("org.freedesktop.DBus"),
			dbus.WithMatchInterface("org.freedesktop.DBus"),
			dbus.WithMatchMember("NameOwnerChanged"),
		},
		{
			dbus.WithMatchObjectPath(objectPath),
			dbus.WithMatchInterface(propsInterface),
			dbus.WithMatchMember("PropertiesChanged"),
		},
		{
			dbus.WithMatchObjectPath(objectPath),
			dbus.WithMatchInterface(playerInterface),
			dbus.WithMatchMember("Seeked"),
		},
	}
	for _, opts := range matches {
		if err := conn.AddMatchSignal(opts...); err != nil {
			conn.Close()
			return nil, fmt.Errorf("subscribing to bus signals: %w", err)
		}
	}

	m := &Monitor{
		conn:    conn,
		log:     log,
		signals: make(chan *dbus.Signal, 64),
		events:  make(chan tracker.Event, 64),
		owners:  make(map[string]string),
	}
	conn.Signal(m.signals)
	go m.pump()

	return m, nil
}

// Events returns the event stream. It is closed when the monitor closes.
func (m *Monitor) Events() <-chan tracker.Event {
	return m.events
}

// ListPlayers enumerates media players already on the bus. It records
// their bus name owners for signal routing and queues their current track
// and status as events.
func (m *Monitor) ListPlayers() ([]string, error) {
	var names []string
	busObj := m.conn.BusObject()
	if err := busObj.Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("listing bus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if !strings.HasPrefix(name, tracker.MPRISPrefix) {
			continue
		}
		players = append(players, name)

		var owner string
		if err := busObj.Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner); err == nil {
			m.setOwner(owner, name)
		}
		m.pushCurrentState(name)
	}
	return players, nil
}

// Close disconnects from the bus. The signal handler closes the signal
// channel on disconnect, which ends the pump and closes the event stream.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = m.conn.Close()
	})
	return m.closeErr
}

func (m *Monitor) pump() {
	defer close(m.events)
	for sig := range m.signals {
		switch sig.Name {
		case "org.freedesktop.DBus.NameOwnerChanged":
			m.onNameOwnerChanged(sig)
		case propsInterface + ".PropertiesChanged":
			m.onPropertiesChanged(sig)
		case playerInterface + ".Seeked":
			m.onSeeked(sig)
		}
	}
}

func (m *Monitor) onNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}
	name, _ := sig.Body[0].(string)
	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)
	if !strings.HasPrefix(name, tracker.MPRISPrefix) {
		return
	}

	if oldOwner != "" {
		m.setOwner(oldOwner, "")
		m.events <- tracker.PlayerVanished{Name: name}
	}
	if newOwner != "" {
		m.setOwner(newOwner, name)
		m.events <- tracker.PlayerAppeared{Name: name}
		m.pushCurrentState(name)
	}
}

func (m *Monitor) onPropertiesChanged(sig *dbus.Signal) {
	name := m.ownerName(sig.Sender)
	if name == "" || len(sig.Body) < 2 {
		return
	}
	iface, _ := sig.Body[0].(string)
	if iface != playerInterface {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	ev := tracker.PropertiesChanged{Name: name}
	if v, ok := changed["Metadata"]; ok {
		if meta, ok := v.Value().(map[string]dbus.Variant); ok {
			id := parseMetadata(meta)
			ev.Identity = &id
		}
	}
	if v, ok := changed["PlaybackStatus"]; ok {
		if s, ok := v.Value().(string); ok {
			if st, known := tracker.ParseStatus(s); known {
				ev.Status = &st
			} else {
				m.log.Warn().Str("status", s).Str("player", name).Msg("unknown playback status")
			}
		}
	}
	if ev.Identity != nil || ev.Status != nil {
		m.events <- ev
	}
}

func (m *Monitor) onSeeked(sig *dbus.Signal) {
	name := m.ownerName(sig.Sender)
	if name == "" || len(sig.Body) < 1 {
		return
	}
	us, ok := sig.Body[0].(int64)
	if !ok {
		return
	}
	m.events <- tracker.Seeked{Name: name, Position: time.Duration(us) * time.Microsecond}
}

// pushCurrentState reads a player's current track and status and queues
// them as a change event. Failures are ignored; the player may have
// vanished or not expose the property yet.
func (m *Monitor) pushCurrentState(name string) {
	obj := m.conn.Object(name, objectPath)
	ev := tracker.PropertiesChanged{Name: name}

	if v, err := obj.GetProperty(playerInterface + ".Metadata"); err == nil {
		if meta, ok := v.Value().(map[string]dbus.Variant); ok {
			id := parseMetadata(meta)
			ev.Identity = &id
		}
	}
	if v, err := obj.GetProperty(playerInterface + ".PlaybackStatus"); err == nil {
		if s, ok := v.Value().(string); ok {
			if st, known := tracker.ParseStatus(s); known {
				ev.Status = &st
			}
		}
	}
	if ev.Identity != nil || ev.Status != nil {
		m.events <- ev
	}
}

func (m *Monitor) setOwner(unique, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		delete(m.owners, unique)
		return
	}
	m.owners[unique] = name
}

func (m *Monitor) ownerName(unique string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[unique]
}
