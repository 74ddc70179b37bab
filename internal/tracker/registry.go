package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tom-bleher/music-analytics/internal/playlog"
	"github.com/tom-bleher/music-analytics/internal/probe"
)

// Appender durably stores a finalized play.
type Appender interface {
	Append(p *playlog.Play) error
}

// Forwarder receives a copy of every persisted play (scrobbling). It must
// not block the event loop for long.
type Forwarder interface {
	Forward(p playlog.Play)
}

// RegistryParams configures a Registry.
type RegistryParams struct {
	Rules     Rules
	Locality  *Classifier
	Sampler   probe.Sampler
	Appender  Appender
	Forwarder Forwarder // optional
	Log       zerolog.Logger
	Now       func() time.Time // defaults to time.Now
}

// Registry owns one Machine per tracked player and routes events to it.
// All methods run on the event loop goroutine; nothing here is safe for
// concurrent use.
type Registry struct {
	rules    Rules
	local    *Classifier
	sampler  probe.Sampler
	appender Appender
	forward  Forwarder
	log      zerolog.Logger
	now      func() time.Time

	machines map[string]*Machine
	flushed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry(p RegistryParams) *Registry {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Locality == nil {
		p.Locality = NewClassifier(nil)
	}
	if p.Sampler == nil {
		p.Sampler = probe.Fixed{}
	}
	return &Registry{
		rules:    p.Rules,
		local:    p.Locality,
		sampler:  p.Sampler,
		appender: p.Appender,
		forward:  p.Forwarder,
		log:      p.Log,
		now:      p.Now,
		machines: make(map[string]*Machine),
	}
}

// Run is the event loop: discover players already on the bus, then process
// one event at a time until the source closes or ctx is cancelled, then
// flush every still-playing machine exactly once.
func (r *Registry) Run(ctx context.Context, src Source) error {
	players, err := src.ListPlayers()
	if err != nil {
		return err
	}
	for _, name := range players {
		r.Handle(PlayerAppeared{Name: name})
	}

	r.log.Info().Int("players", len(players)).Msg("music tracker started, monitoring players")

	for {
		select {
		case <-ctx.Done():
			r.Shutdown()
			return nil
		case ev, ok := <-src.Events():
			if !ok {
				r.Shutdown()
				return nil
			}
			r.Handle(ev)
		}
	}
}

// Handle routes one event to the owning machine. Events for unknown
// players (other than appearance) are dropped; one player's trouble never
// touches another player's machine.
func (r *Registry) Handle(ev Event) {
	switch e := ev.(type) {
	case PlayerAppeared:
		r.addPlayer(e.Name)

	case PlayerVanished:
		r.removePlayer(e.Name)

	case PropertiesChanged:
		m, ok := r.machines[e.Name]
		if !ok {
			return
		}
		// Metadata first: a track change finalizes the outgoing episode
		// before the new status applies
		if e.Identity != nil {
			r.onMetadata(m, e)
		}
		if e.Status != nil {
			r.onStatus(m, e.Name, *e.Status)
		}

	case Seeked:
		m, ok := r.machines[e.Name]
		if !ok {
			return
		}
		m.OnSeek(e.Position)
		r.log.Debug().
			Str("player", ShortPlayerName(e.Name)).
			Dur("position", e.Position).
			Msg("seeked")
	}
}

// Players returns the number of currently tracked players.
func (r *Registry) Players() int {
	return len(r.machines)
}

// Shutdown flushes every still-playing machine, at most one record per
// player. Calling it again is a no-op.
func (r *Registry) Shutdown() {
	if r.flushed {
		return
	}
	r.flushed = true

	for _, m := range r.machines {
		if ep := m.Flush(); ep != nil {
			r.emit(ep)
		}
	}
	r.log.Info().Msg("tracker shut down, in-flight episodes flushed")
}

func (r *Registry) addPlayer(name string) {
	if _, ok := r.machines[name]; ok {
		return
	}
	r.machines[name] = newMachine(name, r.rules, r.local, r.now)
	r.log.Info().Str("player", ShortPlayerName(name)).Msg("player appeared")
}

func (r *Registry) removePlayer(name string) {
	m, ok := r.machines[name]
	if !ok {
		return
	}
	if ep := m.OnRemove(); ep != nil {
		r.emit(ep)
	}
	delete(r.machines, name)
	r.log.Info().Str("player", ShortPlayerName(name)).Msg("player disappeared")
}

func (r *Registry) onMetadata(m *Machine, e PropertiesChanged) {
	prev := m.Identity()
	if ep := m.OnMetadata(*e.Identity); ep != nil {
		r.emit(ep)
	}

	id := m.Identity()
	if id.Title != "" && (prev == nil || prev.Title != id.Title) {
		evt := r.log.Info().
			Str("player", ShortPlayerName(e.Name)).
			Str("artist", id.Artist).
			Str("title", id.Title)
		if !m.IsLocal() {
			evt = evt.Bool("local", false)
		}
		evt.Msg("track changed")
	}
}

func (r *Registry) onStatus(m *Machine, name string, st Status) {
	wasPlaying := m.Playing()
	if ep := m.OnStatus(st); ep != nil {
		r.emit(ep)
	}

	if m.Playing() != wasPlaying {
		r.log.Info().
			Str("player", ShortPlayerName(name)).
			Str("status", st.String()).
			Msg("playback status changed")
	}
}

// emit samples context once per finalize, persists the record and hands a
// copy to the forwarder. A persistence failure loses this record only.
func (r *Registry) emit(ep *Episode) {
	ctx := r.sampler.Sample()
	play := r.buildPlay(ep, ctx)

	if err := r.appender.Append(play); err != nil {
		r.log.Error().Err(err).
			Str("title", play.Title).
			Str("player", play.Player).
			Msg("failed to persist play, record dropped")
		return
	}

	r.log.Info().
		Str("artist", play.Artist).
		Str("title", play.Title).
		Int64("played_s", play.PlayedMS/1000).
		Int("seeks", play.SeekCount).
		Msg("logged play")

	if r.forward != nil {
		r.forward.Forward(*play)
	}
}

func (r *Registry) buildPlay(ep *Episode, ctx probe.Context) *playlog.Play {
	id := ep.Identity
	return &playlog.Play{
		Timestamp:      r.now(),
		Title:          id.Title,
		Artist:         id.Artist,
		Album:          id.Album,
		DurationMS:     id.Duration.Milliseconds(),
		PlayedMS:       ep.PlayedMS,
		FilePath:       id.SourcePath(),
		Genre:          id.Genre,
		AlbumArtist:    id.AlbumArtist,
		TrackNumber:    id.TrackNumber,
		DiscNumber:     id.DiscNumber,
		ReleaseDate:    id.ReleaseDate,
		ArtURL:         id.ArtURL,
		UserRating:     id.UserRating,
		BPM:            id.BPM,
		Composer:       id.Composer,
		MBTrackID:      id.MBTrackID,
		SeekCount:      ep.SeekCount,
		IntroSkipped:   ep.IntroSkipped,
		SeekForwardMS:  ep.SeekForwardMS,
		SeekBackwardMS: ep.SeekBackwardMS,
		HourOfDay:      ctx.HourOfDay,
		DayOfWeek:      ctx.DayOfWeek,
		IsWeekend:      ctx.IsWeekend,
		Season:         ctx.Season,
		ActiveWindow:   ctx.ActiveWindow,
		ScreenOn:       ctx.ScreenOn,
		OnBattery:      ctx.OnBattery,
		Player:         ep.Player,
		IsLocal:        ep.IsLocal,
	}
}
