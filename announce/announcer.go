package announce

import (
	"context"

	"github.com/rs/zerolog"
)

// Broadcaster delivers announcement text to every connected player.
type Broadcaster interface {
	Broadcast(ctx context.Context, text string, color Color) error
}

// Transition is a single player movement as reported by the host.
type Transition struct {
	Event    EventKind
	Player   string
	Previous ServerName
	Current  ServerName
}

// Announcement is the rendered result of a Transition.
type Announcement struct {
	Kind  Kind
	Text  string
	Color Color
}

// Announcer turns transitions into broadcast announcements. It holds no
// per-transition state and is safe for concurrent use.
type Announcer struct {
	sink  Broadcaster
	mode  Mode
	color Color
	log   zerolog.Logger
}

type Option func(*Announcer)

func WithMode(mode Mode) Option {
	return func(a *Announcer) { a.mode = mode }
}

func WithColor(color Color) Option {
	return func(a *Announcer) { a.color = color }
}

func WithLogger(log zerolog.Logger) Option {
	return func(a *Announcer) { a.log = log }
}

// NewAnnouncer creates an Announcer that hands its text to sink.
func NewAnnouncer(sink Broadcaster, opts ...Option) *Announcer {
	a := &Announcer{
		sink:  sink,
		mode:  ModeDistinct,
		color: DefaultColor,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Announcer) Mode() Mode {
	return a.mode
}

// Render classifies and formats t without sending anything.
func (a *Announcer) Render(t Transition) Announcement {
	kind := a.mode.Classify(t.Event, t.Previous, t.Current)
	return Announcement{
		Kind:  kind,
		Text:  Format(kind, t.Player, t.Previous, t.Current),
		Color: a.color,
	}
}

// Announce renders t and hands the text to the sink once. A sink error is
// returned as is.
func (a *Announcer) Announce(ctx context.Context, t Transition) (Announcement, error) {
	a.log.Trace().
		Stringer("event", t.Event).
		Str("player", t.Player).
		Stringer("previous", t.Previous).
		Stringer("current", t.Current).
		Msg("announce transition")

	ann := a.Render(t)
	a.log.Trace().Stringer("kind", ann.Kind).Str("text", ann.Text).Msg("sending broadcast")

	if err := a.sink.Broadcast(ctx, ann.Text, ann.Color); err != nil {
		return ann, err
	}
	a.log.Trace().Msg("sent broadcast")
	return ann, nil
}

func (a *Announcer) PlayerConnected(ctx context.Context, e ConnectEvent) {
	a.announce(ctx, Transition{
		Event:    Connected,
		Player:   e.Player,
		Previous: e.Previous,
		Current:  e.Current,
	})
}

func (a *Announcer) PlayerDisconnected(ctx context.Context, e DisconnectEvent) {
	a.announce(ctx, Transition{
		Event:    Disconnected,
		Player:   e.Player,
		Previous: e.Previous,
	})
}

func (a *Announcer) announce(ctx context.Context, t Transition) {
	if _, err := a.Announce(ctx, t); err != nil {
		a.log.Error().Err(err).Str("player", t.Player).Msg("Failed to broadcast announcement")
	}
}
