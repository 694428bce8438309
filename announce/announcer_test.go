package announce

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	text  string
	color Color
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (s *recordingSink) Broadcast(ctx context.Context, text string, color Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{text, color})
	return s.err
}

func (s *recordingSink) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.text)
	}
	return out
}

func TestAnnounceSendsOnce(t *testing.T) {
	sink := &recordingSink{}
	a := NewAnnouncer(sink)

	ann, err := a.Announce(context.Background(), Transition{Event: Connected, Player: "Alice", Current: Server("lobby")})
	require.NoError(t, err)
	assert.Equal(t, KindJoin, ann.Kind)
	assert.Equal(t, Yellow, ann.Color)
	assert.Equal(t, []sent{{"Alice joined lobby", Yellow}}, sink.sent)
}

func TestAnnounceReturnsSinkError(t *testing.T) {
	boom := errors.New("boom")
	sink := &recordingSink{err: boom}
	a := NewAnnouncer(sink)

	ann, err := a.Announce(context.Background(), Transition{Event: Disconnected, Player: "Dave"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Dave disconnected", ann.Text)
	assert.Len(t, sink.sent, 1)
}

func TestAnnouncerOptions(t *testing.T) {
	sink := &recordingSink{}
	a := NewAnnouncer(sink, WithMode(ModeCollapsed), WithColor(Gold))
	assert.Equal(t, ModeCollapsed, a.Mode())

	a.PlayerDisconnected(context.Background(), DisconnectEvent{Player: "Dave"})
	assert.Equal(t, []sent{{"Dave left unknown", Gold}}, sink.sent)
}

func TestAnnouncerListener(t *testing.T) {
	sink := &recordingSink{}
	var l TransitionListener = NewAnnouncer(sink)
	ctx := context.Background()

	l.PlayerConnected(ctx, ConnectEvent{Player: "Alice", Current: Server("lobby")})
	l.PlayerConnected(ctx, ConnectEvent{Player: "Bob", Previous: Server("lobby"), Current: Server("survival")})
	l.PlayerDisconnected(ctx, DisconnectEvent{Player: "Carol", Previous: Server("survival")})
	l.PlayerDisconnected(ctx, DisconnectEvent{Player: "Dave"})

	assert.Equal(t, []string{
		"Alice joined lobby",
		"Bob moved lobby -> survival",
		"Carol left survival",
		"Dave disconnected",
	}, sink.texts())
}

func TestAnnouncerLogsSinkFailure(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	a := NewAnnouncer(&recordingSink{err: errors.New("sink down")}, WithLogger(log))

	a.PlayerConnected(context.Background(), ConnectEvent{Player: "Alice", Current: Server("lobby")})
	assert.Contains(t, buf.String(), "sink down")
	assert.Contains(t, buf.String(), `"player":"Alice"`)
}

func TestAnnouncerTraceDoesNotChangeResult(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	traced := NewAnnouncer(&recordingSink{}, WithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel)))
	quiet := NewAnnouncer(&recordingSink{})
	in := Transition{Event: Connected, Player: "Bob", Previous: Server("lobby"), Current: Server("survival")}

	a1, err := traced.Announce(context.Background(), in)
	require.NoError(t, err)
	a2, err := quiet.Announce(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, a2, a1)
	assert.Contains(t, buf.String(), "Bob moved lobby -> survival")
}
