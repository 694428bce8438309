package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/blixt/go-switchboard/announce"
	"github.com/blixt/go-switchboard/config"
	"github.com/blixt/go-switchboard/proxy"
)

type BackendMetadata struct {
	Name string
}

type PlayerMetadata struct {
	Name       string
	RemoteAddr string
}

type switchboard = proxy.Proxy[BackendMetadata, PlayerMetadata, proxy.Message]

type server struct {
	cfg      *config.Config
	log      zerolog.Logger
	proxy    *switchboard
	upgrader websocket.Upgrader
}

func newServer(cfg *config.Config, log zerolog.Logger) *server {
	s := &server{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Players connect from arbitrary origins
			},
		},
	}
	s.proxy = proxy.New(s.backendInit, s.backendHandler,
		proxy.WithLogger(log.With().Str("component", "proxy").Logger()),
		proxy.WithBufferSize(cfg.ClientBuffer),
	)
	s.proxy.Listen(announce.NewAnnouncer(broadcastSink{s.proxy},
		announce.WithMode(cfg.Announce.Mode),
		announce.WithColor(cfg.Announce.Color),
		announce.WithLogger(log.With().Str("component", "announce").Logger()),
	))
	return s
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{server...}", s.serveWs)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// broadcastSink delivers announcements to every session on the proxy.
type broadcastSink struct {
	proxy *switchboard
}

func (b broadcastSink) Broadcast(ctx context.Context, text string, color announce.Color) error {
	b.proxy.Broadcast(AnnouncementMessage{Text: text, Color: color})
	return nil
}

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	serverID := r.PathValue("server")
	if serverID == "" {
		serverID = s.cfg.DefaultServer
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Upgrade error")
		return
	}
	log := s.log.With().Str("player", name).Logger()
	log.Debug().Str("remote", r.RemoteAddr).Str("server", serverID).Msg("WebSocket connection established")

	client := s.proxy.NewClient(name, &PlayerMetadata{
		Name:       name,
		RemoteAddr: r.RemoteAddr,
	})

	if err := s.proxy.Connect(r.Context(), client, serverID); err != nil {
		// The player never reached a backend. Tell them why, then drop
		// the session, which announces a plain disconnect.
		log.Warn().Err(err).Str("server", serverID).Msg("Initial connect failed")
		if frame, err := proxy.Encode(ErrorMessage{Message: err.Error()}); err == nil {
			conn.WriteMessage(websocket.TextMessage, frame)
		}
		if err := s.proxy.Disconnect(context.Background(), client); err != nil {
			log.Warn().Err(err).Msg("Disconnect error")
		}
		conn.Close()
		return
	}

	// Handle incoming messages from WebSocket
	go func() {
		defer func() {
			if err := s.proxy.Disconnect(context.Background(), client); err != nil && !errors.Is(err, proxy.ErrClientNotFound) {
				log.Warn().Err(err).Msg("Disconnect error")
			}
			conn.Close()
			log.Debug().Msg("Client disconnected")
		}()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("Read error")
				return
			}
			msg, err := messageRegistry.Decode(frame)
			if err != nil {
				s.sendError(client, err)
				continue
			}
			s.handleClientMessage(client, msg)
		}
	}()

	// Handle outgoing messages to WebSocket
	go func() {
		defer conn.Close()
		for msg := range client.Receive() {
			frame, err := proxy.Encode(msg)
			if err != nil {
				log.Error().Err(err).Msg("Message encode error")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Msg("Write error")
				return
			}
		}
	}()
}

func (s *server) handleClientMessage(client *proxy.Client[PlayerMetadata, proxy.Message], msg proxy.Message) {
	switch msg := msg.(type) {
	case *ChatMessage:
		backend := s.proxy.Backend(client.BackendID())
		if backend == nil {
			s.sendError(client, errors.New("not connected to a server"))
			return
		}
		msg.From = client.Name()
		if err := backend.HandleClientMessage(client, msg); err != nil {
			s.sendError(client, err)
		}
	case *SwitchMessage:
		if err := s.proxy.Connect(client.Context(), client, msg.Server); err != nil {
			s.sendError(client, fmt.Errorf("switch to %q: %w", msg.Server, err))
		}
	default:
		s.sendError(client, fmt.Errorf("unsupported message type: %q", msg.Type()))
	}
}

func (s *server) sendError(client *proxy.Client[PlayerMetadata, proxy.Message], err error) {
	if err := s.proxy.SendToClient(client, ErrorMessage{Message: err.Error()}); err != nil {
		s.log.Debug().Err(err).Str("player", client.Name()).Msg("Failed to send error")
	}
}

// Runs once when a backend is first used.
func (s *server) backendInit(id string) (*BackendMetadata, error) {
	if !s.cfg.AllowsServer(id) {
		return nil, fmt.Errorf("unknown server %q", id)
	}
	return &BackendMetadata{Name: id}, nil
}

// Backend event loop
// Runs for as long as the backend is open

func (s *server) backendHandler(ctx context.Context, backend *proxy.Backend[BackendMetadata, PlayerMetadata, proxy.Message]) {
	log := s.log.With().Str("backend", backend.ID()).Logger()
	defer func() {
		log.Debug().Msg("Backend handler exiting")
	}()

	for {
		select {
		case event := <-backend.Events():
			switch event.Type {
			case proxy.EventJoin:
				log.Debug().Str("player", event.Client.Name()).Msg("Player joined backend")
				players := []string{}
				for _, client := range backend.Clients() {
					if client != event.Client {
						players = append(players, client.Name())
					}
				}
				// The player may already have moved on.
				if err := backend.SendToClient(event.Client, WelcomeMessage{Server: backend.ID(), Players: players}); err != nil {
					log.Debug().Err(err).Str("player", event.Client.Name()).Msg("Welcome not sent")
				}
			case proxy.EventLeave:
				log.Debug().Str("player", event.Client.Name()).Msg("Player left backend")
			case proxy.EventMessage:
				if chat, ok := event.Message.(*ChatMessage); ok {
					log.Trace().Str("player", chat.From).Str("content", chat.Content).Msg("Chat")
					backend.BroadcastExcept(event.Client, chat)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
