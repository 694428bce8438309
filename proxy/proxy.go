package proxy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blixt/go-switchboard/announce"
)

// Proxy multiplexes player sessions across backend servers that are created
// on demand. It reports every session that connects to a backend, moves
// between backends or leaves the proxy to its registered
// announce.TransitionListeners.
//
// Generic type parameters:
//   - BackendMetadata: custom data associated with each backend
//   - PlayerMetadata: custom data associated with each session
//   - DataType: the type of messages delivered to sessions
type Proxy[BackendMetadata, PlayerMetadata, DataType any] struct {
	mu       sync.RWMutex
	backends map[string]*Backend[BackendMetadata, PlayerMetadata, DataType]
	clients  map[*Client[PlayerMetadata, DataType]]struct{}
	init     BackendInitFunc[BackendMetadata]
	handler  BackendHandlerFunc[BackendMetadata, PlayerMetadata, DataType]

	listeners  *announce.Registry
	log        zerolog.Logger
	bufferSize int
}

type options struct {
	log        zerolog.Logger
	bufferSize int
}

type Option func(*options)

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithBufferSize sets how many messages may be queued for a session before
// it is considered too slow and dropped.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// New creates a Proxy. The init function is called once per backend id to
// build its metadata. The handler runs for as long as the backend is open
// and must consume Backend.Events.
func New[BackendMetadata, PlayerMetadata, DataType any](init BackendInitFunc[BackendMetadata], handler BackendHandlerFunc[BackendMetadata, PlayerMetadata, DataType], opts ...Option) *Proxy[BackendMetadata, PlayerMetadata, DataType] {
	o := options{log: zerolog.Nop(), bufferSize: 256}
	for _, opt := range opts {
		opt(&o)
	}
	return &Proxy[BackendMetadata, PlayerMetadata, DataType]{
		backends:   make(map[string]*Backend[BackendMetadata, PlayerMetadata, DataType]),
		clients:    make(map[*Client[PlayerMetadata, DataType]]struct{}),
		init:       init,
		handler:    handler,
		listeners:  announce.NewRegistry(),
		log:        o.log,
		bufferSize: o.bufferSize,
	}
}

// Listen registers l for transitions and returns a function that removes
// it again.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Listen(l announce.TransitionListener) (unregister func()) {
	return p.listeners.Register(l)
}

// GetOrCreateBackend returns an existing backend with the given id or creates
// a new one if it doesn't exist. If init fails the backend is forgotten and
// the error is returned. A closed backend is never returned; the next call
// for its id replaces it with a fresh one.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) GetOrCreateBackend(id string) (*Backend[BackendMetadata, PlayerMetadata, DataType], error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	p.mu.RLock()
	backend, exists := p.backends[id]
	p.mu.RUnlock()
	exists = exists && !backend.closed()

	if !exists {
		// Another caller may have created it between RUnlock and Lock, so
		// check again under the write lock.
		p.mu.Lock()
		backend, exists = p.backends[id]
		if !exists || backend.closed() {
			backend = newBackend(id, p.init, p.handler, p.log)
			p.backends[id] = backend
			exists = false
		}
		p.mu.Unlock()
	}

	// Wait for init (returns immediately if it already ran).
	err := backend.initGroup.Wait()

	if !exists {
		// This call created the backend, so it owns the bookkeeping.
		if err != nil {
			p.forget(backend)
		} else {
			p.log.Info().Str("backend", id).Msg("Backend started")
			go func() {
				<-backend.ctx.Done()
				p.forget(backend)
				p.log.Info().Str("backend", id).Msg("Backend stopped")
			}()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("init backend %s: %w", id, err)
	}
	return backend, nil
}

func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) forget(backend *Backend[BackendMetadata, PlayerMetadata, DataType]) {
	p.mu.Lock()
	if p.backends[backend.id] == backend {
		delete(p.backends, backend.id)
	}
	p.mu.Unlock()
}

// Backend returns the open backend with the given id, or nil.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Backend(id string) *Backend[BackendMetadata, PlayerMetadata, DataType] {
	p.mu.RLock()
	backend := p.backends[id]
	p.mu.RUnlock()
	if backend == nil || backend.initGroup.Wait() != nil || backend.closed() {
		return nil
	}
	return backend
}

// Backends returns the open backends ordered by id.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Backends() []*Backend[BackendMetadata, PlayerMetadata, DataType] {
	p.mu.RLock()
	ids := make([]string, 0, len(p.backends))
	for id := range p.backends {
		ids = append(ids, id)
	}
	p.mu.RUnlock()
	sort.Strings(ids)

	out := make([]*Backend[BackendMetadata, PlayerMetadata, DataType], 0, len(ids))
	for _, id := range ids {
		if b := p.Backend(id); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// NewClient admits a player session. It is not on any backend until
// Connect is called.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) NewClient(name string, metadata *PlayerMetadata) *Client[PlayerMetadata, DataType] {
	client := newClient[PlayerMetadata, DataType](name, metadata, p.bufferSize)
	p.mu.Lock()
	p.clients[client] = struct{}{}
	p.mu.Unlock()
	p.log.Debug().Str("player", name).Stringer("session", client.id).Msg("Session admitted")
	return client
}

// Clients returns every admitted session ordered by player name.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Clients() []*Client[PlayerMetadata, DataType] {
	p.mu.RLock()
	clients := make(map[*Client[PlayerMetadata, DataType]]struct{}, len(p.clients))
	for c := range p.clients {
		clients[c] = struct{}{}
	}
	p.mu.RUnlock()
	return sortedClients(clients)
}

func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) hasClient(client *Client[PlayerMetadata, DataType]) bool {
	p.mu.RLock()
	_, ok := p.clients[client]
	p.mu.RUnlock()
	return ok
}

// Connect puts the session on the backend with the given id, creating the
// backend if needed, and takes it off the backend it was on before. Once the
// session is on the new backend a ConnectEvent is sent to the listeners.
// Connecting to the backend the session is already on does nothing.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Connect(ctx context.Context, client *Client[PlayerMetadata, DataType], backendID string) error {
	client.moveMu.Lock()
	defer client.moveMu.Unlock()

	if client.ctx.Err() != nil {
		return ErrClientClosed
	}
	if !p.hasClient(client) {
		return ErrClientNotFound
	}

	backend, err := p.GetOrCreateBackend(backendID)
	if err != nil {
		return err
	}

	previousID := client.BackendID()
	if previousID == backend.id {
		return nil
	}
	if err := backend.addClient(client); err != nil {
		return fmt.Errorf("connect to %s: %w", backend.id, err)
	}
	p.detach(client, previousID)
	client.setBackendID(backend.id)

	p.log.Debug().
		Str("player", client.name).
		Str("previous", previousID).
		Str("current", backend.id).
		Msg("Session connected")
	p.listeners.PlayerConnected(ctx, announce.ConnectEvent{
		Player:   client.name,
		Previous: announce.Server(previousID),
		Current:  announce.Server(backend.id),
	})
	return nil
}

// Disconnect removes the session from the proxy and closes it. A
// DisconnectEvent naming the backend the session was on is sent to the
// listeners. Disconnecting a session twice returns ErrClientNotFound.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Disconnect(ctx context.Context, client *Client[PlayerMetadata, DataType]) error {
	client.moveMu.Lock()
	defer client.moveMu.Unlock()

	p.mu.Lock()
	if _, ok := p.clients[client]; !ok {
		p.mu.Unlock()
		return ErrClientNotFound
	}
	delete(p.clients, client)
	p.mu.Unlock()

	previousID := client.BackendID()
	p.detach(client, previousID)
	client.Close()

	p.log.Debug().Str("player", client.name).Str("previous", previousID).Msg("Session disconnected")
	p.listeners.PlayerDisconnected(ctx, announce.DisconnectEvent{
		Player:   client.name,
		Previous: announce.Server(previousID),
	})
	return nil
}

func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) detach(client *Client[PlayerMetadata, DataType], backendID string) {
	if backendID == "" {
		return
	}
	backend := p.Backend(backendID)
	if backend == nil {
		return
	}
	if err := backend.removeClient(client); err != nil && !errors.Is(err, ErrClientNotFound) {
		p.log.Warn().Err(err).Str("backend", backendID).Msg("Failed to detach client")
	}
}

// SendToClient queues message for one admitted session, whether or not it
// is on a backend.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) SendToClient(client *Client[PlayerMetadata, DataType], message DataType) error {
	if !p.hasClient(client) {
		return ErrClientNotFound
	}
	if err := client.send(message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Broadcast queues message for every admitted session, whichever backend
// it is on.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Broadcast(message DataType) {
	for _, client := range p.Clients() {
		if err := client.send(message); err != nil {
			p.log.Warn().Err(err).Str("player", client.name).Msg("Failed to broadcast to client")
		}
	}
}

// Close closes every backend and drops every admitted session, including
// sessions that never reached a backend. No transitions are reported, and a
// later Disconnect of a dropped session returns ErrClientNotFound.
func (p *Proxy[BackendMetadata, PlayerMetadata, DataType]) Close() {
	for _, backend := range p.Backends() {
		backend.Close()
	}

	p.mu.Lock()
	clients := p.clients
	p.clients = make(map[*Client[PlayerMetadata, DataType]]struct{})
	p.mu.Unlock()
	for client := range clients {
		client.Close()
	}
}
