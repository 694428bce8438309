package proxy

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type BackendInitFunc[BackendMetadata any] func(id string) (metadata *BackendMetadata, err error)

type BackendHandlerFunc[BackendMetadata, PlayerMetadata, DataType any] func(ctx context.Context, backend *Backend[BackendMetadata, PlayerMetadata, DataType])

// Backend is one backend server behind the proxy.
type Backend[BackendMetadata, PlayerMetadata, DataType any] struct {
	initGroup errgroup.Group

	id       string
	metadata *BackendMetadata
	clients  map[*Client[PlayerMetadata, DataType]]struct{}
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	eventsCh chan Event[PlayerMetadata, DataType]
	log      zerolog.Logger
}

func newBackend[BackendMetadata, PlayerMetadata, DataType any](id string, init BackendInitFunc[BackendMetadata], handler BackendHandlerFunc[BackendMetadata, PlayerMetadata, DataType], log zerolog.Logger) *Backend[BackendMetadata, PlayerMetadata, DataType] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Backend[BackendMetadata, PlayerMetadata, DataType]{
		id:       id,
		clients:  make(map[*Client[PlayerMetadata, DataType]]struct{}),
		ctx:      ctx,
		cancel:   cancel,
		eventsCh: make(chan Event[PlayerMetadata, DataType], 256),
		log:      log.With().Str("backend", id).Logger(),
	}
	b.initGroup.Go(func() error {
		metadata, err := init(id)
		if err != nil {
			cancel()
			return err
		}
		b.metadata = metadata
		go func() {
			handler(ctx, b)
			// When the handler returns, close the backend.
			b.Close()
		}()
		return nil
	})
	return b
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) ID() string {
	return b.id
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) Events() <-chan Event[PlayerMetadata, DataType] {
	return b.eventsCh
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) Metadata() *BackendMetadata {
	return b.metadata
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) Context() context.Context {
	return b.ctx
}

// emit queues an event for the handler. Events are dropped once the backend
// is closed since nothing reads them anymore.
func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) emit(e Event[PlayerMetadata, DataType]) {
	select {
	case <-b.ctx.Done():
	case b.eventsCh <- e:
	}
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) addClient(client *Client[PlayerMetadata, DataType]) error {
	b.mu.Lock()
	select {
	case <-b.ctx.Done():
		b.mu.Unlock()
		return ErrBackendClosed
	default:
	}
	newClients := make(map[*Client[PlayerMetadata, DataType]]struct{}, len(b.clients)+1)
	for c := range b.clients {
		newClients[c] = struct{}{}
	}
	newClients[client] = struct{}{}
	b.clients = newClients
	b.mu.Unlock()
	b.emit(Event[PlayerMetadata, DataType]{
		Type:   EventJoin,
		Client: client,
	})
	return nil
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) removeClient(client *Client[PlayerMetadata, DataType]) error {
	b.mu.Lock()
	if _, exists := b.clients[client]; !exists {
		b.mu.Unlock()
		return ErrClientNotFound
	}
	newClients := make(map[*Client[PlayerMetadata, DataType]]struct{}, len(b.clients)-1)
	for c := range b.clients {
		if c != client {
			newClients[c] = struct{}{}
		}
	}
	b.clients = newClients
	b.mu.Unlock()
	b.emit(Event[PlayerMetadata, DataType]{
		Type:   EventLeave,
		Client: client,
	})
	return nil
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) hasClient(client *Client[PlayerMetadata, DataType]) bool {
	b.mu.RLock()
	_, exists := b.clients[client]
	b.mu.RUnlock()
	return exists
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) HandleClientMessage(client *Client[PlayerMetadata, DataType], message DataType) error {
	if !b.hasClient(client) {
		return ErrClientNotFound
	}
	b.emit(Event[PlayerMetadata, DataType]{
		Type:    EventMessage,
		Client:  client,
		Message: message,
	})
	return nil
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) SendToClient(client *Client[PlayerMetadata, DataType], message DataType) error {
	if !b.hasClient(client) {
		return ErrClientNotFound
	}
	if err := client.send(message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) Broadcast(message DataType) {
	b.BroadcastExcept(nil, message)
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) BroadcastExcept(except *Client[PlayerMetadata, DataType], message DataType) {
	b.mu.RLock()
	clients := b.clients
	b.mu.RUnlock()
	for client := range clients {
		if client == except {
			continue
		}
		if err := client.send(message); err != nil {
			b.log.Warn().Err(err).Str("player", client.Name()).Msg("Failed to send message to client")
		}
	}
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) closed() bool {
	return b.ctx.Err() != nil
}

// Close stops the backend and drops every session on it. Dropped sessions
// still have to be disconnected from the proxy by their owner.
func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) Close() {
	b.cancel()
	b.mu.Lock()
	for client := range b.clients {
		client.Close()
	}
	b.clients = nil
	b.mu.Unlock()
}

func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) FindClient(predicate func(*PlayerMetadata) bool) *Client[PlayerMetadata, DataType] {
	b.mu.RLock()
	clients := b.clients
	b.mu.RUnlock()
	for client := range clients {
		if predicate(client.metadata) {
			return client
		}
	}
	return nil
}

// Clients returns the sessions on the backend ordered by player name.
func (b *Backend[BackendMetadata, PlayerMetadata, DataType]) Clients() []*Client[PlayerMetadata, DataType] {
	b.mu.RLock()
	clients := b.clients
	b.mu.RUnlock()
	return sortedClients(clients)
}

func sortedClients[PlayerMetadata, DataType any](set map[*Client[PlayerMetadata, DataType]]struct{}) []*Client[PlayerMetadata, DataType] {
	out := make([]*Client[PlayerMetadata, DataType], 0, len(set))
	for client := range set {
		out = append(out, client)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].id.String() < out[j].id.String()
	})
	return out
}
