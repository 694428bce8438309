package announce

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// ConnectEvent is sent after a player has finished connecting to a backend
// server. Previous is absent on the player's first connect.
type ConnectEvent struct {
	Player   string
	Previous ServerName
	Current  ServerName
}

// DisconnectEvent is sent when a player leaves the proxy. Previous is the
// server the player was on, absent if they never reached one.
type DisconnectEvent struct {
	Player   string
	Previous ServerName
}

// TransitionListener receives player transitions from the host.
type TransitionListener interface {
	PlayerConnected(ctx context.Context, e ConnectEvent)
	PlayerDisconnected(ctx context.Context, e DisconnectEvent)
}

// Registry is a table of TransitionListeners. It is itself a
// TransitionListener that forwards every notification to the listeners
// registered at that moment, in registration order.
type Registry struct {
	mu        sync.RWMutex
	listeners map[uint64]TransitionListener
	seq       atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{listeners: make(map[uint64]TransitionListener)}
}

// Register adds l to the table and returns a function that removes it.
// The returned function may be called more than once.
func (r *Registry) Register(l TransitionListener) (unregister func()) {
	id := r.seq.Add(1)

	r.mu.Lock()
	r.listeners[id] = l
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

func (r *Registry) PlayerConnected(ctx context.Context, e ConnectEvent) {
	for _, l := range r.snapshot() {
		l.PlayerConnected(ctx, e)
	}
}

func (r *Registry) PlayerDisconnected(ctx context.Context, e DisconnectEvent) {
	for _, l := range r.snapshot() {
		l.PlayerDisconnected(ctx, e)
	}
}

// snapshot copies the table so listeners run without the lock held.
func (r *Registry) snapshot() []TransitionListener {
	r.mu.RLock()
	ids := make([]uint64, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ls := make([]TransitionListener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, r.listeners[id])
	}
	r.mu.RUnlock()
	return ls
}
