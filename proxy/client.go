package proxy

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Client is one player session. A session is admitted by the proxy first and
// is then attached to at most one backend at a time.
type Client[PlayerMetadata, DataType any] struct {
	id        uuid.UUID
	name      string
	metadata  *PlayerMetadata
	bufferCh  chan DataType
	sendCh    chan DataType
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// moveMu serializes Connect and Disconnect for this session.
	moveMu    sync.Mutex
	mu        sync.RWMutex
	backendID string
}

func newClient[PlayerMetadata, DataType any](name string, metadata *PlayerMetadata, bufferSize int) *Client[PlayerMetadata, DataType] {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client[PlayerMetadata, DataType]{
		id:       uuid.New(),
		name:     name,
		metadata: metadata,
		bufferCh: make(chan DataType, bufferSize),
		sendCh:   make(chan DataType),
		ctx:      ctx,
		cancel:   cancel,
	}
	// Forward data sent to bufferCh (from any goroutine) to a channel that
	// is read by a single goroutine.
	go func() {
		for {
			select {
			case <-ctx.Done():
				close(c.sendCh)
				return
			case data := <-c.bufferCh:
				// Forwarding blocks until the session has read from
				// Receive(). If the buffer fills up in the meantime, send
				// closes the client, which is why the context is checked
				// here as well.
				select {
				case <-ctx.Done():
					close(c.sendCh)
					return
				case c.sendCh <- data:
				}
			}
		}
	}()
	return c
}

func (c *Client[PlayerMetadata, DataType]) ID() uuid.UUID {
	return c.id
}

// Name is the player name used in announcements.
func (c *Client[PlayerMetadata, DataType]) Name() string {
	return c.name
}

func (c *Client[PlayerMetadata, DataType]) Context() context.Context {
	return c.ctx
}

func (c *Client[PlayerMetadata, DataType]) Metadata() *PlayerMetadata {
	return c.metadata
}

// BackendID returns the id of the backend the session is on, or "" if it
// is not on one.
func (c *Client[PlayerMetadata, DataType]) BackendID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backendID
}

func (c *Client[PlayerMetadata, DataType]) setBackendID(id string) {
	c.mu.Lock()
	c.backendID = id
	c.mu.Unlock()
}

func (c *Client[PlayerMetadata, DataType]) send(data DataType) error {
	select {
	case <-c.ctx.Done():
		return ErrClientClosed
	case c.bufferCh <- data:
		return nil
	default:
		// Buffer is full, drop the session.
		c.Close()
		return ErrSendBufferFull
	}
}

func (c *Client[PlayerMetadata, DataType]) Receive() <-chan DataType {
	return c.sendCh
}

func (c *Client[PlayerMetadata, DataType]) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
	})
}
