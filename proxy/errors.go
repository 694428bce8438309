package proxy

import "errors"

var (
	ErrClientNotFound = errors.New("client not found")
	ErrClientClosed   = errors.New("client disconnected")
	ErrSendBufferFull = errors.New("send buffer full, client disconnected")
	ErrBackendClosed  = errors.New("backend is closed")
	ErrInvalidID      = errors.New("invalid backend id: cannot be empty")
)
