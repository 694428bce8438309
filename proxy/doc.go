// Package proxy multiplexes player sessions across backend servers.
//
// A Proxy owns a table of backends, created on first use, and a table of
// admitted sessions. Sessions are moved between backends with Connect and
// leave with Disconnect; both report the transition to the
// announce.TransitionListeners registered with Listen. Each backend runs a
// handler goroutine that consumes its join, leave and message events.
package proxy
