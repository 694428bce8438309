package announce

import "strings"

// UnknownServer is rendered in place of a server name that an announcement
// needs but the transition did not carry.
const UnknownServer = "unknown"

// ServerName is an optional backend server name. The zero value is absent.
type ServerName struct {
	name string
	ok   bool
}

// Server returns a present ServerName, or the absent value if name is empty
// or only whitespace. Empty and missing names are the same thing.
func Server(name string) ServerName {
	if strings.TrimSpace(name) == "" {
		return ServerName{}
	}
	return ServerName{name: name, ok: true}
}

// NoServer returns the absent ServerName.
func NoServer() ServerName {
	return ServerName{}
}

func (s ServerName) Get() (string, bool) {
	return s.name, s.ok
}

func (s ServerName) IsPresent() bool {
	return s.ok
}

// OrElse returns the name if present, otherwise fallback.
func (s ServerName) OrElse(fallback string) string {
	if !s.ok {
		return fallback
	}
	return s.name
}

func (s ServerName) String() string {
	if !s.ok {
		return "<none>"
	}
	return s.name
}
