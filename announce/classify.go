package announce

import (
	"fmt"
	"strings"
)

// Mode selects how disconnects are classified.
//
// ModeDistinct is the default and produces all four kinds: a disconnect
// from a known server is a Leave and a disconnect from no server is a
// Disconnect.
//
// ModeCollapsed makes every disconnect a Leave, from "unknown" when there
// is no previous server. KindDisconnect is never produced.
type Mode int

const (
	ModeDistinct Mode = iota
	ModeCollapsed
)

func (m Mode) String() string {
	switch m {
	case ModeDistinct:
		return "distinct"
	case ModeCollapsed:
		return "collapsed"
	}
	return fmt.Sprintf("<!Mode %d>", m)
}

// ParseMode parses the config spelling of a Mode. An empty string is
// ModeDistinct.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "distinct":
		return ModeDistinct, nil
	case "collapsed":
		return ModeCollapsed, nil
	}
	return ModeDistinct, fmt.Errorf("unknown announce mode: %q", s)
}

// Classify decides which announcement a transition gets. It never fails.
func (m Mode) Classify(event EventKind, previous, current ServerName) Kind {
	if event == Disconnected {
		if m == ModeCollapsed || previous.IsPresent() {
			return KindLeave
		}
		return KindDisconnect
	}
	// Anything that isn't a disconnect is a connect. A missing current
	// server is rendered as UnknownServer by Format.
	if previous.IsPresent() {
		return KindMove
	}
	return KindJoin
}

// Classify is ModeDistinct.Classify.
func Classify(event EventKind, previous, current ServerName) Kind {
	return ModeDistinct.Classify(event, previous, current)
}
