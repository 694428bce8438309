package announce

import "fmt"

// EventKind is the type of host notification a transition came from.
type EventKind int

const (
	Connected EventKind = iota
	Disconnected
)

func (ek EventKind) String() string {
	switch ek {
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	}
	return fmt.Sprintf("<!EventKind %d>", ek)
}

// Kind is the classified transition an announcement describes.
type Kind int

const (
	KindJoin Kind = iota
	KindMove
	KindLeave
	KindDisconnect
)

func (k Kind) String() string {
	switch k {
	case KindJoin:
		return "Join"
	case KindMove:
		return "Move"
	case KindLeave:
		return "Leave"
	case KindDisconnect:
		return "Disconnect"
	}
	return fmt.Sprintf("<!Kind %d>", k)
}
