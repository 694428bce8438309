package proxy

import "fmt"

type EventType int

func (et EventType) String() string {
	switch et {
	case EventJoin:
		return "EventJoin"
	case EventLeave:
		return "EventLeave"
	case EventMessage:
		return "EventMessage"
	}
	return fmt.Sprintf("<!EventType %d>", et)
}

const (
	EventJoin EventType = iota
	EventLeave
	EventMessage
)

// Event is delivered on Backend.Events. Join and leave are per backend: a
// player moving from a to b produces EventLeave on a and EventJoin on b.
type Event[PlayerMetadata, DataType any] struct {
	Type    EventType
	Client  *Client[PlayerMetadata, DataType]
	Message DataType
}
