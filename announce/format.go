package announce

import "fmt"

// Format renders the announcement text for a classified transition. Names
// are inserted verbatim; a server name the template needs but which is
// absent is rendered as UnknownServer.
func Format(kind Kind, player string, previous, current ServerName) string {
	switch kind {
	case KindJoin:
		return fmt.Sprintf("%s joined %s", player, current.OrElse(UnknownServer))
	case KindMove:
		return fmt.Sprintf("%s moved %s -> %s", player, previous.OrElse(UnknownServer), current.OrElse(UnknownServer))
	case KindLeave:
		return fmt.Sprintf("%s left %s", player, previous.OrElse(UnknownServer))
	case KindDisconnect:
		return fmt.Sprintf("%s disconnected", player)
	}
	return fmt.Sprintf("%s %s", player, kind)
}
