// Package announce derives the broadcast line for a player moving through
// the proxy.
//
// A transition is a player name plus an optional previous and current
// backend server, reported either when the player finishes connecting to a
// server or when they leave the proxy. Classify maps it to one of four
// kinds and Format renders the text:
//
//	Join        "<player> joined <current>"
//	Move        "<player> moved <previous> -> <current>"
//	Leave       "<player> left <previous>"
//	Disconnect  "<player> disconnected"
//
// Disconnect is kept apart from Leave by default (ModeDistinct): a player
// whose session closed before reaching any server is reported differently
// from one who left a server. ModeCollapsed folds every disconnect into
// Leave for deployments that want the three-message behaviour.
//
// Announcer ties the two together and hands the result to a Broadcaster.
// Hosts deliver transitions through the TransitionListener interface;
// Registry lets several listeners share one host subscription.
package announce
