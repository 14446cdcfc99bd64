package core

// EventKind is a notification the core pushes to live connections.
type EventKind int

const (
	// EventDirectMessage delivers a stored message to the receiver's connections.
	EventDirectMessage EventKind = iota
	// EventJoined confirms a successful room join to the connection.
	EventJoined
	// EventError notifies the connection about a protocol or domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Identity Identity
	Message  Message
	Error    *CoreError
}
