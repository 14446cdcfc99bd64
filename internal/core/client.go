package core

import "github.com/google/uuid"

// eventBuffer bounds the per-connection event queue. Pushes beyond it
// are dropped rather than blocking the sender.
const eventBuffer = 16

// Client is one live connection as seen by the registry. A reconnecting
// user shows up as a fresh Client with a new ID.
type Client struct {
	ID       string
	Identity Identity
	Events   chan *Event
}

// NewClient constructs a client for the given identity with an
// initialized event channel.
func NewClient(identity Identity) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Identity: identity,
		Events:   make(chan *Event, eventBuffer),
	}
}

// push offers an event without blocking. Returns false if the client's
// queue is full.
func (c *Client) push(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
