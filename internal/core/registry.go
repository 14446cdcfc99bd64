package core

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry tracks which identities currently have open realtime
// connections and delivers targeted pushes to them. It is the single
// piece of shared mutable state with concurrent writers (joins and
// leaves from connection handlers) and concurrent readers (EmitTo
// during sends), so the room table is guarded by a mutex.
type Registry struct {
	mu    sync.RWMutex
	rooms map[Identity]map[*Client]struct{}
	log   *zerolog.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[Identity]map[*Client]struct{}),
		log:   logger,
	}
}

// Join registers the client under its identity's room. An identity may
// hold multiple simultaneous connections (tabs, devices); all of them
// receive pushes.
func (r *Registry) Join(identity Identity, c *Client) {
	if identity.IsZero() || c == nil {
		return
	}
	c.Identity = identity

	r.mu.Lock()
	room, ok := r.rooms[identity]
	if !ok {
		room = make(map[*Client]struct{})
		r.rooms[identity] = room
	}
	room[c] = struct{}{}
	size := len(room)
	r.mu.Unlock()

	r.log.Debug().
		Str("identity", identity.String()).
		Str("client_id", c.ID).
		Int("connections", size).
		Msg("client joined")
}

// Leave removes the client from whatever room it belonged to. Safe to
// call on a client that already left or was never registered.
func (r *Registry) Leave(c *Client) {
	if c == nil || c.Identity.IsZero() {
		return
	}

	r.mu.Lock()
	room, ok := r.rooms[c.Identity]
	if ok {
		delete(room, c)
		if len(room) == 0 {
			delete(r.rooms, c.Identity)
		}
	}
	r.mu.Unlock()

	if ok {
		r.log.Debug().
			Str("identity", c.Identity.String()).
			Str("client_id", c.ID).
			Msg("client left")
	}
}

// EmitTo sends the event to every live connection registered under the
// identity. Returns whether at least one connection accepted it; false
// means the identity is offline, which is informational, not an error.
// Slow consumers whose queues are full are skipped so that a stalled
// recipient can never delay the sender.
func (r *Registry) EmitTo(identity Identity, ev *Event) bool {
	r.mu.RLock()
	room := r.rooms[identity]
	clients := make([]*Client, 0, len(room))
	for c := range room {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	delivered := false
	for _, c := range clients {
		if c.push(ev) {
			delivered = true
		} else {
			r.log.Warn().
				Str("identity", identity.String()).
				Str("client_id", c.ID).
				Msg("dropped event for slow consumer")
		}
	}
	return delivered
}

// Online reports whether the identity has at least one live connection.
func (r *Registry) Online(identity Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[identity]) > 0
}
