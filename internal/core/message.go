package core

import "time"

// Message is the domain model for a direct message. Immutable once
// stored; the ID and CreatedAt are assigned by the store at append time.
type Message struct {
	ID        int64
	Sender    Identity
	Receiver  Identity
	Subject   string // optional, empty means absent
	Body      string
	CreatedAt time.Time
}

// Peer returns the other party of the message relative to self.
func (m Message) Peer(self Identity) Identity {
	if m.Sender == self {
		return m.Receiver
	}
	return m.Sender
}
