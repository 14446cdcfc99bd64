package store

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidMessage is returned by AppendMessage when the record is
// missing a body or either identity.
var ErrInvalidMessage = errors.New("invalid message")

// User represents an account known to the identity provider.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Message represents a persisted direct message. Rows are append-only:
// no update or delete is ever exposed, matching the email-like semantics
// of the feature.
type Message struct {
	ID        int64
	Sender    string
	Receiver  string
	Subject   string // empty means absent (stored as NULL)
	Body      string
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new account with a hashed password.
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)

	// GetUserByEmail retrieves an account by its email identity.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// MessageStore is the durable append-only log of direct messages.
type MessageStore interface {
	// AppendMessage validates and persists a message, assigning the id
	// and a server-side CreatedAt that is monotonically non-decreasing
	// per store. Returns the stored record.
	AppendMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListMessagesForUser returns every message where identity is sender
	// or receiver, ordered by CreatedAt ascending.
	ListMessagesForUser(ctx context.Context, identity string) ([]*Message, error)

	// ListMessagesForPair returns the messages exchanged between a and b
	// in either direction, ordered by CreatedAt ascending.
	ListMessagesForPair(ctx context.Context, a, b string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
