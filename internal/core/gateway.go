package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/store"
)

// Gateway ties authentication, persistence and live delivery together.
// A send has exactly one durable side effect (the stored row) and one
// best-effort transient side effect (the push); there is deliberately no
// transactional coupling between them, since the history fetch is always
// the source of truth.
type Gateway struct {
	store       store.MessageStore
	registry    *Registry
	sendTimeout time.Duration
	log         *zerolog.Logger
}

// NewGateway constructs a gateway. sendTimeout bounds the store append;
// zero disables the bound.
func NewGateway(st store.MessageStore, registry *Registry, sendTimeout time.Duration, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		store:       st,
		registry:    registry,
		sendTimeout: sendTimeout,
		log:         logger,
	}
}

// Send validates, persists and then best-effort pushes a direct message.
// Validation and authentication failures are rejected before any I/O.
// A store failure or timeout surfaces as ErrPersistence and no push is
// emitted. An offline receiver is not an error; the message is already
// durable and will be seen on the next history fetch.
func (g *Gateway) Send(ctx context.Context, sender Identity, receiver, body, subject string) (*Message, error) {
	if sender.IsZero() {
		return nil, ErrUnauthenticated
	}

	to := NormalizeIdentity(receiver)
	if to.IsZero() {
		return nil, ErrMissingReceiver
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if to == sender {
		return nil, ErrSelfMessage
	}

	if g.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.sendTimeout)
		defer cancel()
	}

	rec, err := g.store.AppendMessage(ctx, &store.Message{
		Sender:   sender.String(),
		Receiver: to.String(),
		Subject:  strings.TrimSpace(subject),
		Body:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msg := messageFromRecord(rec)
	delivered := g.registry.EmitTo(to, &Event{
		Kind:     EventDirectMessage,
		Identity: to,
		Message:  msg,
	})
	if !delivered {
		g.log.Debug().
			Str("identity", sender.String()).
			Str("peer", to.String()).
			Int64("msg_id", msg.ID).
			Msg("receiver offline, push skipped")
	}

	return &msg, nil
}

// ListForUser returns the message history visible to identity, ordered
// ascending by CreatedAt. With a peer it returns only the thread between
// the two; otherwise every message where identity is sender or receiver,
// from which the caller can derive the conversation index.
func (g *Gateway) ListForUser(ctx context.Context, identity Identity, peer string) ([]Message, error) {
	if identity.IsZero() {
		return nil, ErrUnauthenticated
	}

	var (
		rows []*store.Message
		err  error
	)
	if p := NormalizeIdentity(peer); !p.IsZero() {
		rows, err = g.store.ListMessagesForPair(ctx, identity.String(), p.String())
	} else {
		rows, err = g.store.ListMessagesForUser(ctx, identity.String())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, messageFromRecord(row))
	}
	return messages, nil
}

// Conversations is ListForUser followed by DeriveConversations.
func (g *Gateway) Conversations(ctx context.Context, identity Identity) ([]Conversation, error) {
	messages, err := g.ListForUser(ctx, identity, "")
	if err != nil {
		return nil, err
	}
	return DeriveConversations(messages, identity), nil
}

func messageFromRecord(rec *store.Message) Message {
	return Message{
		ID:        rec.ID,
		Sender:    Identity(rec.Sender),
		Receiver:  Identity(rec.Receiver),
		Subject:   rec.Subject,
		Body:      rec.Body,
		CreatedAt: rec.CreatedAt,
	}
}
