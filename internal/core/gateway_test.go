package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/store"
)

// fakeMessageStore is an in-memory MessageStore for gateway tests.
type fakeMessageStore struct {
	mu        sync.Mutex
	messages  []*store.Message
	nextID    int64
	appendErr error
	lastTS    time.Time
}

func (f *fakeMessageStore) AppendMessage(_ context.Context, msg *store.Message) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return nil, f.appendErr
	}
	if msg.Sender == "" || msg.Receiver == "" || strings.TrimSpace(msg.Body) == "" {
		return nil, store.ErrInvalidMessage
	}

	// Strictly increasing so ordering assertions never tie.
	now := time.Now().UTC()
	if !now.After(f.lastTS) {
		now = f.lastTS.Add(time.Nanosecond)
	}
	f.lastTS = now

	f.nextID++
	stored := *msg
	stored.ID = f.nextID
	stored.CreatedAt = now
	f.messages = append(f.messages, &stored)
	return &stored, nil
}

func (f *fakeMessageStore) ListMessagesForUser(_ context.Context, identity string) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*store.Message
	for _, m := range f.messages {
		if m.Sender == identity || m.Receiver == identity {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) ListMessagesForPair(_ context.Context, a, b string) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*store.Message
	for _, m := range f.messages {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestGateway(st store.MessageStore) (*Gateway, *Registry) {
	logger := zerolog.Nop()
	registry := NewRegistry(&logger)
	return NewGateway(st, registry, time.Second, &logger), registry
}

func TestSendPersistsAndPushesToOnlineReceiver(t *testing.T) {
	st := &fakeMessageStore{}
	gateway, registry := newTestGateway(st)

	bob := NewClient("bob@example.com")
	registry.Join("bob@example.com", bob)

	msg, err := gateway.Send(context.Background(), "alice@example.com", "Bob@Example.com", "Hello", "")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if msg.ID == 0 || msg.CreatedAt.IsZero() {
		t.Fatalf("expected assigned id and timestamp: %+v", msg)
	}
	if msg.Receiver != "bob@example.com" {
		t.Fatalf("expected normalized receiver, got %q", msg.Receiver)
	}

	ev := mustEvent(t, bob.Events, EventDirectMessage)
	if ev.Message.Sender != "alice@example.com" || ev.Message.Body != "Hello" {
		t.Fatalf("unexpected push payload: %+v", ev.Message)
	}
	if ev.Message.ID != msg.ID {
		t.Fatalf("push and return value must refer to the same message")
	}
}

func TestSendVisibleToBothPartiesExactlyOnce(t *testing.T) {
	st := &fakeMessageStore{}
	gateway, _ := newTestGateway(st)
	ctx := context.Background()

	if _, err := gateway.Send(ctx, "alice@example.com", "bob@example.com", "Hello", ""); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	for _, identity := range []Identity{"alice@example.com", "bob@example.com"} {
		messages, err := gateway.ListForUser(ctx, identity, "")
		if err != nil {
			t.Fatalf("list for %s failed: %v", identity, err)
		}
		count := 0
		for _, m := range messages {
			if m.Body == "Hello" {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("expected exactly one Hello for %s, got %d", identity, count)
		}
	}
}

func TestSendToOfflinePeerSucceeds(t *testing.T) {
	st := &fakeMessageStore{}
	gateway, registry := newTestGateway(st)
	ctx := context.Background()

	if registry.Online("carol@example.com") {
		t.Fatal("carol must be offline for this test")
	}

	msg, err := gateway.Send(ctx, "alice@example.com", "carol@example.com", "Hi", "")
	if err != nil {
		t.Fatalf("send to offline peer must succeed: %v", err)
	}

	// Carol connects later and fetches history.
	messages, err := gateway.ListForUser(ctx, "carol@example.com", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != msg.ID {
		t.Fatalf("expected stored message in carol's history, got %+v", messages)
	}
}

func TestSendValidation(t *testing.T) {
	st := &fakeMessageStore{}
	gateway, _ := newTestGateway(st)
	ctx := context.Background()

	tests := []struct {
		name     string
		sender   Identity
		receiver string
		body     string
		wantErr  error
	}{
		{"unauthenticated", "", "bob@example.com", "hi", ErrUnauthenticated},
		{"missing receiver", "alice@example.com", "  ", "hi", ErrMissingReceiver},
		{"empty body", "alice@example.com", "bob@example.com", "   ", ErrEmptyBody},
		{"self message", "alice@example.com", "Alice@Example.com", "hi", ErrSelfMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gateway.Send(ctx, tt.sender, tt.receiver, tt.body, ""); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if len(st.messages) != 0 {
		t.Fatalf("rejected sends must persist nothing, store has %d rows", len(st.messages))
	}
}

func TestSendStoreFailureSurfacesPersistenceErrorWithoutPush(t *testing.T) {
	st := &fakeMessageStore{appendErr: errors.New("disk on fire")}
	gateway, registry := newTestGateway(st)

	bob := NewClient("bob@example.com")
	registry.Join("bob@example.com", bob)

	_, err := gateway.Send(context.Background(), "alice@example.com", "bob@example.com", "hi", "")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	// Push only follows confirmed persistence.
	noEvent(t, bob.Events)
}

func TestListForUserPairFilter(t *testing.T) {
	st := &fakeMessageStore{}
	gateway, _ := newTestGateway(st)
	ctx := context.Background()

	sends := []struct{ from, to, body string }{
		{"alice@example.com", "bob@example.com", "to bob 1"},
		{"alice@example.com", "dana@example.com", "to dana"},
		{"bob@example.com", "alice@example.com", "from bob"},
	}
	for _, s := range sends {
		if _, err := gateway.Send(ctx, Identity(s.from), s.to, s.body, ""); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	thread, err := gateway.ListForUser(ctx, "alice@example.com", "bob@example.com")
	if err != nil {
		t.Fatalf("list pair failed: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("expected 2 messages in thread, got %d", len(thread))
	}
	for i := 1; i < len(thread); i++ {
		if thread[i].CreatedAt.Before(thread[i-1].CreatedAt) {
			t.Fatalf("thread out of order: %v before %v", thread[i].CreatedAt, thread[i-1].CreatedAt)
		}
	}

	if _, err := gateway.ListForUser(ctx, "", ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestConversationsEndToEnd(t *testing.T) {
	st := &fakeMessageStore{}
	gateway, _ := newTestGateway(st)
	ctx := context.Background()

	// Three messages to bob, then two to dana.
	for _, body := range []string{"b1", "b2", "b3"} {
		if _, err := gateway.Send(ctx, "alice@example.com", "bob@example.com", body, ""); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}
	for _, body := range []string{"d1", "d2"} {
		if _, err := gateway.Send(ctx, "alice@example.com", "dana@example.com", body, ""); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	conversations, err := gateway.Conversations(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("conversations failed: %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}
	// Dana's thread was touched last.
	if conversations[0].Peer != "dana@example.com" || conversations[0].LastMessage.Body != "d2" {
		t.Fatalf("unexpected first conversation: %+v", conversations[0])
	}
	if conversations[1].Peer != "bob@example.com" || conversations[1].LastMessage.Body != "b3" {
		t.Fatalf("unexpected second conversation: %+v", conversations[1])
	}
}
