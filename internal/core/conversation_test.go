package core

import (
	"reflect"
	"testing"
	"time"
)

func msgAt(id int64, sender, receiver, body string, at time.Time) Message {
	return Message{
		ID:        id,
		Sender:    Identity(sender),
		Receiver:  Identity(receiver),
		Body:      body,
		CreatedAt: at,
	}
}

func TestDeriveConversationsGroupsByPeerAndKeepsLatest(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Three messages with bob, two with dana, chronological input.
	messages := []Message{
		msgAt(1, "alice", "bob", "one", base),
		msgAt(2, "alice", "dana", "hey", base.Add(1*time.Minute)),
		msgAt(3, "bob", "alice", "two", base.Add(2*time.Minute)),
		msgAt(4, "dana", "alice", "yo", base.Add(3*time.Minute)),
		msgAt(5, "alice", "bob", "three", base.Add(4*time.Minute)),
	}

	conversations := DeriveConversations(messages, "alice")
	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d: %+v", len(conversations), conversations)
	}

	// bob's last message is newer than dana's, so bob comes first.
	if conversations[0].Peer != "bob" || conversations[0].LastMessage.ID != 5 {
		t.Fatalf("unexpected first conversation: %+v", conversations[0])
	}
	if conversations[1].Peer != "dana" || conversations[1].LastMessage.ID != 4 {
		t.Fatalf("unexpected second conversation: %+v", conversations[1])
	}
	if !conversations[0].LastTime.Equal(base.Add(4 * time.Minute)) {
		t.Fatalf("unexpected last time: %v", conversations[0].LastTime)
	}
}

func TestDeriveConversationsIsIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []Message{
		msgAt(1, "alice", "bob", "a", base),
		msgAt(2, "carol", "alice", "b", base.Add(time.Second)),
		msgAt(3, "alice", "bob", "c", base.Add(2*time.Second)),
	}

	first := DeriveConversations(messages, "alice")
	second := DeriveConversations(messages, "alice")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("derive not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDeriveConversationsEqualTimestampLastAppendedWins(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []Message{
		msgAt(1, "alice", "bob", "early", at),
		msgAt(2, "bob", "alice", "late", at),
	}

	conversations := DeriveConversations(messages, "alice")
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	if conversations[0].LastMessage.ID != 2 {
		t.Fatalf("expected later appended message to win, got %+v", conversations[0].LastMessage)
	}
}

func TestDeriveConversationsEmptyInput(t *testing.T) {
	if got := DeriveConversations(nil, "alice"); len(got) != 0 {
		t.Fatalf("expected no conversations, got %+v", got)
	}
}
