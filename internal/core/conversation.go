package core

import (
	"sort"
	"time"
)

// Conversation is a derived, non-persisted view of the thread with one
// peer: the most recent message exchanged and its timestamp. It is
// recomputed on each read so it can never go stale.
type Conversation struct {
	Peer        Identity
	LastMessage Message
	LastTime    time.Time
}

// DeriveConversations groups messages by the other party relative to
// self and keeps the message with the maximum CreatedAt per peer. The
// result is ordered by LastTime descending. On equal timestamps the
// later element in input order wins; input from the store is already
// chronological, so that is the most recently appended message.
func DeriveConversations(messages []Message, self Identity) []Conversation {
	latest := make(map[Identity]Message)
	for _, m := range messages {
		peer := m.Peer(self)
		if peer.IsZero() {
			continue
		}
		prev, ok := latest[peer]
		if !ok || !m.CreatedAt.Before(prev.CreatedAt) {
			latest[peer] = m
		}
	}

	conversations := make([]Conversation, 0, len(latest))
	for peer, m := range latest {
		conversations = append(conversations, Conversation{
			Peer:        peer,
			LastMessage: m,
			LastTime:    m.CreatedAt,
		})
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		if conversations[i].LastTime.Equal(conversations[j].LastTime) {
			// Deterministic order for equal timestamps.
			return conversations[i].Peer < conversations[j].Peer
		}
		return conversations[i].LastTime.After(conversations[j].LastTime)
	})

	return conversations
}
