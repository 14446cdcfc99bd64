package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeJoin  = "join"
	InboundTypeLeave = "leave"
	InboundTypePing  = "ping"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameMessage = "message"
	EventNameJoined  = "joined"
)

// JoinData requests to receive pushes for the given identity. The
// identity must match the subject of the token the connection
// authenticated with; joins for anyone else are rejected.
type JoinData struct {
	Identity string `json:"identity"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage carries a stored message to the receiver's live
// connections. It is the same shape a history fetch returns, so the
// client can deduplicate the pushed copy against the fetched copy by id
// (or by sender plus timestamp).
type EventMessage struct {
	ID       int64  `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Subject  string `json:"subject,omitempty"`
	Body     string `json:"body"`
	TS       int64  `json:"ts"` // UnixNano of the server-assigned CreatedAt
}

// EventJoined confirms a successful join.
type EventJoined struct {
	Identity string `json:"identity"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
