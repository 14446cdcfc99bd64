package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/core"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/proto"
)

// MessageHandlers provides HTTP handlers for the message gateway: send,
// thread history, and the derived conversation list.
type MessageHandlers struct {
	gateway *core.Gateway
	log     *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(gateway *core.Gateway, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		gateway: gateway,
		log:     logger,
	}
}

// SendMessageRequest represents the send request body. The sender is
// taken from the authenticated session, never from the body.
type SendMessageRequest struct {
	Receiver string `json:"receiver" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Subject  string `json:"subject"`
}

// SendMessageResponse wraps the stored message returned to the sender,
// so its UI can render the sent copy without a round trip.
type SendMessageResponse struct {
	Success bool               `json:"success"`
	Message proto.EventMessage `json:"message"`
}

// ListMessagesResponse wraps a history fetch.
type ListMessagesResponse struct {
	Success  bool                 `json:"success"`
	Messages []proto.EventMessage `json:"messages"`
}

// ConversationResponse is one entry of the derived conversation index.
type ConversationResponse struct {
	Peer        string             `json:"peer"`
	LastMessage proto.EventMessage `json:"last_message"`
	LastTime    int64              `json:"last_time"`
}

// ListConversationsResponse wraps the conversation index.
type ListConversationsResponse struct {
	Success       bool                   `json:"success"`
	Conversations []ConversationResponse `json:"conversations"`
}

// Send handles sending a direct message.
// POST /api/messages
func (h *MessageHandlers) Send(c *gin.Context) {
	sender := identityFromContext(c)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid request body"})
		return
	}

	msg, err := h.gateway.Send(c.Request.Context(), sender, req.Receiver, req.Body, req.Subject)
	if err != nil {
		h.respondError(c, sender, err)
		return
	}

	c.JSON(http.StatusCreated, SendMessageResponse{
		Success: true,
		Message: eventMessageFromCore(*msg),
	})
}

// List handles fetching message history, optionally filtered to the
// thread with one peer.
// GET /api/messages?peer=<identity>
func (h *MessageHandlers) List(c *gin.Context) {
	identity := identityFromContext(c)
	peer := c.Query("peer")

	messages, err := h.gateway.ListForUser(c.Request.Context(), identity, peer)
	if err != nil {
		h.respondError(c, identity, err)
		return
	}

	out := make([]proto.EventMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, eventMessageFromCore(msg))
	}

	c.JSON(http.StatusOK, ListMessagesResponse{Success: true, Messages: out})
}

// Conversations handles fetching the derived conversation index.
// GET /api/conversations
func (h *MessageHandlers) Conversations(c *gin.Context) {
	identity := identityFromContext(c)

	conversations, err := h.gateway.Conversations(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, identity, err)
		return
	}

	out := make([]ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, ConversationResponse{
			Peer:        conv.Peer.String(),
			LastMessage: eventMessageFromCore(conv.LastMessage),
			LastTime:    conv.LastTime.UnixNano(),
		})
	}

	c.JSON(http.StatusOK, ListConversationsResponse{Success: true, Conversations: out})
}

// respondError maps the gateway error taxonomy onto HTTP statuses:
// validation 400, unauthenticated 401, persistence 500.
func (h *MessageHandlers) respondError(c *gin.Context, identity core.Identity, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthenticated"})
	case core.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
	default:
		h.log.Error().Err(err).Str("identity", identity.String()).Msg("gateway operation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: "internal server error"})
	}
}
