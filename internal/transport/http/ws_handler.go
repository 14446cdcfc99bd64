package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/auth"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/core"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/proto"
)

// writeTimeout bounds a single websocket write so a stalled recipient
// connection cannot back up the write loop.
const writeTimeout = 5 * time.Second

// WSHandler upgrades HTTP connections, authenticates them, and bridges
// them to the connection registry. The connection only starts receiving
// pushes after a join frame whose identity matches the token subject.
type WSHandler struct {
	registry    *core.Registry
	authService *auth.Service
	rateLimit   int
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(registry *core.Registry, authService *auth.Service, rateLimit int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		registry:    registry,
		authService: authService,
		rateLimit:   rateLimit,
		log:         logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	identity, ok := h.authenticate(r)
	if !ok {
		stdhttp.Error(w, "invalid or missing token", stdhttp.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(identity)
	// Disconnect always removes the connection, even if it never joined
	// or races an in-flight emit.
	defer h.registry.Leave(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := newRateLimiter(h.rateLimit)
	limiter.startReset(ctx.Done())

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// authenticate resolves the token from the query string or the
// Authorization header and returns the identity it is bound to.
func (h *WSHandler) authenticate(r *stdhttp.Request) (core.Identity, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return "", false
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws token rejected")
		return "", false
	}
	return h.authService.Identity(claims), true
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			if err := h.writeOutbound(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: core.ErrCodeRateLimited, Msg: "too many frames"},
			}); err != nil {
				return err
			}
			continue
		}

		switch inbound.Type {
		case proto.InboundTypeJoin:
			var join proto.JoinData
			if err := json.Unmarshal(inbound.Data, &join); err != nil {
				return err
			}
			requested := core.NormalizeIdentity(join.Identity)
			if requested.IsZero() {
				requested = client.Identity
			}
			if requested != client.Identity {
				h.log.Warn().
					Str("identity", client.Identity.String()).
					Str("requested", requested.String()).
					Msg("join rejected for foreign identity")
				if err := h.writeOutbound(ctx, conn, proto.Outbound{
					Type:  proto.OutboundTypeError,
					Error: &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "cannot join as another identity"},
				}); err != nil {
					return err
				}
				continue
			}
			h.registry.Join(client.Identity, client)
			if err := h.writeOutbound(ctx, conn, outboundFromEvent(&core.Event{
				Kind:     core.EventJoined,
				Identity: client.Identity,
			})); err != nil {
				return err
			}
		case proto.InboundTypeLeave:
			h.registry.Leave(client)
		case proto.InboundTypePing:
			// Keepalive only.
		default:
			if err := h.writeOutbound(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"},
			}); err != nil {
				return err
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := h.writeOutbound(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeOutbound(ctx context.Context, conn *websocket.Conn, outbound proto.Outbound) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, outbound)
}
