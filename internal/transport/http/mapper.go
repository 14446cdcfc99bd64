package http

import (
	"github.com/Foysal-Munsy/careerostad-messaging/internal/core"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/proto"
)

// eventMessageFromCore converts a domain message to the wire shape
// shared by the REST responses and websocket pushes. Keeping both on one
// shape is what lets the client deduplicate a pushed copy against a
// fetched copy.
func eventMessageFromCore(msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		ID:       msg.ID,
		Sender:   msg.Sender.String(),
		Receiver: msg.Receiver.String(),
		Subject:  msg.Subject,
		Body:     msg.Body,
		TS:       msg.CreatedAt.UnixNano(),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventDirectMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMessage,
			Data:  eventMessageFromCore(event.Message),
		}
	case core.EventJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameJoined,
			Data:  proto.EventJoined{Identity: event.Identity.String()},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
