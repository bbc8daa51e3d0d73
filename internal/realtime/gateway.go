package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

// ErrDisconnect is returned by Handle when the client asked to leave.
var ErrDisconnect = errors.New("realtime: client disconnect")

// TokenVerifier decodes a bearer token into a principal using only the
// token's own claims.
type TokenVerifier interface {
	VerifyToken(token string) (types.Principal, error)
}

// AppendFunc persists a message. A successful append broadcasts
// message:new on its own; the gateway never relays content directly.
type AppendFunc func(ctx context.Context, p types.Principal, conversationID uuid.UUID, content string) error

// Inbound is one frame received from a connection.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type TypingUser struct {
	ConversationID uuid.UUID         `json:"conversationId"`
	User           types.UserSummary `json:"user"`
}

type TypingStop struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Gateway struct {
	log       *logger.Logger
	hub       *Hub
	emit      Emitter
	verifier  TokenVerifier
	appendMsg AppendFunc
}

func NewGateway(log *logger.Logger, hub *Hub, emit Emitter, verifier TokenVerifier, appendMsg AppendFunc) *Gateway {
	return &Gateway{
		log:       log.With("component", "RealtimeGateway"),
		hub:       hub,
		emit:      emit,
		verifier:  verifier,
		appendMsg: appendMsg,
	}
}

func (g *Gateway) Hub() *Hub { return g.hub }

// Connect authenticates a handshake token and registers the connection in
// its personal and role rooms.
func (g *Gateway) Connect(token string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierr.Unauthorized("missing token")
	}
	if g.verifier == nil {
		return nil, apierr.Unauthorized("token verification unavailable")
	}
	p, err := g.verifier.VerifyToken(token)
	if err != nil || !p.Valid() {
		return nil, apierr.Unauthorized("invalid token")
	}
	return g.Attach(p), nil
}

// Attach registers an already-authenticated principal.
func (g *Gateway) Attach(p types.Principal) *Client {
	c := g.hub.NewClient(p)
	g.hub.Join(c, UserRoom(p.ID))
	g.hub.Join(c, RoleRoom(p.Role))
	g.hub.send(c, Message{Event: EventConnected, Data: map[string]any{
		"clientId": c.ID,
		"user":     types.UserSummary{ID: p.ID, Name: p.Name},
		"role":     p.Role,
	}})
	c.Logger.Debug("realtime client connected")
	return c
}

func (g *Gateway) Disconnect(c *Client) {
	if c == nil {
		return
	}
	g.hub.CloseClient(c)
	c.Logger.Debug("realtime client disconnected")
}

// Handle applies one inbound frame. Failures are also reported to the
// client as an error event.
func (g *Gateway) Handle(ctx context.Context, c *Client, in Inbound) error {
	err := g.handle(ctx, c, in)
	if err != nil && !errors.Is(err, ErrDisconnect) {
		g.reject(c, in.Event, err)
	}
	return err
}

func (g *Gateway) handle(ctx context.Context, c *Client, in Inbound) error {
	switch in.Event {
	case InJoinConversation:
		id, err := conversationIDFrom(in.Data)
		if err != nil {
			return err
		}
		room := ConversationRoom(id)
		g.hub.Join(c, room)
		g.hub.send(c, Message{Room: room, Event: EventJoined, Data: map[string]any{"room": room}})
		return nil

	case InLeaveConversation:
		id, err := conversationIDFrom(in.Data)
		if err != nil {
			return err
		}
		room := ConversationRoom(id)
		g.hub.Leave(c, room)
		g.hub.send(c, Message{Room: room, Event: EventLeft, Data: map[string]any{"room": room}})
		return nil

	case InMessageSend:
		var req struct {
			ConversationID uuid.UUID `json:"conversationId"`
			Content        string    `json:"content"`
		}
		if err := json.Unmarshal(in.Data, &req); err != nil || req.ConversationID == uuid.Nil {
			return apierr.InvalidArgument("message:send requires conversationId and content")
		}
		if g.appendMsg == nil {
			return apierr.Internal(errors.New("message ledger not configured"))
		}
		return g.appendMsg(ctx, c.Principal, req.ConversationID, req.Content)

	case InTypingStart:
		id, err := conversationIDFrom(in.Data)
		if err != nil {
			return err
		}
		g.emit.Emit(ctx, Message{
			Room:    ConversationRoom(id),
			Event:   EventTypingUser,
			Data:    TypingUser{ConversationID: id, User: types.UserSummary{ID: c.Principal.ID, Name: c.Principal.Name}},
			Exclude: c.ID.String(),
		})
		return nil

	case InTypingStop:
		id, err := conversationIDFrom(in.Data)
		if err != nil {
			return err
		}
		g.emit.Emit(ctx, Message{
			Room:    ConversationRoom(id),
			Event:   EventTypingStop,
			Data:    TypingStop{ConversationID: id, UserID: c.Principal.ID},
			Exclude: c.ID.String(),
		})
		return nil

	case InDisconnect:
		return ErrDisconnect
	}
	return apierr.InvalidArgument("unknown event %q", in.Event)
}

func (g *Gateway) reject(c *Client, event string, err error) {
	code := apierr.CodeOf(err)
	msg := err.Error()
	if code == "" || code == apierr.CodeInternal {
		code = apierr.CodeInternal
		g.log.Error("realtime event failed", "event", event, "client_id", c.ID, "error", err)
		msg = "internal error"
	}
	g.hub.send(c, Message{Event: EventError, Data: ErrorPayload{Event: event, Code: string(code), Message: msg}})
}

// conversationIDFrom accepts a bare id ("<uuid>"), a room name as carried
// by outbound frames ("conversation:<uuid>"), or an object carrying
// conversationId.
func conversationIDFrom(raw json.RawMessage) (uuid.UUID, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if id, ok := ParseConversationRoom(s); ok {
			return id, nil
		}
		if id, err := uuid.Parse(s); err == nil {
			return id, nil
		}
		return uuid.Nil, apierr.InvalidArgument("invalid conversation id")
	}
	var obj struct {
		ConversationID uuid.UUID `json:"conversationId"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.ConversationID == uuid.Nil {
		return uuid.Nil, apierr.InvalidArgument("invalid conversation id")
	}
	return obj.ConversationID, nil
}
