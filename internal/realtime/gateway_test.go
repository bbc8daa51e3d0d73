package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
)

type fakeVerifier struct {
	tokens map[string]types.Principal
}

func (f fakeVerifier) VerifyToken(token string) (types.Principal, error) {
	p, ok := f.tokens[token]
	if !ok {
		return types.Principal{}, errors.New("bad token")
	}
	return p, nil
}

func frame(t *testing.T, event string, data any) Inbound {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return Inbound{Event: event, Data: raw}
}

// drain discards the connected/joined acknowledgements.
func drain(c *Client) {
	for {
		select {
		case <-c.Outbound:
		default:
			return
		}
	}
}

func TestGatewayConnectJoinsPersonalAndRoleRooms(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	p := principal(types.RoleAttendant)
	g := NewGateway(mustTestLogger(t), hub, &HubEmitter{Hub: hub}, fakeVerifier{tokens: map[string]types.Principal{"good": p}}, nil)

	if _, err := g.Connect(""); !apierr.Is(err, apierr.CodeUnauthorized) {
		t.Fatalf("missing token: want unauthorized, got %v", err)
	}
	if _, err := g.Connect("forged"); !apierr.Is(err, apierr.CodeUnauthorized) {
		t.Fatalf("bad token: want unauthorized, got %v", err)
	}

	c, err := g.Connect("good")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !hub.InRoom(c, UserRoom(p.ID)) || !hub.InRoom(c, RoleRoom(types.RoleAttendant)) {
		t.Fatalf("client not placed in personal and role rooms")
	}
	if got := recvMessage(t, c.Outbound, time.Second); got.Event != EventConnected {
		t.Fatalf("expected connected ack, got %s", got.Event)
	}
}

func TestGatewayTypingExcludesSender(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	g := NewGateway(mustTestLogger(t), hub, &HubEmitter{Hub: hub}, nil, nil)
	ctx := context.Background()
	convID := uuid.New()

	a := g.Attach(principal(types.RoleAttendant))
	b := g.Attach(principal(types.RoleClient))
	for _, c := range []*Client{a, b} {
		if err := g.Handle(ctx, c, frame(t, InJoinConversation, convID.String())); err != nil {
			t.Fatalf("join: %v", err)
		}
		drain(c)
	}

	if err := g.Handle(ctx, a, frame(t, InTypingStart, map[string]any{"conversationId": convID})); err != nil {
		t.Fatalf("typing:start: %v", err)
	}
	got := recvMessage(t, b.Outbound, time.Second)
	typing, ok := got.Data.(TypingUser)
	if got.Event != EventTypingUser || !ok || typing.User.ID != a.Principal.ID || typing.ConversationID != convID {
		t.Fatalf("unexpected typing event: %+v", got)
	}
	expectSilence(t, a.Outbound)

	if err := g.Handle(ctx, a, frame(t, InTypingStop, convID.String())); err != nil {
		t.Fatalf("typing:stop: %v", err)
	}
	got = recvMessage(t, b.Outbound, time.Second)
	if stop, ok := got.Data.(TypingStop); got.Event != EventTypingStop || !ok || stop.UserID != a.Principal.ID {
		t.Fatalf("unexpected typing stop: %+v", got)
	}

	if err := g.Handle(ctx, b, frame(t, InLeaveConversation, convID.String())); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if hub.InRoom(b, ConversationRoom(convID)) {
		t.Fatalf("client still in room after leave")
	}
}

func TestGatewayMessageSendGoesThroughLedger(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	convID := uuid.New()
	var calls int
	appendFn := func(ctx context.Context, p types.Principal, id uuid.UUID, content string) error {
		calls++
		if id != convID {
			t.Fatalf("wrong conversation: %s", id)
		}
		if content == "" {
			return apierr.InvalidContent("content required")
		}
		return nil
	}
	g := NewGateway(mustTestLogger(t), hub, &HubEmitter{Hub: hub}, nil, appendFn)
	ctx := context.Background()
	c := g.Attach(principal(types.RoleClient))
	drain(c)

	if err := g.Handle(ctx, c, frame(t, InMessageSend, map[string]any{"conversationId": convID, "content": "hi"})); err != nil {
		t.Fatalf("message:send: %v", err)
	}
	expectSilence(t, c.Outbound)

	err := g.Handle(ctx, c, frame(t, InMessageSend, map[string]any{"conversationId": convID, "content": ""}))
	if !apierr.Is(err, apierr.CodeInvalidContent) {
		t.Fatalf("empty content: want invalid_content, got %v", err)
	}
	got := recvMessage(t, c.Outbound, time.Second)
	if payload, ok := got.Data.(ErrorPayload); got.Event != EventError || !ok || payload.Code != string(apierr.CodeInvalidContent) {
		t.Fatalf("expected error frame, got %+v", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 ledger calls, got %d", calls)
	}
}

func TestGatewayJoinAcceptsRoomName(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	g := NewGateway(mustTestLogger(t), hub, &HubEmitter{Hub: hub}, nil, nil)
	ctx := context.Background()
	c := g.Attach(principal(types.RoleAttendant))
	drain(c)

	convID := uuid.New()
	room := ConversationRoom(convID)
	if err := g.Handle(ctx, c, frame(t, InJoinConversation, room)); err != nil {
		t.Fatalf("join by room name: %v", err)
	}
	select {
	case msg := <-c.Outbound:
		if msg.Event != EventJoined || msg.Room != room {
			t.Fatalf("unexpected ack: %+v", msg)
		}
	default:
		t.Fatalf("expected joined ack")
	}

	hub.Broadcast(Message{Room: room, Event: EventMessageNew, Data: "x"})
	select {
	case msg := <-c.Outbound:
		if msg.Event != EventMessageNew {
			t.Fatalf("unexpected delivery: %+v", msg)
		}
	default:
		t.Fatalf("client should be in %s", room)
	}

	if err := g.Handle(ctx, c, frame(t, InLeaveConversation, map[string]any{"conversationId": convID})); err != nil {
		t.Fatalf("leave: %v", err)
	}
	drain(c)
	hub.Broadcast(Message{Room: room, Event: EventMessageNew, Data: "y"})
	select {
	case msg := <-c.Outbound:
		t.Fatalf("left room still delivered: %+v", msg)
	default:
	}
}

func TestGatewayRejectsMalformedFrames(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	g := NewGateway(mustTestLogger(t), hub, &HubEmitter{Hub: hub}, nil, nil)
	ctx := context.Background()
	c := g.Attach(principal(types.RoleClient))

	if err := g.Handle(ctx, c, frame(t, InJoinConversation, "not-a-uuid")); !apierr.Is(err, apierr.CodeInvalidArgument) {
		t.Fatalf("bad id: got %v", err)
	}
	if err := g.Handle(ctx, c, frame(t, InJoinConversation, UserRoom(uuid.New()))); !apierr.Is(err, apierr.CodeInvalidArgument) {
		t.Fatalf("user room as conversation: got %v", err)
	}
	if err := g.Handle(ctx, c, frame(t, "explode", nil)); !apierr.Is(err, apierr.CodeInvalidArgument) {
		t.Fatalf("unknown event: got %v", err)
	}
	if err := g.Handle(ctx, c, Inbound{Event: InDisconnect}); !errors.Is(err, ErrDisconnect) {
		t.Fatalf("disconnect: got %v", err)
	}
}
