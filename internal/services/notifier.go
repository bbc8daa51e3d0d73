package services

import (
	"context"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/realtime"
)

// ConversationNotifier pushes lifecycle changes and new messages to the
// realtime rooms that should see them.
type ConversationNotifier interface {
	ConversationCreated(ctx context.Context, conv *ConversationView)
	ConversationAssigned(ctx context.Context, conv *ConversationView)
	ConversationClosed(ctx context.Context, conv *ConversationView)
	MessageCreated(ctx context.Context, msg *MessageView)
}

type conversationNotifier struct {
	emit realtime.Emitter
}

func NewConversationNotifier(emit realtime.Emitter) ConversationNotifier {
	return &conversationNotifier{emit: emit}
}

func (n *conversationNotifier) ConversationCreated(ctx context.Context, conv *ConversationView) {
	if n == nil || n.emit == nil || conv == nil {
		return
	}
	data := map[string]any{"conversation": conv}
	for _, role := range []types.Role{types.RoleAttendant, types.RoleAdmin} {
		n.emit.Emit(ctx, realtime.Message{
			Room:  realtime.RoleRoom(role),
			Event: realtime.EventConvCreated,
			Data:  data,
		})
	}
}

func (n *conversationNotifier) ConversationAssigned(ctx context.Context, conv *ConversationView) {
	if n == nil || n.emit == nil || conv == nil {
		return
	}
	data := map[string]any{"conversation": conv}
	n.emit.Emit(ctx, realtime.Message{
		Room:  realtime.UserRoom(conv.ClientID),
		Event: realtime.EventConvAssigned,
		Data:  data,
	})
	n.emit.Emit(ctx, realtime.Message{
		Room:  realtime.ConversationRoom(conv.ID),
		Event: realtime.EventConvAssigned,
		Data:  data,
	})
}

func (n *conversationNotifier) ConversationClosed(ctx context.Context, conv *ConversationView) {
	if n == nil || n.emit == nil || conv == nil {
		return
	}
	data := map[string]any{"conversation": conv}
	n.emit.Emit(ctx, realtime.Message{
		Room:  realtime.ConversationRoom(conv.ID),
		Event: realtime.EventConvClosed,
		Data:  data,
	})
	n.emit.Emit(ctx, realtime.Message{
		Room:  realtime.UserRoom(conv.ClientID),
		Event: realtime.EventConvClosed,
		Data:  data,
	})
}

func (n *conversationNotifier) MessageCreated(ctx context.Context, msg *MessageView) {
	if n == nil || n.emit == nil || msg == nil || msg.Message == nil {
		return
	}
	n.emit.Emit(ctx, realtime.Message{
		Room:  realtime.ConversationRoom(msg.ConversationID),
		Event: realtime.EventMessageNew,
		Data:  msg.Payload(),
	})
}
