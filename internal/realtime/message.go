package realtime

import (
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
)

type Event string

const (
	EventMessageNew   Event = "message:new"
	EventTypingUser   Event = "typing:user"
	EventTypingStop   Event = "typing:stop"
	EventError        Event = "error"
	EventConnected    Event = "connected"
	EventJoined       Event = "joined"
	EventLeft         Event = "left"
	EventConvCreated  Event = "conversation:created"
	EventConvAssigned Event = "conversation:assigned"
	EventConvClosed   Event = "conversation:closed"
)

// Inbound event names sent by connections.
const (
	InJoinConversation  = "join:conversation"
	InLeaveConversation = "leave:conversation"
	InMessageSend       = "message:send"
	InTypingStart       = "typing:start"
	InTypingStop        = "typing:stop"
	InDisconnect        = "disconnect"
)

// RoomAll delivers to every connected client.
const RoomAll = "*"

// Message is one outbound delivery. Exclude, when set, is the ID of a
// client that must not receive it (the originator of a typing event).
type Message struct {
	Room    string `json:"room"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
	Exclude string `json:"exclude,omitempty"`
}

func UserRoom(id uuid.UUID) string         { return "user:" + id.String() }
func RoleRoom(role types.Role) string      { return "role:" + string(role) }
func ConversationRoom(id uuid.UUID) string { return "conversation:" + id.String() }

// ParseConversationRoom returns the conversation id of a conversation room.
func ParseConversationRoom(room string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(room, "conversation:")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
