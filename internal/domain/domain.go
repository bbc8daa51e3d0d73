package domain

import (
	"github.com/yungbote/deskchat-backend/internal/domain/chat"
	"github.com/yungbote/deskchat-backend/internal/domain/user"
)

type User = user.User
type UserSummary = user.Summary
type Role = user.Role
type Principal = user.Principal

var ParseRole = user.ParseRole

const (
	RoleClient    = user.RoleClient
	RoleAttendant = user.RoleAttendant
	RoleAdmin     = user.RoleAdmin
)

type Conversation = chat.Conversation
type ConversationStatus = chat.ConversationStatus
type Message = chat.Message
type Channel = chat.Channel
type ChannelKind = chat.ChannelKind
type Webhook = chat.Webhook

const (
	StatusPending = chat.StatusPending
	StatusActive  = chat.StatusActive
	StatusClosed  = chat.StatusClosed
)

var ParseStatus = chat.ParseStatus

const WebhookAllEvents = chat.WebhookAllEvents

// Models lists every persisted table, in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&chat.Channel{},
		&chat.Conversation{},
		&chat.Message{},
		&chat.Webhook{},
	}
}
