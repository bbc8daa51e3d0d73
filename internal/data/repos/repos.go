package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/deskchat-backend/internal/data/repos/chat"
	"github.com/yungbote/deskchat-backend/internal/data/repos/user"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ConversationRepo = chat.ConversationRepo
type ConversationFilter = chat.ConversationFilter
type MessageRepo = chat.MessageRepo
type ChannelRepo = chat.ChannelRepo
type WebhookRepo = chat.WebhookRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, baseLog)
}
func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return chat.NewMessageRepo(db, baseLog)
}
func NewChannelRepo(db *gorm.DB, baseLog *logger.Logger) ChannelRepo {
	return chat.NewChannelRepo(db, baseLog)
}
func NewWebhookRepo(db *gorm.DB, baseLog *logger.Logger) WebhookRepo {
	return chat.NewWebhookRepo(db, baseLog)
}
