package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/deskchat-backend/internal/data/repos"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	Conversation repos.ConversationRepo
	Message      repos.MessageRepo
	Channel      repos.ChannelRepo
	Webhook      repos.WebhookRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
		Channel:      repos.NewChannelRepo(db, log),
		Webhook:      repos.NewWebhookRepo(db, log),
	}
}
