package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/deskchat-backend/internal/http/handlers"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Conversation *httpH.ConversationHandler
	Message      *httpH.MessageHandler
	Channel      *httpH.ChannelHandler
	Webhook      *httpH.WebhookHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db),
		Auth:         httpH.NewAuthHandler(log, services.Auth, services.User),
		User:         httpH.NewUserHandler(log, services.User),
		Conversation: httpH.NewConversationHandler(log, services.Conversation),
		Message:      httpH.NewMessageHandler(log, services.Message),
		Channel:      httpH.NewChannelHandler(log, services.Channel),
		Webhook:      httpH.NewWebhookHandler(log, services.Webhook),
		Realtime:     httpH.NewRealtimeHandler(log, services.Gateway),
	}
}
