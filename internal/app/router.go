package app

import (
	"github.com/yungbote/deskchat-backend/internal/http"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	serviceName := ""
	if cfg.OTel.Enabled {
		serviceName = cfg.ServiceName
	}
	return http.NewServer(cfg.HTTPAddr, http.RouterConfig{
		Log:                 log,
		ServiceName:         serviceName,
		CORSOrigins:         cfg.CORSOrigins,
		AuthMiddleware:      middleware.Auth,
		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		UserHandler:         handlers.User,
		ConversationHandler: handlers.Conversation,
		MessageHandler:      handlers.Message,
		ChannelHandler:      handlers.Channel,
		WebhookHandler:      handlers.Webhook,
		RealtimeHandler:     handlers.Realtime,
	})
}
