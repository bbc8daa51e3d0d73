package app

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/events"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/realtime"
	"github.com/yungbote/deskchat-backend/internal/realtime/bus"
	"github.com/yungbote/deskchat-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Conversation services.ConversationService
	Message      services.MessageService
	Channel      services.ChannelService
	Webhook      services.WebhookService

	Events  *events.Dispatcher
	Hub     *realtime.Hub
	Gateway *realtime.Gateway
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	// Realtime: publish through the bus when present; the forwarder
	// started in Run delivers into the local hub.
	hub := realtime.NewHub(log)
	var emitter realtime.Emitter = &realtime.HubEmitter{Hub: hub}
	if clients.Bus != nil {
		emitter = &bus.Emitter{Bus: clients.Bus, Fallback: emitter}
	}
	notify := services.NewConversationNotifier(emitter)

	// Domain events
	sinks := []events.Sink{events.NewWebhookSink(log, repos.Webhook, cfg.WebhookTimeout)}
	if clients.AMQP != nil {
		sinks = append(sinks, clients.AMQP)
	} else {
		sinks = append(sinks, events.NewLogSink(log))
	}
	dispatcher := events.NewDispatcher(log, cfg.ServiceName, cfg.EventTimeout, sinks...)

	auth := services.NewAuthService(log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	messages := services.NewMessageService(db, log, repos.Conversation, repos.Message, repos.User, notify, dispatcher)
	conversations := services.NewConversationService(db, log,
		repos.Conversation, repos.Message, repos.User, repos.Channel,
		notify, dispatcher,
		services.ConversationServiceConfig{ProtocolAttempts: cfg.ProtocolMaxAttempts},
	)

	gateway := realtime.NewGateway(log, hub, emitter, auth, appendThroughLedger(messages))

	return Services{
		Auth:         auth,
		User:         services.NewUserService(log, repos.User),
		Conversation: conversations,
		Message:      messages,
		Channel:      services.NewChannelService(log, repos.Channel),
		Webhook:      services.NewWebhookService(log, repos.Webhook),
		Events:       dispatcher,
		Hub:          hub,
		Gateway:      gateway,
	}
}

// appendThroughLedger routes socket message:send into the same
// authorize-then-persist path as POST /messages.
func appendThroughLedger(messages services.MessageService) realtime.AppendFunc {
	return func(ctx context.Context, p types.Principal, conversationID uuid.UUID, content string) error {
		_, err := messages.Append(dbctx.Context{Ctx: ctx}, p, conversationID, content)
		return err
	}
}
