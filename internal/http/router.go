package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	httpH "github.com/yungbote/deskchat-backend/internal/http/handlers"
	httpMW "github.com/yungbote/deskchat-backend/internal/http/middleware"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	ConversationHandler *httpH.ConversationHandler
	MessageHandler      *httpH.MessageHandler
	ChannelHandler      *httpH.ChannelHandler
	WebhookHandler      *httpH.WebhookHandler
	RealtimeHandler     *httpH.RealtimeHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
		// Websocket authenticates its own handshake.
		if cfg.RealtimeHandler != nil {
			api.GET("/realtime/ws", cfg.RealtimeHandler.ServeWS)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/realtime/stream", cfg.RealtimeHandler.SSEStream)
			protected.POST("/realtime/events", cfg.RealtimeHandler.SSEEvent)
		}

		// Conversations
		if h := cfg.ConversationHandler; h != nil {
			protected.POST("/conversations", h.Create)
			protected.GET("/conversations", h.List)
			protected.GET("/conversations/:id", h.Get)
			protected.POST("/conversations/:id/assign", h.Assign)
			protected.POST("/conversations/:id/close", h.Close)
		}

		// Messages
		if h := cfg.MessageHandler; h != nil {
			protected.POST("/messages", h.Append)
			protected.GET("/messages/conversation/:id", h.ListForConversation)
		}

		// Channels (read for everyone, write for admins)
		if h := cfg.ChannelHandler; h != nil {
			protected.GET("/channels", h.List)
		}
	}

	admin := protected.Group("/")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleAdmin))
	}
	{
		if h := cfg.UserHandler; h != nil {
			admin.POST("/users", h.Create)
			admin.GET("/users", h.List)
		}
		if h := cfg.ChannelHandler; h != nil {
			admin.POST("/channels", h.Create)
			admin.DELETE("/channels/:id", h.Delete)
		}
		if h := cfg.WebhookHandler; h != nil {
			admin.POST("/webhooks", h.Create)
			admin.GET("/webhooks", h.List)
			admin.DELETE("/webhooks/:id", h.Delete)
		}
	}

	return r
}
