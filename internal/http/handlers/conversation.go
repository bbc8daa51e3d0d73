package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/http/response"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/services"
)

type ConversationHandler struct {
	log           *logger.Logger
	conversations services.ConversationService
}

func NewConversationHandler(log *logger.Logger, conversations services.ConversationService) *ConversationHandler {
	return &ConversationHandler{log: log.With("handler", "ConversationHandler"), conversations: conversations}
}

// POST /api/conversations
// body: { "channelId"?: uuid, "initialMessage"?: string }
func (h *ConversationHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	var req struct {
		ChannelID      *uuid.UUID `json:"channelId"`
		InitialMessage string     `json:"initialMessage"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	view, err := h.conversations.Create(dbcFrom(c), p, req.ChannelID, req.InitialMessage)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /api/conversations?status=pending
func (h *ConversationHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	var status *types.ConversationStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s, ok := types.ParseStatus(strings.ToLower(raw))
		if !ok {
			response.RespondErr(c, h.log, apierr.InvalidArgument("unknown status %q", raw))
			return
		}
		status = &s
	}
	views, err := h.conversations.List(dbcFrom(c), p, status)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": views})
}

// GET /api/conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	h.withConversation(c, func(p types.Principal, id uuid.UUID) (any, error) {
		return h.conversations.Get(dbcFrom(c), p, id)
	})
}

// POST /api/conversations/:id/assign
func (h *ConversationHandler) Assign(c *gin.Context) {
	h.withConversation(c, func(p types.Principal, id uuid.UUID) (any, error) {
		return h.conversations.Assign(dbcFrom(c), p, id)
	})
}

// POST /api/conversations/:id/close
func (h *ConversationHandler) Close(c *gin.Context) {
	h.withConversation(c, func(p types.Principal, id uuid.UUID) (any, error) {
		return h.conversations.Close(dbcFrom(c), p, id)
	})
}

func (h *ConversationHandler) withConversation(c *gin.Context, fn func(types.Principal, uuid.UUID) (any, error)) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	out, err := fn(p, id)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
