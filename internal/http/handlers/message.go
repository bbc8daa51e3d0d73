package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/deskchat-backend/internal/http/response"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/services"
)

type MessageHandler struct {
	log      *logger.Logger
	messages services.MessageService
}

func NewMessageHandler(log *logger.Logger, messages services.MessageService) *MessageHandler {
	return &MessageHandler{log: log.With("handler", "MessageHandler"), messages: messages}
}

// POST /api/messages
// body: { "conversationId": uuid, "content": string }
func (h *MessageHandler) Append(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	var req struct {
		ConversationID uuid.UUID `json:"conversationId"`
		Content        string    `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, h.log, apierr.InvalidArgument("invalid request body"))
		return
	}
	if req.ConversationID == uuid.Nil {
		response.RespondErr(c, h.log, apierr.InvalidArgument("conversationId is required"))
		return
	}
	msg, err := h.messages.Append(dbcFrom(c), p, req.ConversationID, req.Content)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, msg)
}

// GET /api/messages/conversation/:id
func (h *MessageHandler) ListForConversation(c *gin.Context) {
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
	msgs, err := h.messages.ListFor(dbcFrom(c), p, id)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}
