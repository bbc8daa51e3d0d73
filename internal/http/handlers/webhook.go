package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/deskchat-backend/internal/http/response"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/services"
)

type WebhookHandler struct {
	log      *logger.Logger
	webhooks services.WebhookService
}

func NewWebhookHandler(log *logger.Logger, webhooks services.WebhookService) *WebhookHandler {
	return &WebhookHandler{log: log.With("handler", "WebhookHandler"), webhooks: webhooks}
}

// POST /api/webhooks
// body: { "url", "events": ["conversation.created", ...], "active"? }
func (h *WebhookHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	var req struct {
		URL    string   `json:"url"`
		Events []string `json:"events"`
		Active *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, h.log, apierr.InvalidArgument("invalid request body"))
		return
	}
	hook, err := h.webhooks.Create(dbcFrom(c), p, req.URL, req.Events, req.Active)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, hook)
}

// GET /api/webhooks
func (h *WebhookHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	rows, err := h.webhooks.List(dbcFrom(c), p)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"webhooks": rows})
}

// DELETE /api/webhooks/:id
func (h *WebhookHandler) Delete(c *gin.Context) {
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
	if err := h.webhooks.Delete(dbcFrom(c), p, id); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
