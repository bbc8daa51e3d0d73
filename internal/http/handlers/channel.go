package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/http/response"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/services"
)

type ChannelHandler struct {
	log      *logger.Logger
	channels services.ChannelService
}

func NewChannelHandler(log *logger.Logger, channels services.ChannelService) *ChannelHandler {
	return &ChannelHandler{log: log.With("handler", "ChannelHandler"), channels: channels}
}

// POST /api/channels
// body: { "name", "kind", "config"?, "active"? }
func (h *ChannelHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	var req struct {
		Name   string          `json:"name"`
		Kind   string          `json:"kind"`
		Config json.RawMessage `json:"config"`
		Active *bool           `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, h.log, apierr.InvalidArgument("invalid request body"))
		return
	}
	ch, err := h.channels.Create(dbcFrom(c), p, req.Name, types.ChannelKind(req.Kind), req.Config, req.Active)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, ch)
}

// GET /api/channels
func (h *ChannelHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	rows, err := h.channels.List(dbcFrom(c), p)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"channels": rows})
}

// DELETE /api/channels/:id
func (h *ChannelHandler) Delete(c *gin.Context) {
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
	if err := h.channels.Delete(dbcFrom(c), p, id); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
