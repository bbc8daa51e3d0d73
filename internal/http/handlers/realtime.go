package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/deskchat-backend/internal/http/response"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/realtime"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxFrame   = 64 << 10
)

type RealtimeHandler struct {
	log      *logger.Logger
	gateway  *realtime.Gateway
	upgrader websocket.Upgrader
}

// frame is the JSON shape of every websocket message in both directions.
type frame struct {
	Event string `json:"event"`
	Room  string `json:"room,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func NewRealtimeHandler(log *logger.Logger, gateway *realtime.Gateway) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Connections are gated by the handshake token, not the origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// GET /api/realtime/ws?token=...
// Auth failure rejects the handshake; no socket is opened.
func (h *RealtimeHandler) ServeWS(c *gin.Context) {
	client, err := h.gateway.Connect(handshakeToken(c))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.gateway.Disconnect(client)
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer h.gateway.Disconnect(client)

	go h.writePump(conn, client)
	h.readPump(c, conn, client)
}

func (h *RealtimeHandler) readPump(c *gin.Context, conn *websocket.Conn, client *realtime.Client) {
	conn.SetReadLimit(wsMaxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	ctx := c.Request.Context()
	for {
		var in realtime.Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				client.Logger.Debug("websocket read ended", "error", err)
			}
			return
		}
		if err := h.gateway.Handle(ctx, client, in); errors.Is(err, realtime.ErrDisconnect) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}

// writePump is the only writer of data frames on conn.
func (h *RealtimeHandler) writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	defer conn.Close()
	for {
		select {
		case <-client.Done():
			return
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(frame{Event: string(msg.Event), Room: msg.Room, Data: msg.Data}); err != nil {
				client.Logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// GET /api/realtime/stream
// The connected event carries the clientId used by POST /api/realtime/events.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	client := h.gateway.Attach(p)
	h.log.Info("SSEStream open", "user_id", p.ID.String(), "client_id", client.ID.String())
	h.gateway.Hub().ServeSSE(c.Writer, c.Request, client)
	h.gateway.Disconnect(client)
}

// POST /api/realtime/events
// body: { "clientId": uuid, "event": "join:conversation", "data": ... }
func (h *RealtimeHandler) SSEEvent(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	var req struct {
		ClientID uuid.UUID       `json:"clientId"`
		Event    string          `json:"event"`
		Data     json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == uuid.Nil || req.Event == "" {
		response.RespondErr(c, h.log, apierr.InvalidArgument("clientId and event are required"))
		return
	}
	client, ok := h.gateway.Hub().Client(req.ClientID)
	if !ok {
		response.RespondErr(c, h.log, apierr.NotFound("realtime client not found"))
		return
	}
	if client.Principal.ID != p.ID {
		response.RespondErr(c, h.log, apierr.Forbidden("realtime client belongs to another user"))
		return
	}
	err = h.gateway.Handle(c.Request.Context(), client, realtime.Inbound{Event: req.Event, Data: req.Data})
	switch {
	case errors.Is(err, realtime.ErrDisconnect):
		h.gateway.Disconnect(client)
		c.Status(http.StatusNoContent)
	case err != nil:
		response.RespondErr(c, h.log, err)
	default:
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	}
}

func handshakeToken(c *gin.Context) string {
	if tok := strings.TrimSpace(c.Query("token")); tok != "" {
		return tok
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
