package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/talent-sift/internal/http/handlers/common"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Origin проверяет CORS middleware.
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle обслуживает GET /api/ws?token=... Токен проверяет SessionMiddleware.
func (h *WSHandler) Handle(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.Component("ws").WithError(err).Warn("не удалось установить соединение")
		return
	}

	ws.NewClient(conn, h.hub, sessionID).Run()
}
