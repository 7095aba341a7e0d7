package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/api/middleware"
	"github.com/jstittsworth/fpl-advisor/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, check against allowed origins
		return true
	},
}

type WebSocketHandler struct {
	hub *services.WebSocketHub
}

func NewWebSocketHandler(hub *services.WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket upgrades the connection and registers the client with the
// hub. The manager entry comes from the session token when present, or from
// the entry_id query parameter for anonymous connections.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	entryID, _ := middleware.EntryFromContext(c)
	if entryID == 0 {
		if entryParam := c.Query("entry_id"); entryParam != "" {
			if id, err := strconv.Atoi(entryParam); err == nil {
				entryID = id
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	client := services.NewClient(h.hub, conn, entryID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
