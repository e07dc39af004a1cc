package wshandler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notification-service/internal/middleware"
	"notification-service/pkg/notifier/ws"
)

type WSHandler struct {
	manager *ws.Manager
	logger  *zap.Logger
}

func NewWSHandler(manager *ws.Manager, logger *zap.Logger) *WSHandler {
	return &WSHandler{manager: manager, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleNotifications upgrades HTTP -> WebSocket and registers connection
func (h *WSHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}

	h.logger.Info("WS session opened",
		zap.String("tenant_id", tenantID),
		zap.String("owner_id", ownerID),
	)

	c := h.manager.Add(tenantID, ownerID, conn)

	// Reader loop: listen for pongs and client messages
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		c.LastSeen = time.Now()
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.manager.Remove(c)
}
