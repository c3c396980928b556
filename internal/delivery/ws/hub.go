package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	domainNotification "parcel-relay/internal/domain/notification"
	"parcel-relay/internal/logger"
	"parcel-relay/pkg/utils"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware upstream
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes notifications to connected clients. It implements the
// dispatcher's Sink interface; clients subscribe per authenticated user.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*websocket.Conn]bool),
	}
}

// Serve upgrades an authenticated request and keeps the connection
// registered until the peer goes away.
func (h *Hub) Serve(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	uid, ok := userID.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid user ID format")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed",
			zap.String("user_id", uid.String()),
			zap.Error(err),
		)
		return
	}

	h.register(uid, conn)

	go func() {
		defer h.unregister(uid, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Emit delivers a notification to every live connection of the recipient.
// No connections is a successful no-op: the poll layer catches them up.
func (h *Hub) Emit(_ context.Context, n *domainNotification.Notification) error {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[n.RecipientID]))
	for conn := range h.clients[n.RecipientID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(n); err != nil {
			h.unregister(n.RecipientID, conn)
		}
	}

	return nil
}

func (h *Hub) register(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

func (h *Hub) unregister(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		if conns[conn] {
			delete(conns, conn)
			_ = conn.Close()
		}
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}
