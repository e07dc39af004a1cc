package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/pkg/pubsub"
)

// Connection wraps websocket.Conn with metadata
type Connection struct {
	Conn     *websocket.Conn
	UserKey  string
	LastSeen time.Time
}

type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // userKey -> set of connections
	logger      *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

func makeUserKey(tenantID, ownerID string) string {
	return tenantID + "_" + ownerID
}

// Add registers a connection for a recipient within a tenant.
func (m *Manager) Add(tenantID, ownerID string, conn *websocket.Conn) *Connection {
	userKey := makeUserKey(tenantID, ownerID)
	c := &Connection{Conn: conn, UserKey: userKey, LastSeen: time.Now()}

	m.mu.Lock()
	if _, ok := m.connections[userKey]; !ok {
		m.connections[userKey] = make(map[*Connection]struct{})
	}
	m.connections[userKey][c] = struct{}{}
	total := len(m.connections[userKey])
	m.mu.Unlock()

	m.logger.Info("WS connected", zap.String("user_key", userKey), zap.Int("total", total))
	return c
}

// Remove disconnects and removes a connection
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conns, ok := m.connections[c.UserKey]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.UserKey)
		}
	}
	_ = c.Conn.Close()
	m.logger.Info("WS disconnected", zap.String("user_key", c.UserKey))
}

// Send writes an event to every connection the recipient has open here.
func (m *Manager) Send(tenantID, ownerID string, event *domain.Event) {
	userKey := makeUserKey(tenantID, ownerID)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if conns, ok := m.connections[userKey]; ok {
		for c := range conns {
			if err := c.Conn.WriteJSON(event); err != nil {
				m.logger.Warn("WS send failed", zap.String("user_key", userKey), zap.Error(err))
				go m.Remove(c)
			}
		}
	}
}

// Listen bridges the pub/sub layer into local connections: every worker
// instance publishes on notifications:{tenant}:{user}, and whichever
// instance holds that recipient's sockets delivers.
func (m *Manager) Listen(ctx context.Context, ps pubsub.PubSub) error {
	msgs, err := ps.Subscribe(ctx, "notifications:*")
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			parts := strings.SplitN(msg.Topic, ":", 3)
			if len(parts) != 3 {
				m.logger.Warn("Dropping event with malformed topic", zap.String("topic", msg.Topic))
				continue
			}

			var event domain.Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				m.logger.Warn("Dropping undecodable event", zap.String("topic", msg.Topic), zap.Error(err))
				continue
			}
			m.Send(parts[1], parts[2], &event)
		}
	}()
	return nil
}

// Heartbeat pings all connections periodically to keep them alive
func (m *Manager) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.RLock()
		for _, conns := range m.connections {
			for c := range conns {
				if time.Since(c.LastSeen) > 2*interval {
					go m.Remove(c)
					continue
				}
				_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			}
		}
		m.mu.RUnlock()
	}
}
