package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/pkg/pubsub"
)

// dialManaged stands up a ws endpoint that registers every accepted
// connection with the manager, then dials it. It signals on added once the
// server side has registered.
func dialManaged(t *testing.T, m *Manager, tenantID, ownerID string) (*websocket.Conn, chan struct{}) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	added := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		m.Add(tenantID, ownerID, conn)
		added <- struct{}{}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case <-added:
	case <-time.After(time.Second):
		t.Fatal("connection was not registered")
	}
	return client, added
}

func TestManagerSendReachesOwnSessionsOnly(t *testing.T) {
	m := NewManager(zap.NewNop())
	client, _ := dialManaged(t, m, "t1", "u1")
	other, _ := dialManaged(t, m, "t1", "u2")

	m.Send("t1", "u1", &domain.Event{NotificationID: 7, Title: "hello"})

	client.SetReadDeadline(time.Now().Add(time.Second))
	var ev domain.Event
	if err := client.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if ev.NotificationID != 7 || ev.Title != "hello" {
		t.Errorf("event = %+v", ev)
	}

	other.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	if err := other.ReadJSON(&ev); err == nil {
		t.Error("event delivered to another recipient's session")
	}
}

func TestManagerListenBridgesPubSub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(zap.NewNop())
	mem := pubsub.NewMemory()
	if err := m.Listen(ctx, mem); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	client, _ := dialManaged(t, m, "t1", "u1")

	event := domain.Event{NotificationID: 42, TenantID: "t1", OwnerID: "u1", Title: "Order shipped"}
	if err := mem.Publish(ctx, pubsub.NotificationTopic("t1", "u1"), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	var got domain.Event
	if err := client.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.NotificationID != 42 || got.Title != "Order shipped" {
		t.Errorf("event = %+v", got)
	}
}

func TestManagerRemove(t *testing.T) {
	m := NewManager(zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := m.Add("t1", "u1", conn)
		m.Remove(c)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	// Give the server goroutine a moment to add and remove.
	deadline := time.After(time.Second)
	for {
		m.mu.RLock()
		empty := len(m.connections) == 0
		m.mu.RUnlock()
		if empty {
			break
		}
		select {
		case <-deadline:
			t.Fatal("connection map not emptied after Remove")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
