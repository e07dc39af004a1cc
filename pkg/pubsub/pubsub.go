// Package pubsub is the real-time event layer between the dispatch worker
// and whatever process holds the recipient's websocket connections.
// Publishing is best-effort relative to dispatch: the in-app row is already
// durable by the time an event is published.
package pubsub

import (
	"context"
	"fmt"
)

// Message is one delivered pub/sub payload.
type Message struct {
	Topic   string
	Payload []byte
}

type PubSub interface {
	// Publish sends payload (JSON-marshaled) on topic. Callers decide
	// whether a returned error is fatal; the dispatcher logs and swallows it.
	Publish(ctx context.Context, topic string, payload any) error

	// Subscribe returns a channel of messages matching the glob pattern.
	// The channel closes when ctx is cancelled.
	Subscribe(ctx context.Context, pattern string) (<-chan Message, error)
}

// NotificationTopic namespaces live-update events per tenant per recipient,
// so exactly that recipient's sessions within that tenant receive them.
func NotificationTopic(tenantID, ownerID string) string {
	return fmt.Sprintf("notifications:%s:%s", tenantID, ownerID)
}
