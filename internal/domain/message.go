package domain

import "time"

// Event is the minimal view of a delivered in-app notification pushed to
// connected websocket clients over the pub/sub layer.
type Event struct {
	NotificationID int64          `json:"notification_id"`
	TenantID       string         `json:"tenant_id"`
	OwnerID        string         `json:"owner_id"`
	EventType      string         `json:"event_type,omitempty"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
