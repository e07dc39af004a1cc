package domain

import (
	"fmt"
	"strings"
)

// Channel identifies one delivery mechanism.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in-app"
)

// ParseChannel maps a raw channel tag to a known Channel. The second return
// value is false for tags this service does not deliver to.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelEmail:
		return ChannelEmail, true
	case ChannelSMS:
		return ChannelSMS, true
	case ChannelPush:
		return ChannelPush, true
	case ChannelInApp:
		return ChannelInApp, true
	}
	return "", false
}

// Job is the unit of work pulled off the queue. Immutable once enqueued.
type Job struct {
	DispatchID  string         `json:"dispatch_id,omitempty"`
	TenantID    string         `json:"tenant_id"`
	RecipientID string         `json:"recipient_id"`
	EventType   string         `json:"event_type,omitempty"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	Channels    []string       `json:"channels"`
}

// Validate checks the job once at the queue boundary. Unknown channel tags
// are not an error here; eligibility filtering drops them silently.
func (j *Job) Validate() error {
	if j.RecipientID == "" {
		return fmt.Errorf("job missing recipient_id")
	}
	if j.TenantID == "" {
		return fmt.Errorf("job missing tenant_id")
	}
	if j.Title == "" && j.Message == "" {
		return fmt.Errorf("job has neither title nor message")
	}
	if len(j.Channels) == 0 {
		return fmt.Errorf("job requests no channels")
	}
	return nil
}

// ChannelResult is the outcome of one channel attempt within a dispatch.
// SentTo/TotalDevices are only populated by the push channel.
type ChannelResult struct {
	Channel      Channel `json:"channel"`
	Success      bool    `json:"success"`
	Detail       string  `json:"detail,omitempty"`
	SentTo       int     `json:"sent_to,omitempty"`
	TotalDevices int     `json:"total_devices,omitempty"`
}

// DispatchResult is the aggregate returned to the job system. Success is
// true only when no attempted channel failed; an empty eligible set counts
// as success with zero sends.
type DispatchResult struct {
	Success  bool     `json:"success"`
	Sent     int      `json:"sent"`
	Failed   int      `json:"failed"`
	Channels []string `json:"channels"`
}
