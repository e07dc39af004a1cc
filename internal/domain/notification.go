package domain

import (
	"strconv"
	"strings"
	"time"
)

// Notification is a persisted in-app notification row. ReadAt stays nil
// until the owner opens it; UI code mutates it outside the dispatch core.
type Notification struct {
	ID           int64
	RequestID    string
	TenantID     string
	OwnerID      string
	EventType    string
	Title        string
	Body         string
	Payload      map[string]any
	VisibleInApp bool
	ReadAt       *time.Time
	CreatedAt    time.Time
}

// PushDevice is one registered push target for a recipient.
type PushDevice struct {
	ID        int64
	TenantID  string
	OwnerID   string
	Token     string
	Platform  string
	Enabled   bool
	CreatedAt time.Time
}

const (
	HistoryStatusSent    = "sent"
	HistoryStatusPartial = "partial"

	// HistoryChannelMulti marks a history row summarizing a whole fan-out.
	HistoryChannelMulti = "multi"
)

// HistoryRecord is the append-only audit row written once per dispatch.
type HistoryRecord struct {
	ID         int64
	DispatchID string
	TenantID   string
	OwnerID    string
	Channel    string
	Subject    string
	EventType  string
	Status     string
	Error      string
	SentAt     time.Time
	Metadata   map[string]any
}

// Preferences holds a recipient's per-channel opt-in flags and an optional
// quiet-hours window ("HH:MM" local time). DigestFrequency is carried for
// the settings UI but never enforced by the dispatcher.
type Preferences struct {
	TenantID        string
	OwnerID         string
	EmailEnabled    bool
	SMSEnabled      bool
	PushEnabled     bool
	InAppEnabled    bool
	DigestFrequency string
	QuietHoursStart string
	QuietHoursEnd   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DefaultPreferences is what a recipient gets with no stored record:
// email on, push on, in-app on, sms off, no quiet hours.
func DefaultPreferences(tenantID, ownerID string) *Preferences {
	return &Preferences{
		TenantID:     tenantID,
		OwnerID:      ownerID,
		EmailEnabled: true,
		SMSEnabled:   false,
		PushEnabled:  true,
		InAppEnabled: true,
	}
}

// InQuietHours reports whether now's local wall-clock time falls inside the
// quiet-hours window. With start < end the window is the inclusive span
// [start, end]; with start >= end it wraps midnight. If either bound is
// absent or malformed, quiet hours never apply.
func (p *Preferences) InQuietHours(now time.Time) bool {
	start, okStart := parseClock(p.QuietHoursStart)
	end, okEnd := parseClock(p.QuietHoursEnd)
	if !okStart || !okEnd {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if start < end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
