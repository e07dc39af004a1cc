// Package notifier holds the per-channel delivery strategies. Each sender
// adapts the generic job payload to one transport and resolves its own
// recipient contact data lazily. Senders surface failures to the caller
// rather than swallowing them; the orchestrator owns failure isolation.
package notifier

import (
	"context"
	"fmt"
	"time"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"
)

type Sender interface {
	Channel() domain.Channel
	// Send returns (result, nil) for attempts that completed, including
	// structured non-fatal outcomes like push's zero-device case, and a
	// non-nil error for contact-missing and transport failures.
	Send(ctx context.Context, job *domain.Job) (domain.ChannelResult, error)
}

// Notifier indexes the configured senders by channel.
type Notifier struct {
	senders map[domain.Channel]Sender
}

func New(senders ...Sender) *Notifier {
	m := make(map[domain.Channel]Sender, len(senders))
	for _, s := range senders {
		m[s.Channel()] = s
	}
	return &Notifier{senders: m}
}

func (n *Notifier) Send(ctx context.Context, ch domain.Channel, job *domain.Job) (domain.ChannelResult, error) {
	s, ok := n.senders[ch]
	if !ok {
		return domain.ChannelResult{Channel: ch}, fmt.Errorf("%w: %s", xerrors.ErrUnknownChannel, ch)
	}
	return s.Send(ctx, job)
}

// templateData is the rendering context shared by the email and SMS
// templates: the job payload plus the standard fields.
func templateData(job *domain.Job) map[string]any {
	data := make(map[string]any, len(job.Data)+3)
	for k, v := range job.Data {
		data[k] = v
	}
	data["Title"] = job.Title
	data["Message"] = job.Message
	data["Year"] = time.Now().Year()
	return data
}
