package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/internal/metrics"
	"notification-service/pkg/pubsub"
)

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
}

type InAppSender struct {
	store  NotificationStore
	pub    pubsub.PubSub
	logger *zap.Logger
}

func NewInAppSender(store NotificationStore, pub pubsub.PubSub, logger *zap.Logger) *InAppSender {
	return &InAppSender{
		store:  store,
		pub:    pub,
		logger: logger,
	}
}

func (s *InAppSender) Channel() domain.Channel { return domain.ChannelInApp }

// Send persists the in-app row, then publishes a real-time event. The
// channel succeeds once the row is durable; a publish failure only costs
// the live update, since connected clients can still poll the stored row.
func (s *InAppSender) Send(ctx context.Context, job *domain.Job) (domain.ChannelResult, error) {
	created, err := s.store.CreateNotification(ctx, &domain.Notification{
		RequestID:    job.DispatchID,
		TenantID:     job.TenantID,
		OwnerID:      job.RecipientID,
		EventType:    job.EventType,
		Title:        job.Title,
		Body:         job.Message,
		Payload:      job.Data,
		VisibleInApp: true,
	})
	if err != nil {
		return domain.ChannelResult{Channel: s.Channel()}, fmt.Errorf("persist in-app notification: %w", err)
	}

	event := domain.Event{
		NotificationID: created.ID,
		TenantID:       created.TenantID,
		OwnerID:        created.OwnerID,
		EventType:      created.EventType,
		Title:          created.Title,
		Body:           created.Body,
		Data:           created.Payload,
		CreatedAt:      created.CreatedAt,
	}

	topic := pubsub.NotificationTopic(job.TenantID, job.RecipientID)
	if pubErr := s.pub.Publish(ctx, topic, event); pubErr != nil {
		metrics.PublishFailuresTotal.Inc()
		s.logger.Warn("Real-time publish failed, falling back to pull delivery",
			zap.String("topic", topic),
			zap.Int64("notification_id", created.ID),
			zap.Error(pubErr),
		)
	}

	return domain.ChannelResult{Channel: s.Channel(), Success: true}, nil
}
