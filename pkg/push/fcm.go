package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"notification-service/internal/metrics"
)

// FCMClient fans a push notification out to device tokens via Firebase
// Cloud Messaging.
type FCMClient struct {
	client *messaging.Client
	logger *zap.Logger
}

func NewFCMClient(ctx context.Context, credentialsFile string, logger *zap.Logger) (*FCMClient, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}
	return &FCMClient{client: client, logger: logger}, nil
}

// SendToDevices attempts every token and returns how many succeeded.
// Individual token failures are not an error; a transport-level failure is.
func (c *FCMClient) SendToDevices(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	br, err := c.client.SendEachForMulticast(ctx, message)
	if err != nil {
		metrics.ProviderFailuresTotal.WithLabelValues("fcm").Inc()
		return 0, fmt.Errorf("fcm multicast: %w", err)
	}

	if br.FailureCount > 0 {
		c.logger.Warn("Push delivered partially",
			zap.Int("sent", br.SuccessCount),
			zap.Int("failed", br.FailureCount),
		)
	}
	return br.SuccessCount, nil
}
