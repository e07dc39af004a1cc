package gosms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"notification-service/internal/metrics"
)

// TwilioSender sends SMS through the Twilio messaging API.
type TwilioSender struct {
	fromNumber string
	client     *twilio.RestClient
	logger     *zap.Logger
}

func NewTwilioSender(accountSID, authToken, fromNumber string, logger *zap.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{
		fromNumber: fromNumber,
		client:     client,
		logger:     logger,
	}
}

func (t *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		metrics.ProviderFailuresTotal.WithLabelValues("twilio").Inc()
		return fmt.Errorf("twilio send: %w", err)
	}

	t.logger.Info("SMS sent", zap.String("to", to))
	return nil
}
