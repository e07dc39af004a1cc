package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"notification-service/internal/metrics"
)

// Client sends transactional email through SendGrid.
type Client struct {
	fromName  string
	fromEmail string
	sg        *sendgrid.Client
	logger    *zap.Logger
}

func New(fromName, fromEmail, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		fromName:  fromName,
		fromEmail: fromEmail,
		sg:        sendgrid.NewSendClient(apiKey),
		logger:    logger,
	}
}

func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail(c.fromName, c.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, body)

	resp, err := c.sg.SendWithContext(ctx, message)
	if err != nil {
		metrics.ProviderFailuresTotal.WithLabelValues("sendgrid").Inc()
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		metrics.ProviderFailuresTotal.WithLabelValues("sendgrid").Inc()
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}

	c.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
