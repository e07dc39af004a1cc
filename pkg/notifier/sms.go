package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"
	"notification-service/pkg/identity"
	"notification-service/pkg/template"
)

type SMSProvider interface {
	SendSMS(ctx context.Context, to, body string) error
}

type SMSSender struct {
	provider  SMSProvider
	contacts  identity.Resolver
	templates *template.TemplateService
	logger    *zap.Logger
}

func NewSMSSender(provider SMSProvider, contacts identity.Resolver, templates *template.TemplateService, logger *zap.Logger) *SMSSender {
	return &SMSSender{
		provider:  provider,
		contacts:  contacts,
		templates: templates,
		logger:    logger,
	}
}

func (s *SMSSender) Channel() domain.Channel { return domain.ChannelSMS }

func (s *SMSSender) Send(ctx context.Context, job *domain.Job) (domain.ChannelResult, error) {
	to, err := s.contacts.PrimaryPhone(ctx, job.TenantID, job.RecipientID)
	if err != nil {
		return domain.ChannelResult{Channel: s.Channel()}, fmt.Errorf("resolve recipient phone: %w", err)
	}
	if to == "" {
		return domain.ChannelResult{Channel: s.Channel()},
			fmt.Errorf("%w: no phone on file for %s", xerrors.ErrContactMissing, job.RecipientID)
	}

	body := fmt.Sprintf("%s: %s", job.Title, job.Message)
	if s.templates != nil {
		if rendered, err := s.templates.Render("sms", job.EventType, templateData(job)); err == nil {
			body = rendered
		} else {
			s.logger.Warn("SMS template render failed, using raw body",
				zap.String("event_type", job.EventType),
				zap.Error(err),
			)
		}
	}

	if err := s.provider.SendSMS(ctx, to, body); err != nil {
		return domain.ChannelResult{Channel: s.Channel()}, fmt.Errorf("send sms: %w", err)
	}
	return domain.ChannelResult{Channel: s.Channel(), Success: true}, nil
}
