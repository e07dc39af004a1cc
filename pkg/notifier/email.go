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

type EmailProvider interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type EmailSender struct {
	provider  EmailProvider
	contacts  identity.Resolver
	templates *template.TemplateService
	logger    *zap.Logger
}

func NewEmailSender(provider EmailProvider, contacts identity.Resolver, templates *template.TemplateService, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		provider:  provider,
		contacts:  contacts,
		templates: templates,
		logger:    logger,
	}
}

func (s *EmailSender) Channel() domain.Channel { return domain.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, job *domain.Job) (domain.ChannelResult, error) {
	to, err := s.contacts.PrimaryEmail(ctx, job.TenantID, job.RecipientID)
	if err != nil {
		return domain.ChannelResult{Channel: s.Channel()}, fmt.Errorf("resolve recipient email: %w", err)
	}
	if to == "" {
		return domain.ChannelResult{Channel: s.Channel()},
			fmt.Errorf("%w: no email on file for %s", xerrors.ErrContactMissing, job.RecipientID)
	}

	body := job.Message
	if s.templates != nil {
		if rendered, err := s.templates.Render("email", job.EventType, templateData(job)); err == nil {
			body = rendered
		} else {
			s.logger.Warn("Email template render failed, using raw body",
				zap.String("event_type", job.EventType),
				zap.Error(err),
			)
		}
	}

	if err := s.provider.SendEmail(ctx, to, job.Title, body); err != nil {
		return domain.ChannelResult{Channel: s.Channel()}, fmt.Errorf("send email: %w", err)
	}
	return domain.ChannelResult{Channel: s.Channel(), Success: true}, nil
}
