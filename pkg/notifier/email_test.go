package notifier

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"
)

type fakeContacts struct {
	email string
	phone string
	err   error
}

func (f *fakeContacts) PrimaryEmail(context.Context, string, string) (string, error) {
	return f.email, f.err
}

func (f *fakeContacts) PrimaryPhone(context.Context, string, string) (string, error) {
	return f.phone, f.err
}

type fakeEmailProvider struct {
	to, subject, body string
	err               error
}

func (f *fakeEmailProvider) SendEmail(_ context.Context, to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

type fakeSMSProvider struct {
	to, body string
	err      error
}

func (f *fakeSMSProvider) SendSMS(_ context.Context, to, body string) error {
	f.to, f.body = to, body
	return f.err
}

func contactJob() *domain.Job {
	return &domain.Job{
		TenantID:    "t1",
		RecipientID: "u1",
		Title:       "Order shipped",
		Message:     "Your order is on its way",
		Channels:    []string{"email", "sms"},
	}
}

func TestEmailSend(t *testing.T) {
	provider := &fakeEmailProvider{}
	s := NewEmailSender(provider, &fakeContacts{email: "u1@example.com"}, nil, zap.NewNop())

	result, err := s.Send(context.Background(), contactJob())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if provider.to != "u1@example.com" || provider.subject != "Order shipped" {
		t.Errorf("provider got to=%q subject=%q", provider.to, provider.subject)
	}
	if provider.body != "Your order is on its way" {
		t.Errorf("with no templates the raw message is the body, got %q", provider.body)
	}
}

func TestEmailSendMissingContact(t *testing.T) {
	s := NewEmailSender(&fakeEmailProvider{}, &fakeContacts{}, nil, zap.NewNop())

	_, err := s.Send(context.Background(), contactJob())
	if !errors.Is(err, xerrors.ErrContactMissing) {
		t.Fatalf("err = %v, want ErrContactMissing", err)
	}
}

func TestEmailSendProviderFailure(t *testing.T) {
	provider := &fakeEmailProvider{err: errors.New("rate limited")}
	s := NewEmailSender(provider, &fakeContacts{email: "u1@example.com"}, nil, zap.NewNop())

	if _, err := s.Send(context.Background(), contactJob()); err == nil {
		t.Fatal("provider failure should surface as an error")
	}
}

func TestSMSSend(t *testing.T) {
	provider := &fakeSMSProvider{}
	s := NewSMSSender(provider, &fakeContacts{phone: "+15550100"}, nil, zap.NewNop())

	result, err := s.Send(context.Background(), contactJob())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if provider.to != "+15550100" {
		t.Errorf("provider got to=%q", provider.to)
	}
	if provider.body != "Order shipped: Your order is on its way" {
		t.Errorf("sms body = %q", provider.body)
	}
}

func TestSMSSendMissingContact(t *testing.T) {
	s := NewSMSSender(&fakeSMSProvider{}, &fakeContacts{}, nil, zap.NewNop())

	_, err := s.Send(context.Background(), contactJob())
	if !errors.Is(err, xerrors.ErrContactMissing) {
		t.Fatalf("err = %v, want ErrContactMissing", err)
	}
}

func TestNotifierUnknownChannel(t *testing.T) {
	n := New()

	_, err := n.Send(context.Background(), domain.ChannelEmail, contactJob())
	if !errors.Is(err, xerrors.ErrUnknownChannel) {
		t.Fatalf("err = %v, want ErrUnknownChannel", err)
	}
}
