package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notification-service/internal/domain"
)

type PushProvider interface {
	// SendToDevices attempts every token and returns how many succeeded;
	// the error is reserved for transport-level failures.
	SendToDevices(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}

type DeviceRegistry interface {
	ListEnabledDevices(ctx context.Context, tenantID, ownerID string) ([]*domain.PushDevice, error)
}

type PushSender struct {
	provider PushProvider
	devices  DeviceRegistry
	logger   *zap.Logger
}

func NewPushSender(provider PushProvider, devices DeviceRegistry, logger *zap.Logger) *PushSender {
	return &PushSender{
		provider: provider,
		devices:  devices,
		logger:   logger,
	}
}

func (s *PushSender) Channel() domain.Channel { return domain.ChannelPush }

// Send fans out to every enabled device. Having no registered devices is a
// common condition, reported as a structured non-success rather than an
// error; missing contacts on email/SMS stay errors because they usually
// indicate a data problem.
func (s *PushSender) Send(ctx context.Context, job *domain.Job) (domain.ChannelResult, error) {
	devices, err := s.devices.ListEnabledDevices(ctx, job.TenantID, job.RecipientID)
	if err != nil {
		return domain.ChannelResult{Channel: s.Channel()}, fmt.Errorf("list push devices: %w", err)
	}

	if len(devices) == 0 {
		return domain.ChannelResult{
			Channel: s.Channel(),
			Success: false,
			Detail:  "No active devices",
		}, nil
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}

	sent, err := s.provider.SendToDevices(ctx, tokens, job.Title, job.Message, pushData(job))
	if err != nil {
		return domain.ChannelResult{Channel: s.Channel(), TotalDevices: len(tokens)},
			fmt.Errorf("push to devices: %w", err)
	}

	result := domain.ChannelResult{
		Channel:      s.Channel(),
		Success:      sent > 0,
		SentTo:       sent,
		TotalDevices: len(tokens),
	}
	if sent == 0 {
		result.Detail = "all devices failed"
	} else if sent < len(tokens) {
		s.logger.Info("Push reached a subset of devices",
			zap.String("recipient", job.RecipientID),
			zap.Int("sent_to", sent),
			zap.Int("total_devices", len(tokens)),
		)
	}
	return result, nil
}

// pushData flattens the job payload into the string map FCM accepts.
func pushData(job *domain.Job) map[string]string {
	if len(job.Data) == 0 {
		return nil
	}
	data := make(map[string]string, len(job.Data))
	for k, v := range job.Data {
		data[k] = fmt.Sprint(v)
	}
	return data
}
