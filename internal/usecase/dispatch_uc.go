package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/internal/metrics"
	"notification-service/internal/repository"
	"notification-service/pkg/notifier"
)

// Dispatch progress checkpoints, reported in order to the host job system.
const (
	StageAccepted            = "accepted"
	StagePreferencesResolved = "preferences_resolved"
	StageChannelsComputed    = "channels_computed"
	StageSendsIssued         = "sends_issued"
	StageHistoryRecorded     = "history_recorded"
	StageComplete            = "complete"
)

// ProgressFunc receives advisory checkpoints; nil disables reporting.
type ProgressFunc func(dispatchID, stage string)

// DispatchUsecase fans one logical notification out across the eligible
// channels, isolating failures per channel and folding the outcomes into
// one aggregate result and one history row.
type DispatchUsecase struct {
	repo        repository.Repository
	notifier    *notifier.Notifier
	logger      *zap.Logger
	sendTimeout time.Duration
	progress    ProgressFunc
	now         func() time.Time
}

func NewDispatchUsecase(repo repository.Repository, n *notifier.Notifier, logger *zap.Logger, sendTimeout time.Duration, progress ProgressFunc) *DispatchUsecase {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &DispatchUsecase{
		repo:        repo,
		notifier:    n,
		logger:      logger,
		sendTimeout: sendTimeout,
		progress:    progress,
		now:         time.Now,
	}
}

// channelOutcome keeps each attempt's channel tag bundled with its result,
// so aggregation never pairs results back to channels by array position.
type channelOutcome struct {
	channel domain.Channel
	result  domain.ChannelResult
	err     error
}

// Dispatch runs one job to completion. It always returns a well-formed
// aggregate; channel failures are captured per channel and never propagate.
func (uc *DispatchUsecase) Dispatch(ctx context.Context, job *domain.Job) domain.DispatchResult {
	start := uc.now()
	defer func() {
		metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}()

	if job.DispatchID == "" {
		job.DispatchID = uuid.New().String()
	}
	uc.report(job.DispatchID, StageAccepted)

	prefs := uc.resolvePreferences(ctx, job)
	uc.report(job.DispatchID, StagePreferencesResolved)

	eligible := eligibleChannels(job.Channels, prefs, start)
	uc.report(job.DispatchID, StageChannelsComputed)

	if len(eligible) == 0 {
		// Suppressed by preference: a valid outcome, not an error.
		uc.logger.Info("Dispatch suppressed by preference",
			zap.String("dispatch_id", job.DispatchID),
			zap.String("recipient", job.RecipientID),
			zap.Strings("requested", job.Channels),
		)
		metrics.DispatchesTotal.WithLabelValues("suppressed").Inc()
		uc.recordHistory(ctx, job, nil, nil, nil)
		uc.report(job.DispatchID, StageComplete)
		return domain.DispatchResult{Success: true, Sent: 0, Failed: 0, Channels: []string{}}
	}

	outcomes := make(chan channelOutcome, len(eligible))
	for _, ch := range eligible {
		go func(ch domain.Channel) {
			defer func() {
				if r := recover(); r != nil {
					outcomes <- channelOutcome{channel: ch, err: fmt.Errorf("sender panic: %v", r)}
				}
			}()

			sendCtx, cancel := context.WithTimeout(ctx, uc.sendTimeout)
			defer cancel()

			result, err := uc.notifier.Send(sendCtx, ch, job)
			outcomes <- channelOutcome{channel: ch, result: result, err: err}
		}(ch)
	}
	uc.report(job.DispatchID, StageSendsIssued)

	var succeeded []string
	var failed []string
	attempted := make([]domain.ChannelResult, 0, len(eligible))
	for i := 0; i < len(eligible); i++ {
		o := <-outcomes

		result := o.result
		result.Channel = o.channel
		if o.err != nil {
			result.Success = false
			result.Detail = o.err.Error()
		}
		attempted = append(attempted, result)

		if result.Success {
			succeeded = append(succeeded, string(o.channel))
			metrics.ChannelSendsTotal.WithLabelValues(string(o.channel), "success").Inc()
		} else {
			failed = append(failed, string(o.channel))
			metrics.ChannelSendsTotal.WithLabelValues(string(o.channel), "failure").Inc()
			uc.logger.Warn("Channel send failed",
				zap.String("dispatch_id", job.DispatchID),
				zap.String("channel", string(o.channel)),
				zap.String("detail", result.Detail),
			)
		}
	}
	sort.Strings(succeeded)
	sort.Strings(failed)

	uc.recordHistory(ctx, job, attempted, succeeded, failed)
	uc.report(job.DispatchID, StageHistoryRecorded)

	status := domain.HistoryStatusSent
	if len(failed) > 0 {
		status = domain.HistoryStatusPartial
	}
	metrics.DispatchesTotal.WithLabelValues(status).Inc()

	uc.logger.Info("Dispatch complete",
		zap.String("dispatch_id", job.DispatchID),
		zap.String("recipient", job.RecipientID),
		zap.Strings("succeeded", succeeded),
		zap.Strings("failed", failed),
	)
	uc.report(job.DispatchID, StageComplete)

	if succeeded == nil {
		succeeded = []string{}
	}
	return domain.DispatchResult{
		Success:  len(failed) == 0,
		Sent:     len(succeeded),
		Failed:   len(failed),
		Channels: succeeded,
	}
}

// recordHistory writes the single audit row for a dispatch. A write
// failure is logged loudly (it is the only audit trail) but the dispatch
// outcome already computed stands.
func (uc *DispatchUsecase) recordHistory(ctx context.Context, job *domain.Job, attempted []domain.ChannelResult, succeeded, failed []string) {
	if succeeded == nil {
		succeeded = []string{}
	}
	if failed == nil {
		failed = []string{}
	}

	metadata := map[string]any{
		"channels":        succeeded,
		"failed_channels": failed,
	}
	for _, r := range attempted {
		if r.Channel == domain.ChannelPush && r.TotalDevices > 0 {
			metadata["push_sent_to"] = r.SentTo
			metadata["push_total_devices"] = r.TotalDevices
		}
	}

	status := domain.HistoryStatusSent
	var errSummary string
	if len(failed) > 0 {
		status = domain.HistoryStatusPartial
		errSummary = "failed channels: " + strings.Join(failed, ", ")
	}

	h := &domain.HistoryRecord{
		DispatchID: job.DispatchID,
		TenantID:   job.TenantID,
		OwnerID:    job.RecipientID,
		Channel:    domain.HistoryChannelMulti,
		Subject:    job.Title,
		EventType:  job.EventType,
		Status:     status,
		Error:      errSummary,
		SentAt:     uc.now(),
		Metadata:   metadata,
	}

	if err := uc.repo.InsertHistory(ctx, h); err != nil {
		metrics.HistoryWriteFailuresTotal.Inc()
		uc.logger.Error("History write failed; dispatch audit row lost",
			zap.String("dispatch_id", job.DispatchID),
			zap.String("recipient", job.RecipientID),
			zap.Error(err),
		)
	}
}

func (uc *DispatchUsecase) report(dispatchID, stage string) {
	if uc.progress != nil {
		uc.progress(dispatchID, stage)
	}
}
