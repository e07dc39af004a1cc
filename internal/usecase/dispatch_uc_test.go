package usecase

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"
	"notification-service/pkg/notifier"
)

// fakeRepo satisfies repository.Repository; only the methods the dispatch
// path touches do anything interesting.
type fakeRepo struct {
	mu       sync.Mutex
	prefs    *domain.Preferences
	prefsErr error
	history  []*domain.HistoryRecord
	histErr  error
}

func (f *fakeRepo) GetPreferences(_ context.Context, tenantID, ownerID string) (*domain.Preferences, error) {
	if f.prefsErr != nil {
		return nil, f.prefsErr
	}
	if f.prefs == nil {
		return nil, xerrors.ErrNotFound
	}
	return f.prefs, nil
}

func (f *fakeRepo) InsertHistory(_ context.Context, h *domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.histErr != nil {
		return f.histErr
	}
	f.history = append(f.history, h)
	return nil
}

func (f *fakeRepo) recorded() []*domain.HistoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.HistoryRecord(nil), f.history...)
}

func (f *fakeRepo) CreateNotification(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	return n, nil
}
func (f *fakeRepo) ListNotifications(context.Context, string, string, int, int) ([]*domain.Notification, error) {
	return nil, nil
}
func (f *fakeRepo) ListUnreadNotifications(context.Context, string, string, int, int) ([]*domain.Notification, error) {
	return nil, nil
}
func (f *fakeRepo) CountUnreadNotifications(context.Context, string, string) (int, error) {
	return 0, nil
}
func (f *fakeRepo) MarkNotificationAsRead(context.Context, int64, string, string) error { return nil }
func (f *fakeRepo) HideNotification(context.Context, int64, string, string) error       { return nil }
func (f *fakeRepo) UpsertPreferences(_ context.Context, p *domain.Preferences) (*domain.Preferences, error) {
	return p, nil
}
func (f *fakeRepo) ListEnabledDevices(context.Context, string, string) ([]*domain.PushDevice, error) {
	return nil, nil
}

// fakeSender is a scriptable notifier.Sender that counts its calls.
type fakeSender struct {
	channel domain.Channel
	result  domain.ChannelResult
	err     error
	panics  bool

	mu    sync.Mutex
	calls int
}

func (s *fakeSender) Channel() domain.Channel { return s.channel }

func (s *fakeSender) Send(_ context.Context, _ *domain.Job) (domain.ChannelResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panics {
		panic("sender exploded")
	}
	return s.result, s.err
}

func (s *fakeSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func okSender(ch domain.Channel) *fakeSender {
	return &fakeSender{channel: ch, result: domain.ChannelResult{Channel: ch, Success: true}}
}

func testJob(channels ...string) *domain.Job {
	return &domain.Job{
		TenantID:    "t1",
		RecipientID: "u1",
		EventType:   "order_shipped",
		Title:       "Order shipped",
		Message:     "Your order is on its way",
		Channels:    channels,
	}
}

func newTestUsecase(repo *fakeRepo, senders ...notifier.Sender) *DispatchUsecase {
	return NewDispatchUsecase(repo, notifier.New(senders...), zap.NewNop(), time.Second, nil)
}

func TestDispatchAllChannelsSucceed(t *testing.T) {
	repo := &fakeRepo{}
	email := okSender(domain.ChannelEmail)
	push := okSender(domain.ChannelPush)
	inapp := okSender(domain.ChannelInApp)
	uc := newTestUsecase(repo, email, push, inapp)

	result := uc.Dispatch(context.Background(), testJob("email", "push", "in-app"))

	if !result.Success || result.Sent != 3 || result.Failed != 0 {
		t.Fatalf("unexpected aggregate: %+v", result)
	}
	want := []string{"email", "in-app", "push"}
	if !reflect.DeepEqual(result.Channels, want) {
		t.Errorf("channels = %v, want %v", result.Channels, want)
	}
	for _, s := range []*fakeSender{email, push, inapp} {
		if s.callCount() != 1 {
			t.Errorf("%s sender called %d times, want 1", s.channel, s.callCount())
		}
	}

	history := repo.recorded()
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want exactly 1", len(history))
	}
	h := history[0]
	if h.Channel != domain.HistoryChannelMulti {
		t.Errorf("history channel = %q, want %q", h.Channel, domain.HistoryChannelMulti)
	}
	if h.Status != domain.HistoryStatusSent {
		t.Errorf("history status = %q, want %q", h.Status, domain.HistoryStatusSent)
	}
	if h.Error != "" {
		t.Errorf("history error = %q, want empty", h.Error)
	}
}

func TestDispatchIsolatesChannelFailure(t *testing.T) {
	repo := &fakeRepo{}
	email := &fakeSender{channel: domain.ChannelEmail, err: errors.New("smtp down")}
	push := okSender(domain.ChannelPush)
	inapp := okSender(domain.ChannelInApp)
	uc := newTestUsecase(repo, email, push, inapp)

	result := uc.Dispatch(context.Background(), testJob("email", "push", "in-app"))

	if result.Success {
		t.Error("aggregate success despite a failed channel")
	}
	if result.Sent != 2 || result.Failed != 1 {
		t.Errorf("sent=%d failed=%d, want 2/1", result.Sent, result.Failed)
	}
	want := []string{"in-app", "push"}
	if !reflect.DeepEqual(result.Channels, want) {
		t.Errorf("channels = %v, want %v", result.Channels, want)
	}

	history := repo.recorded()
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	h := history[0]
	if h.Status != domain.HistoryStatusPartial {
		t.Errorf("history status = %q, want %q", h.Status, domain.HistoryStatusPartial)
	}
	if h.Error != "failed channels: email" {
		t.Errorf("history error = %q", h.Error)
	}
	failedMeta, _ := h.Metadata["failed_channels"].([]string)
	if !reflect.DeepEqual(failedMeta, []string{"email"}) {
		t.Errorf("failed_channels metadata = %v", h.Metadata["failed_channels"])
	}
}

func TestDispatchIsolatesSenderPanic(t *testing.T) {
	repo := &fakeRepo{}
	push := &fakeSender{channel: domain.ChannelPush, panics: true}
	email := okSender(domain.ChannelEmail)
	uc := newTestUsecase(repo, email, push)

	result := uc.Dispatch(context.Background(), testJob("email", "push"))

	if result.Success {
		t.Error("aggregate success despite a panicking sender")
	}
	if result.Sent != 1 || result.Failed != 1 {
		t.Errorf("sent=%d failed=%d, want 1/1", result.Sent, result.Failed)
	}
	if !reflect.DeepEqual(result.Channels, []string{"email"}) {
		t.Errorf("channels = %v, want [email]", result.Channels)
	}
}

func TestDispatchSuppressedWritesHistory(t *testing.T) {
	repo := &fakeRepo{prefs: &domain.Preferences{TenantID: "t1", OwnerID: "u1"}} // everything off
	sms := okSender(domain.ChannelSMS)
	email := okSender(domain.ChannelEmail)
	uc := newTestUsecase(repo, email, sms)

	result := uc.Dispatch(context.Background(), testJob("email", "sms"))

	if !result.Success {
		t.Error("fully suppressed dispatch should count as success")
	}
	if result.Sent != 0 || result.Failed != 0 {
		t.Errorf("sent=%d failed=%d, want 0/0", result.Sent, result.Failed)
	}
	if len(result.Channels) != 0 {
		t.Errorf("channels = %v, want empty", result.Channels)
	}
	if email.callCount() != 0 || sms.callCount() != 0 {
		t.Error("no sender should be invoked when every channel is suppressed")
	}

	history := repo.recorded()
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1 even for a suppressed dispatch", len(history))
	}
	if history[0].Status != domain.HistoryStatusSent {
		t.Errorf("history status = %q, want %q", history[0].Status, domain.HistoryStatusSent)
	}
}

func TestDispatchSMSDisabledByDefault(t *testing.T) {
	repo := &fakeRepo{} // no stored record, defaults apply
	sms := okSender(domain.ChannelSMS)
	email := okSender(domain.ChannelEmail)
	uc := newTestUsecase(repo, email, sms)

	result := uc.Dispatch(context.Background(), testJob("email", "sms"))

	if sms.callCount() != 0 {
		t.Error("sms sender invoked despite default opt-out")
	}
	if email.callCount() != 1 {
		t.Error("email sender not invoked")
	}
	if !result.Success || result.Sent != 1 {
		t.Errorf("unexpected aggregate: %+v", result)
	}
}

func TestDispatchPreferenceLookupFailureFallsOpen(t *testing.T) {
	repo := &fakeRepo{prefsErr: errors.New("connection refused")}
	email := okSender(domain.ChannelEmail)
	uc := newTestUsecase(repo, email)

	result := uc.Dispatch(context.Background(), testJob("email"))

	if email.callCount() != 1 {
		t.Error("email should still send when the preference lookup fails")
	}
	if !result.Success || result.Sent != 1 {
		t.Errorf("unexpected aggregate: %+v", result)
	}
}

func TestDispatchQuietHoursSuppressAllButInApp(t *testing.T) {
	repo := &fakeRepo{prefs: &domain.Preferences{
		TenantID:        "t1",
		OwnerID:         "u1",
		EmailEnabled:    true,
		SMSEnabled:      true,
		PushEnabled:     true,
		InAppEnabled:    true,
		QuietHoursStart: "22:00",
		QuietHoursEnd:   "06:00",
	}}
	email := okSender(domain.ChannelEmail)
	sms := okSender(domain.ChannelSMS)
	push := okSender(domain.ChannelPush)
	inapp := okSender(domain.ChannelInApp)
	uc := newTestUsecase(repo, email, sms, push, inapp)
	uc.now = func() time.Time {
		return time.Date(2026, time.March, 10, 23, 30, 0, 0, time.Local)
	}

	result := uc.Dispatch(context.Background(), testJob("email", "sms", "push", "in-app"))

	if !result.Success || result.Sent != 1 {
		t.Fatalf("unexpected aggregate: %+v", result)
	}
	if !reflect.DeepEqual(result.Channels, []string{"in-app"}) {
		t.Errorf("channels = %v, want [in-app]", result.Channels)
	}
	for _, s := range []*fakeSender{email, sms, push} {
		if s.callCount() != 0 {
			t.Errorf("%s sender invoked during quiet hours", s.channel)
		}
	}
	if inapp.callCount() != 1 {
		t.Error("in-app sender should be exempt from quiet hours")
	}
}

func TestDispatchAllChannelsFail(t *testing.T) {
	repo := &fakeRepo{}
	email := &fakeSender{channel: domain.ChannelEmail, err: errors.New("smtp down")}
	push := &fakeSender{channel: domain.ChannelPush, err: errors.New("fcm down")}
	uc := newTestUsecase(repo, email, push)

	result := uc.Dispatch(context.Background(), testJob("email", "push"))

	if result.Success {
		t.Error("aggregate success with zero delivered channels")
	}
	if result.Sent != 0 || result.Failed != 2 {
		t.Errorf("sent=%d failed=%d, want 0/2", result.Sent, result.Failed)
	}
	if len(result.Channels) != 0 {
		t.Errorf("channels = %v, want empty", result.Channels)
	}
	if h := repo.recorded(); len(h) != 1 || h[0].Status != domain.HistoryStatusPartial {
		t.Errorf("expected one partial history row, got %+v", h)
	}
}

func TestDispatchRecordsPushDeviceCounts(t *testing.T) {
	repo := &fakeRepo{}
	push := &fakeSender{
		channel: domain.ChannelPush,
		result: domain.ChannelResult{
			Channel:      domain.ChannelPush,
			Success:      true,
			SentTo:       2,
			TotalDevices: 3,
		},
	}
	uc := newTestUsecase(repo, push)

	uc.Dispatch(context.Background(), testJob("push"))

	history := repo.recorded()
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	meta := history[0].Metadata
	if meta["push_sent_to"] != 2 || meta["push_total_devices"] != 3 {
		t.Errorf("push metadata = %v", meta)
	}
}

func TestDispatchAssignsDispatchID(t *testing.T) {
	repo := &fakeRepo{}
	uc := newTestUsecase(repo, okSender(domain.ChannelEmail))

	job := testJob("email")
	uc.Dispatch(context.Background(), job)
	if job.DispatchID == "" {
		t.Fatal("dispatch id not assigned")
	}

	pinned := testJob("email")
	pinned.DispatchID = "fixed-id"
	uc.Dispatch(context.Background(), pinned)

	history := repo.recorded()
	if len(history) != 2 {
		t.Fatalf("history rows = %d, want 2", len(history))
	}
	if history[0].DispatchID != job.DispatchID {
		t.Errorf("history dispatch id = %q, want %q", history[0].DispatchID, job.DispatchID)
	}
	if history[1].DispatchID != "fixed-id" {
		t.Errorf("caller-supplied dispatch id not preserved: %q", history[1].DispatchID)
	}
}

func TestDispatchSurvivesHistoryWriteFailure(t *testing.T) {
	repo := &fakeRepo{histErr: errors.New("disk full")}
	uc := newTestUsecase(repo, okSender(domain.ChannelEmail))

	result := uc.Dispatch(context.Background(), testJob("email"))

	if !result.Success || result.Sent != 1 {
		t.Errorf("history write failure changed the dispatch outcome: %+v", result)
	}
}

func TestDispatchReportsStagesInOrder(t *testing.T) {
	repo := &fakeRepo{}
	var stages []string
	uc := NewDispatchUsecase(repo, notifier.New(okSender(domain.ChannelEmail)), zap.NewNop(), time.Second,
		func(_, stage string) { stages = append(stages, stage) })

	uc.Dispatch(context.Background(), testJob("email"))

	want := []string{
		StageAccepted,
		StagePreferencesResolved,
		StageChannelsComputed,
		StageSendsIssued,
		StageHistoryRecorded,
		StageComplete,
	}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}
}
