package usecase

import (
	"context"

	"notification-service/internal/domain"
	"notification-service/internal/repository"
	"notification-service/internal/xerrors"
)

// InboxUsecase backs the in-app read surface: listing, read state and
// preference management. The dispatch core only ever writes these rows.
type InboxUsecase struct {
	repo repository.Repository
}

func NewInboxUsecase(repo repository.Repository) *InboxUsecase {
	return &InboxUsecase{repo: repo}
}

func (uc *InboxUsecase) List(ctx context.Context, tenantID, ownerID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.repo.ListNotifications(ctx, tenantID, ownerID, limit, offset)
}

func (uc *InboxUsecase) ListUnread(ctx context.Context, tenantID, ownerID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.repo.ListUnreadNotifications(ctx, tenantID, ownerID, limit, offset)
}

func (uc *InboxUsecase) CountUnread(ctx context.Context, tenantID, ownerID string) (int, error) {
	return uc.repo.CountUnreadNotifications(ctx, tenantID, ownerID)
}

func (uc *InboxUsecase) MarkAsRead(ctx context.Context, id int64, tenantID, ownerID string) error {
	if id <= 0 {
		return xerrors.ErrInvalidInput
	}
	return uc.repo.MarkNotificationAsRead(ctx, id, tenantID, ownerID)
}

func (uc *InboxUsecase) Hide(ctx context.Context, id int64, tenantID, ownerID string) error {
	if id <= 0 {
		return xerrors.ErrInvalidInput
	}
	return uc.repo.HideNotification(ctx, id, tenantID, ownerID)
}

func (uc *InboxUsecase) GetPreferences(ctx context.Context, tenantID, ownerID string) (*domain.Preferences, error) {
	prefs, err := uc.repo.GetPreferences(ctx, tenantID, ownerID)
	if err == xerrors.ErrNotFound {
		return domain.DefaultPreferences(tenantID, ownerID), nil
	}
	return prefs, err
}

func (uc *InboxUsecase) UpsertPreferences(ctx context.Context, p *domain.Preferences) (*domain.Preferences, error) {
	if p.TenantID == "" || p.OwnerID == "" {
		return nil, xerrors.ErrInvalidInput
	}
	return uc.repo.UpsertPreferences(ctx, p)
}
