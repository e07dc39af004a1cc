package repository

import (
	"context"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository aggregates all notification DB operations
type Repository interface {
	// In-app notifications
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListNotifications(ctx context.Context, tenantID, ownerID string, limit, offset int) ([]*domain.Notification, error)
	ListUnreadNotifications(ctx context.Context, tenantID, ownerID string, limit, offset int) ([]*domain.Notification, error)
	CountUnreadNotifications(ctx context.Context, tenantID, ownerID string) (int, error)
	MarkNotificationAsRead(ctx context.Context, id int64, tenantID, ownerID string) error
	HideNotification(ctx context.Context, id int64, tenantID, ownerID string) error

	// Preferences
	GetPreferences(ctx context.Context, tenantID, ownerID string) (*domain.Preferences, error)
	UpsertPreferences(ctx context.Context, p *domain.Preferences) (*domain.Preferences, error)

	// Push devices
	ListEnabledDevices(ctx context.Context, tenantID, ownerID string) ([]*domain.PushDevice, error)

	// Dispatch history
	InsertHistory(ctx context.Context, h *domain.HistoryRecord) error
}

type pgRepo struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &pgRepo{db: db}
}

// CreateNotification implements Repository.
func (p *pgRepo) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.RequestID == "" {
		n.RequestID = uuid.New().String()
	}

	query := `
		INSERT INTO notifications (
			request_id, tenant_id, owner_id, event_type,
			title, body, payload, visible_in_app, read_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9
		)
		RETURNING
			id, request_id, tenant_id, owner_id, event_type,
			title, body, payload, visible_in_app, read_at, created_at
	`

	row := p.db.QueryRow(ctx, query,
		n.RequestID,
		n.TenantID,
		n.OwnerID,
		n.EventType,
		n.Title,
		n.Body,
		n.Payload,
		n.VisibleInApp,
		n.ReadAt,
	)

	var created domain.Notification
	err := row.Scan(
		&created.ID,
		&created.RequestID,
		&created.TenantID,
		&created.OwnerID,
		&created.EventType,
		&created.Title,
		&created.Body,
		&created.Payload,
		&created.VisibleInApp,
		&created.ReadAt,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// ListNotifications implements Repository.
func (p *pgRepo) ListNotifications(ctx context.Context, tenantID, ownerID string, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT
			id, request_id, tenant_id, owner_id, event_type,
			title, body, payload, visible_in_app, read_at, created_at
		FROM notifications
		WHERE tenant_id = $1
		  AND owner_id = $2
		  AND visible_in_app = true
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return p.queryNotifications(ctx, query, tenantID, ownerID, limit, offset)
}

// ListUnreadNotifications implements Repository.
func (p *pgRepo) ListUnreadNotifications(ctx context.Context, tenantID, ownerID string, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT
			id, request_id, tenant_id, owner_id, event_type,
			title, body, payload, visible_in_app, read_at, created_at
		FROM notifications
		WHERE tenant_id = $1
		  AND owner_id = $2
		  AND visible_in_app = true
		  AND read_at IS NULL
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return p.queryNotifications(ctx, query, tenantID, ownerID, limit, offset)
}

func (p *pgRepo) queryNotifications(ctx context.Context, query string, args ...any) ([]*domain.Notification, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(
			&n.ID,
			&n.RequestID,
			&n.TenantID,
			&n.OwnerID,
			&n.EventType,
			&n.Title,
			&n.Body,
			&n.Payload,
			&n.VisibleInApp,
			&n.ReadAt,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return notifications, nil
}

// CountUnreadNotifications implements Repository.
func (p *pgRepo) CountUnreadNotifications(ctx context.Context, tenantID, ownerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE tenant_id = $1
		  AND owner_id = $2
		  AND visible_in_app = true
		  AND read_at IS NULL
	`

	var count int
	err := p.db.QueryRow(ctx, query, tenantID, ownerID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkNotificationAsRead implements Repository.
func (p *pgRepo) MarkNotificationAsRead(ctx context.Context, id int64, tenantID, ownerID string) error {
	query := `
		UPDATE notifications
		SET read_at = NOW()
		WHERE id = $1
		  AND tenant_id = $2
		  AND owner_id = $3
		  AND read_at IS NULL
	`

	ct, err := p.db.Exec(ctx, query, id, tenantID, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// HideNotification implements Repository.
func (p *pgRepo) HideNotification(ctx context.Context, id int64, tenantID, ownerID string) error {
	query := `
		UPDATE notifications
		SET visible_in_app = false
		WHERE id = $1
		  AND tenant_id = $2
		  AND owner_id = $3
		  AND visible_in_app = true
	`

	ct, err := p.db.Exec(ctx, query, id, tenantID, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// GetPreferences implements Repository. Returns xerrors.ErrNotFound when the
// recipient has no stored record; the resolver supplies defaults in that case.
func (p *pgRepo) GetPreferences(ctx context.Context, tenantID, ownerID string) (*domain.Preferences, error) {
	query := `
		SELECT
			tenant_id, owner_id, email_enabled, sms_enabled, push_enabled,
			in_app_enabled, digest_frequency, quiet_hours_start, quiet_hours_end,
			created_at, updated_at
		FROM notification_preferences
		WHERE tenant_id = $1 AND owner_id = $2
	`

	var prefs domain.Preferences
	err := p.db.QueryRow(ctx, query, tenantID, ownerID).Scan(
		&prefs.TenantID,
		&prefs.OwnerID,
		&prefs.EmailEnabled,
		&prefs.SMSEnabled,
		&prefs.PushEnabled,
		&prefs.InAppEnabled,
		&prefs.DigestFrequency,
		&prefs.QuietHoursStart,
		&prefs.QuietHoursEnd,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &prefs, nil
}

// UpsertPreferences implements Repository.
func (p *pgRepo) UpsertPreferences(ctx context.Context, prefs *domain.Preferences) (*domain.Preferences, error) {
	query := `
		INSERT INTO notification_preferences (
			tenant_id, owner_id, email_enabled, sms_enabled, push_enabled,
			in_app_enabled, digest_frequency, quiet_hours_start, quiet_hours_end
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, owner_id) DO UPDATE SET
			email_enabled     = EXCLUDED.email_enabled,
			sms_enabled       = EXCLUDED.sms_enabled,
			push_enabled      = EXCLUDED.push_enabled,
			in_app_enabled    = EXCLUDED.in_app_enabled,
			digest_frequency  = EXCLUDED.digest_frequency,
			quiet_hours_start = EXCLUDED.quiet_hours_start,
			quiet_hours_end   = EXCLUDED.quiet_hours_end,
			updated_at        = NOW()
		RETURNING
			tenant_id, owner_id, email_enabled, sms_enabled, push_enabled,
			in_app_enabled, digest_frequency, quiet_hours_start, quiet_hours_end,
			created_at, updated_at
	`

	row := p.db.QueryRow(ctx, query,
		prefs.TenantID,
		prefs.OwnerID,
		prefs.EmailEnabled,
		prefs.SMSEnabled,
		prefs.PushEnabled,
		prefs.InAppEnabled,
		prefs.DigestFrequency,
		prefs.QuietHoursStart,
		prefs.QuietHoursEnd,
	)

	var saved domain.Preferences
	err := row.Scan(
		&saved.TenantID,
		&saved.OwnerID,
		&saved.EmailEnabled,
		&saved.SMSEnabled,
		&saved.PushEnabled,
		&saved.InAppEnabled,
		&saved.DigestFrequency,
		&saved.QuietHoursStart,
		&saved.QuietHoursEnd,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListEnabledDevices implements Repository.
func (p *pgRepo) ListEnabledDevices(ctx context.Context, tenantID, ownerID string) ([]*domain.PushDevice, error) {
	query := `
		SELECT id, tenant_id, owner_id, token, platform, enabled, created_at
		FROM push_devices
		WHERE tenant_id = $1
		  AND owner_id = $2
		  AND enabled = true
		ORDER BY created_at
	`

	rows, err := p.db.Query(ctx, query, tenantID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*domain.PushDevice
	for rows.Next() {
		var d domain.PushDevice
		err := rows.Scan(
			&d.ID,
			&d.TenantID,
			&d.OwnerID,
			&d.Token,
			&d.Platform,
			&d.Enabled,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		devices = append(devices, &d)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return devices, nil
}

// InsertHistory implements Repository.
func (p *pgRepo) InsertHistory(ctx context.Context, h *domain.HistoryRecord) error {
	query := `
		INSERT INTO notification_history (
			dispatch_id, tenant_id, owner_id, channel, subject,
			event_type, status, error, sent_at, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := p.db.Exec(ctx, query,
		h.DispatchID,
		h.TenantID,
		h.OwnerID,
		h.Channel,
		h.Subject,
		h.EventType,
		h.Status,
		h.Error,
		h.SentAt,
		h.Metadata,
	)
	return err
}
