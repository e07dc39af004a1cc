package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notification-service/internal/domain"
	"notification-service/internal/middleware"
	"notification-service/internal/response"
	"notification-service/internal/usecase"
	"notification-service/internal/xerrors"
)

type NotificationHandler struct {
	uc *usecase.InboxUsecase
}

func NewNotificationHandler(uc *usecase.InboxUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// ----------------------
// Notification Handlers
// ----------------------

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.uc.List(r.Context(), tenantID, ownerID, limit, offset)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.uc.ListUnread(r.Context(), tenantID, ownerID, limit, offset)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	count, err := h.uc.CountUnread(r.Context(), tenantID, ownerID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	if err := h.uc.MarkAsRead(r.Context(), id, tenantID, ownerID); err != nil {
		writeUsecaseError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"read": true})
}

func (h *NotificationHandler) HideNotification(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	if err := h.uc.Hide(r.Context(), id, tenantID, ownerID); err != nil {
		writeUsecaseError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"hidden": true})
}

// ----------------------
// Preference Handlers
// ----------------------

func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	prefs, err := h.uc.GetPreferences(r.Context(), tenantID, ownerID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, prefs)
}

type preferencesRequest struct {
	EmailEnabled    bool   `json:"email_enabled"`
	SMSEnabled      bool   `json:"sms_enabled"`
	PushEnabled     bool   `json:"push_enabled"`
	InAppEnabled    bool   `json:"in_app_enabled"`
	DigestFrequency string `json:"digest_frequency"`
	QuietHoursStart string `json:"quiet_hours_start"`
	QuietHoursEnd   string `json:"quiet_hours_end"`
}

func (h *NotificationHandler) UpsertPreferences(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())
	tenantID := middleware.TenantID(r.Context())

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.uc.UpsertPreferences(r.Context(), &domain.Preferences{
		TenantID:        tenantID,
		OwnerID:         ownerID,
		EmailEnabled:    req.EmailEnabled,
		SMSEnabled:      req.SMSEnabled,
		PushEnabled:     req.PushEnabled,
		InAppEnabled:    req.InAppEnabled,
		DigestFrequency: req.DigestFrequency,
		QuietHoursStart: req.QuietHoursStart,
		QuietHoursEnd:   req.QuietHoursEnd,
	})
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, saved)
}

func writeUsecaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, xerrors.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "invalid input")
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}
