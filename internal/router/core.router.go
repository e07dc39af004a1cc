package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	hrest "notification-service/internal/handler/http"
	wshandler "notification-service/internal/handler/ws"
	"notification-service/internal/middleware"
	"notification-service/internal/response"
)

// HealthFunc reports store/queue connectivity for the health endpoint.
type HealthFunc func() error

// SetupRoutes configures the HTTP routes for the notification service
func SetupRoutes(
	r chi.Router,
	h *hrest.NotificationHandler,
	wsHandler *wshandler.WSHandler,
	jwtSecret string,
	health HealthFunc,
) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := health(); err != nil {
			response.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtSecret))

		r.Get("/", h.ListNotifications)
		r.Get("/unread", h.ListUnread)
		r.Get("/unread/count", h.CountUnread)
		r.Patch("/{id}/read", h.MarkAsRead)
		r.Patch("/{id}/hide", h.HideNotification)

		r.Get("/preferences", h.GetPreferences)
		r.Post("/preferences", h.UpsertPreferences)

		// WebSocket endpoint for live updates
		r.Get("/ws", wsHandler.HandleNotifications)
	})
	return r
}
