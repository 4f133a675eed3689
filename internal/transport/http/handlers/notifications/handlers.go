package notificationshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/notifications"
	"eval360/internal/transport/http/api"
	"eval360/internal/transport/http/middleware"
	"eval360/internal/transport/http/shared"
)

type Inbox interface {
	List(ctx context.Context, userID string, limit, offset int) ([]notifications.Notification, error)
	Count(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type Handler struct {
	Service Inbox
}

func NewHandler(service Inbox) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	total, err := h.Service.Count(r.Context(), user.UserID)
	if err != nil {
		slog.Warn("notification count failed", "err", err)
	}

	items, err := h.Service.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	notificationID := chi.URLParam(r, "notificationID")
	if err := h.Service.MarkRead(r.Context(), user.UserID, notificationID); err != nil {
		if errors.Is(err, notifications.ErrNotificationNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "notification not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to update notification", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"status": "read"}, middleware.GetRequestID(r.Context()))
}
