package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/audit"
	"eval360/internal/domain/auth"
	"eval360/internal/transport/http/api"
	"eval360/internal/transport/http/middleware"
	"eval360/internal/transport/http/shared"
)

const exportLimit = 10000

type Events interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service Events
	Perms   middleware.PermissionStore
}

func NewHandler(service Events, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events", h.handleListEvents)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events/export", h.handleExportEvents)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	q := r.URL.Query()
	return audit.Filter{Action: q.Get("action"), EntityType: q.Get("entityType"), ActorUser: q.Get("actorUserId")}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	includeDetails := r.URL.Query().Get("includeDetails") == "true"
	filter := filterFrom(r)

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		slog.Warn("audit count failed", "err", err)
	}

	events, err := h.Service.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.List(r.Context(), filterFrom(r), false, exportLimit, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		if err := writer.Write([]string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}
