package cataloghandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/auth"
	"eval360/internal/domain/catalog"
	"eval360/internal/domain/identity"
	"eval360/internal/transport/http/api"
	"eval360/internal/transport/http/middleware"
)

type Directory interface {
	ListTeams(ctx context.Context) ([]identity.Team, error)
	ListActiveUsers(ctx context.Context) ([]identity.User, error)
}

type Competencies interface {
	Active(ctx context.Context) ([]catalog.Competency, error)
	All(ctx context.Context) ([]catalog.Competency, error)
}

type Handler struct {
	Directory    Directory
	Competencies Competencies
	Perms        middleware.PermissionStore
}

func NewHandler(directory Directory, competencies Competencies, perms middleware.PermissionStore) *Handler {
	return &Handler{Directory: directory, Competencies: competencies, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/teams", h.handleListTeams)
	r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/users", h.handleListUsers)
	r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/competencies", h.handleListCompetencies)
}

func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Directory.ListTeams(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "teams_list_failed", "failed to list teams", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, teams, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Directory.ListActiveUsers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "users_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

// handleListCompetencies returns active competencies grouped by category.
// ?includeInactive=true returns the flat list including retired ones.
func (h *Handler) handleListCompetencies(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("includeInactive") == "true" {
		comps, err := h.Competencies.All(r.Context())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "competencies_list_failed", "failed to list competencies", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, comps, middleware.GetRequestID(r.Context()))
		return
	}

	comps, err := h.Competencies.Active(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "competencies_list_failed", "failed to list competencies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, catalog.GroupByCategory(comps), middleware.GetRequestID(r.Context()))
}
