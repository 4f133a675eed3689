package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/auth"
	"eval360/internal/domain/identity"
	"eval360/internal/platform/metrics"
	"eval360/internal/transport/http/api"
	"eval360/internal/transport/http/middleware"
	"eval360/internal/transport/http/shared"
)

type Sessions interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Logout(ctx context.Context, user auth.UserContext) error
}

type Users interface {
	GetUser(ctx context.Context, userID string) (identity.User, error)
}

type Handler struct {
	Sessions Sessions
	Users    Users
	Metrics  *metrics.Collector
}

func NewHandler(sessions Sessions, users Users, collector *metrics.Collector) *Handler {
	return &Handler{Sessions: sessions, Users: users, Metrics: collector}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/me", h.HandleMe)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Struct("", payload)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Sessions.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Metrics.LoginFailed()
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
			return
		}
		slog.Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		if err := h.Sessions.Logout(r.Context(), user); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	profile, err := h.Users.GetUser(r.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_lookup_failed", "failed to load user", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}
