package periodshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/audit"
	"eval360/internal/domain/auth"
	"eval360/internal/domain/evaluation"
	"eval360/internal/domain/periods"
	"eval360/internal/platform/jobs"
	"eval360/internal/platform/metrics"
	"eval360/internal/transport/http/api"
	"eval360/internal/transport/http/middleware"
	"eval360/internal/transport/http/shared"
)

type Periods interface {
	List(ctx context.Context) ([]periods.Period, error)
	Get(ctx context.Context, periodID string) (periods.Period, error)
	Current(ctx context.Context) (periods.Period, error)
	Create(ctx context.Context, p periods.NewPeriod) (string, error)
	Activate(ctx context.Context, periodID string) error
}

type Generator interface {
	GenerateAssignments(ctx context.Context, periodID string) (evaluation.GenerationResult, error)
}

type Notifier interface {
	NotifyPeriodOpened(ctx context.Context, periodName string) (int, error)
}

// Runner records a job run around fn; jobs.Service satisfies it.
type Runner interface {
	RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error)
}

type Handler struct {
	Periods   Periods
	Generator Generator
	Notifier  Notifier
	Jobs      Runner
	Audit     audit.Recorder
	Perms     middleware.PermissionStore
	Metrics   *metrics.Collector
	now       func() time.Time
}

func NewHandler(p Periods, gen Generator, notifier Notifier, runner Runner, recorder audit.Recorder, perms middleware.PermissionStore, collector *metrics.Collector) *Handler {
	return &Handler{
		Periods:   p,
		Generator: gen,
		Notifier:  notifier,
		Jobs:      runner,
		Audit:     recorder,
		Perms:     perms,
		Metrics:   collector,
		now:       time.Now,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/periods", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPeriodsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPeriodsRead, h.Perms)).Get("/current", h.handleCurrent)
		r.With(middleware.RequirePermission(auth.PermPeriodsManage, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermPeriodsManage, h.Perms)).Post("/{periodID}/activate", h.handleActivate)
		r.With(middleware.RequirePermission(auth.PermPeriodsManage, h.Perms)).Post("/{periodID}/assignments/generate", h.handleGenerate)
	})
}

type createPeriodRequest struct {
	Name       string `json:"name" validate:"max=120"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	MakeActive *bool  `json:"makeActive"`
}

type periodResponse struct {
	Period     periods.Period               `json:"period"`
	Generation *evaluation.GenerationResult `json:"generation,omitempty"`
	Notified   int                          `json:"notified"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Periods.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "periods_list_failed", "failed to list periods", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	current, err := h.Periods.Current(r.Context())
	if err != nil {
		if errors.Is(err, periods.ErrNoActivePeriod) {
			api.Fail(w, http.StatusConflict, "no_active_period", "no active evaluation period", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "period_lookup_failed", "failed to load current period", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, current, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Struct("", payload)
	start, startOK := validator.Date("startDate", payload.StartDate)
	end, endOK := validator.Date("endDate", payload.EndDate)
	if startOK && endOK {
		validator.DateOrder("startDate", start, "endDate", end)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = periods.DefaultName(h.now())
	}
	makeActive := payload.MakeActive == nil || *payload.MakeActive

	periodID, err := h.Periods.Create(r.Context(), periods.NewPeriod{
		Name:       name,
		StartDate:  start,
		EndDate:    end,
		MakeActive: makeActive,
	})
	if err != nil {
		if errors.Is(err, periods.ErrInvalidDateRange) || errors.Is(err, periods.ErrNameRequired) {
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "period_create_failed", "failed to create period", middleware.GetRequestID(r.Context()))
		return
	}

	resp := periodResponse{}
	if gen, err := h.generate(r.Context(), periodID); err != nil {
		slog.Warn("assignment generation after period create failed", "periodId", periodID, "err", err)
	} else {
		resp.Generation = &gen
	}
	if makeActive {
		resp.Notified = h.notify(r.Context(), name)
	}

	created, err := h.Periods.Get(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_lookup_failed", "failed to load period", middleware.GetRequestID(r.Context()))
		return
	}
	resp.Period = created

	h.record(r, user.UserID, audit.ActionPeriodCreate, periodID, resp)
	api.Created(w, resp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if err := h.Periods.Activate(r.Context(), periodID); err != nil {
		if errors.Is(err, periods.ErrPeriodNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "period not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "period_activate_failed", "failed to activate period", middleware.GetRequestID(r.Context()))
		return
	}

	resp := periodResponse{}
	if gen, err := h.generate(r.Context(), periodID); err != nil {
		slog.Warn("assignment generation after activation failed", "periodId", periodID, "err", err)
	} else {
		resp.Generation = &gen
	}

	activated, err := h.Periods.Get(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_lookup_failed", "failed to load period", middleware.GetRequestID(r.Context()))
		return
	}
	resp.Period = activated
	resp.Notified = h.notify(r.Context(), activated.Name)

	h.record(r, user.UserID, audit.ActionPeriodActivate, periodID, resp)
	api.Success(w, resp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if _, err := h.Periods.Get(r.Context(), periodID); err != nil {
		if errors.Is(err, periods.ErrPeriodNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "period not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "period_lookup_failed", "failed to load period", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.generate(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "generation_failed", "failed to generate assignments", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user.UserID, audit.ActionAssignmentsGenerate, periodID, result)
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

// generate runs through the job ledger when one is wired so manual runs
// show up next to scheduled ones.
func (h *Handler) generate(ctx context.Context, periodID string) (evaluation.GenerationResult, error) {
	run := func(ctx context.Context) (any, error) {
		return h.Generator.GenerateAssignments(ctx, periodID)
	}
	var (
		out any
		err error
	)
	if h.Jobs != nil {
		out, err = h.Jobs.RunNow(ctx, jobs.JobRegenerateAssignments, run)
	} else {
		out, err = run(ctx)
	}
	if err != nil {
		return evaluation.GenerationResult{}, err
	}
	result, _ := out.(evaluation.GenerationResult)
	h.Metrics.AssignmentsGenerated(result.Inserted)
	return result, nil
}

func (h *Handler) notify(ctx context.Context, periodName string) int {
	if h.Notifier == nil {
		return 0
	}
	sent, err := h.Notifier.NotifyPeriodOpened(ctx, periodName)
	if err != nil {
		slog.Warn("period opened notification failed", "period", periodName, "err", err)
	}
	return sent
}

func (h *Handler) record(r *http.Request, actorID, action, periodID string, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, audit.EntityPeriod, periodID, middleware.GetRequestID(r.Context()), middleware.GetClientIP(r.Context()), after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
