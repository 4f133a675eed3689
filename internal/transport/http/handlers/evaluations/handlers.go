package evaluationshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/audit"
	"eval360/internal/domain/auth"
	"eval360/internal/domain/evaluation"
	"eval360/internal/domain/periods"
	"eval360/internal/platform/metrics"
	"eval360/internal/transport/http/api"
	"eval360/internal/transport/http/middleware"
	"eval360/internal/transport/http/shared"
)

type Evaluations interface {
	ListForEvaluator(ctx context.Context, evaluatorID string) (periods.Period, []evaluation.AssignmentSummary, error)
	Progress(ctx context.Context, evaluatorID string) (evaluation.Progress, error)
	Detail(ctx context.Context, evaluatorID, assignmentID string) (evaluation.AssignmentDetail, error)
	SaveAnswers(ctx context.Context, evaluatorID, assignmentID string, inputs []evaluation.AnswerInput) (int, error)
}

type Handler struct {
	Service Evaluations
	Audit   audit.Recorder
	Perms   middleware.PermissionStore
	Metrics *metrics.Collector
}

func NewHandler(service Evaluations, recorder audit.Recorder, perms middleware.PermissionStore, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: recorder, Perms: perms, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms))
		r.Get("/assignments", h.handleListAssignments)
		r.Get("/progress", h.handleProgress)
		r.Get("/assignments/{assignmentID}", h.handleGetAssignment)
		r.Put("/assignments/{assignmentID}/answers", h.handleSaveAnswers)
	})
}

type assignmentsResponse struct {
	Period      periods.Period                 `json:"period"`
	Assignments []evaluation.AssignmentSummary `json:"assignments"`
	Progress    evaluation.Progress            `json:"progress"`
}

type saveAnswersRequest struct {
	Answers []evaluation.AnswerInput `json:"answers"`
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	period, summaries, err := h.Service.ListForEvaluator(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, r, err, "assignments_list_failed", "failed to list assignments")
		return
	}
	if summaries == nil {
		summaries = []evaluation.AssignmentSummary{}
	}

	api.Success(w, assignmentsResponse{
		Period:      period,
		Assignments: summaries,
		Progress:    evaluation.ProgressOf(summaries),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	progress, err := h.Service.Progress(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, r, err, "progress_failed", "failed to compute progress")
		return
	}
	api.Success(w, progress, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	detail, err := h.Service.Detail(r.Context(), user.UserID, chi.URLParam(r, "assignmentID"))
	if err != nil {
		h.fail(w, r, err, "assignment_load_failed", "failed to load assignment")
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveAnswers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload saveAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	if len(payload.Answers) == 0 {
		validator.Add("answers", "must contain at least one answer")
	}
	for i, answer := range payload.Answers {
		validator.Struct(fmt.Sprintf("answers[%d]", i), answer)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	saved, err := h.Service.SaveAnswers(r.Context(), user.UserID, assignmentID, payload.Answers)
	if err != nil {
		h.fail(w, r, err, "answers_save_failed", "failed to save answers")
		return
	}
	h.Metrics.AnswersSaved(saved)

	if h.Audit != nil {
		after := map[string]any{"saved": saved, "competencies": competencyIDs(payload.Answers)}
		if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionAnswersSave, audit.EntityAssignment, assignmentID, middleware.GetRequestID(r.Context()), middleware.GetClientIP(r.Context()), after); err != nil {
			slog.Warn("audit record failed", "action", audit.ActionAnswersSave, "err", err)
		}
	}

	detail, err := h.Service.Detail(r.Context(), user.UserID, assignmentID)
	if err != nil {
		slog.Warn("reload assignment after save failed", "assignmentId", assignmentID, "err", err)
		api.Success(w, map[string]int{"saved": saved}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, periods.ErrNoActivePeriod):
		api.Fail(w, http.StatusConflict, "no_active_period", "no active evaluation period", reqID)
	case errors.Is(err, evaluation.ErrAssignmentNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", reqID)
	case errors.Is(err, evaluation.ErrNotEvaluator):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, evaluation.ErrCompetencyNotEligible),
		errors.Is(err, evaluation.ErrDuplicateCompetency),
		errors.Is(err, evaluation.ErrInvalidScore),
		errors.Is(err, evaluation.ErrNoAnswers):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_answers", err.Error(), reqID)
	default:
		slog.Error(message, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}

func competencyIDs(answers []evaluation.AnswerInput) []string {
	ids := make([]string, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.CompetencyID)
	}
	return ids
}
