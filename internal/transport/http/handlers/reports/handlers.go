package reportshandler

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/auth"
	"eval360/internal/domain/catalog"
	"eval360/internal/domain/identity"
	"eval360/internal/domain/periods"
	"eval360/internal/domain/reports"
	"eval360/internal/transport/http/api"
	"eval360/internal/transport/http/middleware"
)

type Scores interface {
	MyScores(ctx context.Context, userID string) (periods.Period, []reports.CategoryScore, error)
	History(ctx context.Context, userID string) ([]reports.PeriodScore, error)
	OrgPivot(ctx context.Context) (periods.Period, reports.Pivot, error)
	PersonalReport(ctx context.Context, userID, userName string) (reports.Report, error)
}

type Users interface {
	GetUser(ctx context.Context, userID string) (identity.User, error)
}

type Handler struct {
	Scores Scores
	Users  Users
	Perms  middleware.PermissionStore
}

func NewHandler(scores Scores, users Users, perms middleware.PermissionStore) *Handler {
	return &Handler{Scores: scores, Users: users, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/results", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermResultsRead, h.Perms))
		r.Get("/me", h.handleMyResults)
		r.Get("/me/history", h.handleMyHistory)
		r.Get("/me/report.pdf", h.handleMyReport)
	})
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermDashboardRead, h.Perms))
		r.Get("/scores", h.handleOrgScores)
		r.Get("/scores.csv", h.handleOrgScoresCSV)
	})
}

type myResultsResponse struct {
	Period periods.Period          `json:"period"`
	Scores []reports.CategoryScore `json:"scores"`
}

type orgScoresResponse struct {
	Period periods.Period `json:"period"`
	reports.Pivot
}

func (h *Handler) handleMyResults(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	period, scores, err := h.Scores.MyScores(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, r, err, "results_failed", "failed to load results")
		return
	}
	if scores == nil {
		scores = []reports.CategoryScore{}
	}
	api.Success(w, myResultsResponse{Period: period, Scores: scores}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	history, err := h.Scores.History(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, r, err, "history_failed", "failed to load results history")
		return
	}
	if history == nil {
		history = []reports.PeriodScore{}
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	profile, err := h.Users.GetUser(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, r, err, "report_failed", "failed to build report")
		return
	}
	report, err := h.Scores.PersonalReport(r.Context(), user.UserID, profile.Name)
	if err != nil {
		h.fail(w, r, err, "report_failed", "failed to build report")
		return
	}

	var buf bytes.Buffer
	if err := reports.WritePDF(&buf, report); err != nil {
		slog.Error("render results pdf failed", "userId", user.UserID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, "application/pdf", "resultados.pdf", buf.Bytes())
}

func (h *Handler) handleOrgScores(w http.ResponseWriter, r *http.Request) {
	period, pivot, err := h.Scores.OrgPivot(r.Context())
	if err != nil {
		h.fail(w, r, err, "dashboard_failed", "failed to load dashboard")
		return
	}
	if pivot.Rows == nil {
		pivot.Rows = []reports.PivotRow{}
	}
	api.Success(w, orgScoresResponse{Period: period, Pivot: pivot}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOrgScoresCSV(w http.ResponseWriter, r *http.Request) {
	_, pivot, err := h.Scores.OrgPivot(r.Context())
	if err != nil {
		h.fail(w, r, err, "dashboard_failed", "failed to load dashboard")
		return
	}

	body, err := pivotCSV(pivot)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_export_failed", "failed to export dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, "text/csv", "dashboard-scores.csv", body)
}

// pivotCSV writes one row per evaluatee with a column per category; a
// category the person has no answers in stays empty.
func pivotCSV(pivot reports.Pivot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Colaborador"}
	for _, c := range pivot.Categories {
		label := catalog.CategoryLabels[c]
		if label == "" {
			label = c
		}
		header = append(header, label)
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, row := range pivot.Rows {
		record := []string{row.EvaluateeName}
		for _, c := range pivot.Categories {
			score, ok := row.Scores[c]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(score.Average, 'f', 2, 64))
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, periods.ErrNoActivePeriod):
		api.Fail(w, http.StatusConflict, "no_active_period", "no active evaluation period", reqID)
	case errors.Is(err, identity.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
	default:
		slog.Error(message, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
