package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	JobRegenerateAssignments = "regenerate_assignments"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type RunFunc func(context.Context) (any, error)

// Ledger records every run in job_runs.
type Ledger interface {
	Start(ctx context.Context, jobType string) (string, error)
	Finish(ctx context.Context, runID, status string, result []byte, errMsg string) error
}

type Service struct {
	ledger     Ledger
	interval   time.Duration
	regenerate RunFunc
	queue      chan job
}

type job struct {
	Type string
	Run  RunFunc
}

// New wires the scheduler. interval <= 0 disables scheduled regeneration;
// RunNow and Enqueue keep working.
func New(ledger Ledger, interval time.Duration, regenerate RunFunc) *Service {
	return &Service{
		ledger:     ledger,
		interval:   interval,
		regenerate: regenerate,
		queue:      make(chan job, 32),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.interval > 0 && s.regenerate != nil {
		go s.scheduleRegeneration(ctx, s.interval)
	}
}

func (s *Service) Enqueue(jobType string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.ledger.Start(ctx, j.Type)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, runErr := j.Run(ctx)
	status, errMsg := StatusCompleted, ""
	if runErr != nil {
		status, errMsg = StatusFailed, runErr.Error()
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if err := s.ledger.Finish(ctx, runID, status, detailsJSON, errMsg); err != nil {
			slog.Warn("job run update failed", "jobType", j.Type, "err", err)
		}
	}
	return details, runErr
}

func (s *Service) scheduleRegeneration(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobRegenerateAssignments, s.regenerate)
		}
	}
}

type PGLedger struct {
	DB *pgxpool.Pool
}

func NewLedger(db *pgxpool.Pool) *PGLedger {
	return &PGLedger{DB: db}
}

func (l *PGLedger) Start(ctx context.Context, jobType string) (string, error) {
	var runID string
	err := l.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, jobType, StatusRunning).Scan(&runID)
	return runID, err
}

func (l *PGLedger) Finish(ctx context.Context, runID, status string, result []byte, errMsg string) error {
	var errValue any
	if errMsg != "" {
		errValue = errMsg
	}
	_, err := l.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, result_json = $2, error = $3, finished_at = now()
    WHERE id = $4
  `, status, result, errValue, runID)
	return err
}
