package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionPeriodCreate        = "period.create"
	ActionPeriodActivate      = "period.activate"
	ActionAssignmentsGenerate = "assignments.generate"
	ActionAnswersSave         = "answers.save"

	EntityPeriod     = "evaluation_period"
	EntityAssignment = "evaluation_assignment"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

// Recorder is what handlers depend on, so tests can swap in a fake.
type Recorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, after any) error
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, after any) error {
	var afterJSON []byte
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, nullIfEmpty(actorID), action, entityType, entityID, afterJSON, requestID, ip)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, request_id, ip, created_at"
	if includeDetails {
		selectCols += ", after_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
		if includeDetails {
			dest = append(dest, &evt.After)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.ActorUser != "" {
		args = append(args, filter.ActorUser)
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args))
	}
	return query, args
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
