package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	Scores(ctx context.Context, filter ScoreFilter) ([]ScoreRow, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Scores returns answers received, optionally narrowed to one period and/or
// one evaluatee. Empty filter fields match everything.
func (s *Store) Scores(ctx context.Context, filter ScoreFilter) ([]ScoreRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ea.evaluatee_id::text, u.name, ep.id::text, ep.name, ep.start_date, c.category, ans.score, c.weight
    FROM evaluation_answers ans
    JOIN evaluation_assignments ea ON ea.id = ans.assignment_id
    JOIN evaluation_periods ep ON ep.id = ea.period_id
    JOIN competencies c ON c.id = ans.competency_id
    JOIN users u ON u.id = ea.evaluatee_id
    WHERE ($1 = '' OR ep.id::text = $1)
      AND ($2 = '' OR ea.evaluatee_id::text = $2)
    ORDER BY ep.start_date, ep.id, u.name, c.category
  `, filter.PeriodID, filter.EvaluateeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.EvaluateeID, &r.EvaluateeName, &r.PeriodID, &r.PeriodName, &r.PeriodStart, &r.Category, &r.Score, &r.Weight); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
