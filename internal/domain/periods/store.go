package periods

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListPeriods(ctx context.Context) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ep.id, ep.name, ep.start_date, ep.end_date, ep.is_active,
           (SELECT COUNT(1) FROM evaluation_assignments ea WHERE ea.period_id = ep.id)
    FROM evaluation_periods ep
    ORDER BY ep.start_date DESC, ep.created_at DESC, ep.id DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Active, &p.AssignmentCnt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    SELECT ep.id, ep.name, ep.start_date, ep.end_date, ep.is_active,
           (SELECT COUNT(1) FROM evaluation_assignments ea WHERE ea.period_id = ep.id)
    FROM evaluation_periods ep
    WHERE ep.id = $1
  `, periodID).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Active, &p.AssignmentCnt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	return p, err
}

func (s *Store) CurrentPeriod(ctx context.Context) (Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    SELECT ep.id, ep.name, ep.start_date, ep.end_date, ep.is_active,
           (SELECT COUNT(1) FROM evaluation_assignments ea WHERE ea.period_id = ep.id)
    FROM evaluation_periods ep
    WHERE ep.is_active = true
    ORDER BY ep.start_date DESC, ep.created_at DESC, ep.id DESC
    LIMIT 1
  `).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Active, &p.AssignmentCnt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrNoActivePeriod
	}
	return p, err
}

// CreatePeriod clears every active flag first when the new period becomes
// the active one, in the same transaction as the insert.
func (s *Store) CreatePeriod(ctx context.Context, p NewPeriod) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if p.MakeActive {
		if _, err := tx.Exec(ctx, "UPDATE evaluation_periods SET is_active = false WHERE is_active = true"); err != nil {
			return "", err
		}
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO evaluation_periods (name, start_date, end_date, is_active)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, p.Name, p.StartDate, p.EndDate, p.MakeActive).Scan(&id); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) SetActivePeriod(ctx context.Context, periodID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "UPDATE evaluation_periods SET is_active = false WHERE is_active = true"); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "UPDATE evaluation_periods SET is_active = true WHERE id = $1", periodID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return tx.Commit(ctx)
}
