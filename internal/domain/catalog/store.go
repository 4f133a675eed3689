package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	ListCompetencies(ctx context.Context, activeOnly bool) ([]Competency, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListCompetencies(ctx context.Context, activeOnly bool) ([]Competency, error) {
	query := `
    SELECT c.id, c.name, c.description, c.category, COALESCE(c.team_id::text, ''), COALESCE(t.name, ''),
           c.leadership_only, c.weight, c.active
    FROM competencies c
    LEFT JOIN teams t ON t.id = c.team_id
  `
	if activeOnly {
		query += " WHERE c.active = true"
	}
	query += " ORDER BY c.category, t.name NULLS FIRST, c.name"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Competency
	for rows.Next() {
		var c Competency
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.TeamID, &c.TeamName, &c.LeadershipOnly, &c.Weight, &c.Active); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
