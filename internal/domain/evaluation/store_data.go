package evaluation

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

const assignmentColumns = `
    ea.id, ea.period_id, ea.evaluator_id, ea.evaluatee_id, u.name,
    ea.include_behavioral, ea.include_technical, ea.include_objectives
`

// InsertAssignments never touches rows that already exist, so edits made
// directly in the database survive regeneration.
func (s *Store) InsertAssignments(ctx context.Context, periodID string, plans []Plan) (int, error) {
	if len(plans) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, p := range plans {
		batch.Queue(`
      INSERT INTO evaluation_assignments (period_id, evaluator_id, evaluatee_id, include_behavioral, include_technical, include_objectives)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (period_id, evaluator_id, evaluatee_id) DO NOTHING
    `, periodID, p.EvaluatorID, p.EvaluateeID, p.IncludeBehavioral, p.IncludeTechnical, p.IncludeObjectives)
	}

	results := s.DB.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range plans {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *Store) ListAssignments(ctx context.Context, periodID string) ([]Assignment, error) {
	return s.queryAssignments(ctx, `
    SELECT `+assignmentColumns+`
    FROM evaluation_assignments ea
    JOIN users u ON u.id = ea.evaluatee_id
    WHERE ea.period_id = $1
    ORDER BY ea.evaluator_id, u.name
  `, periodID)
}

func (s *Store) ListAssignmentsForEvaluator(ctx context.Context, periodID, evaluatorID string) ([]Assignment, error) {
	return s.queryAssignments(ctx, `
    SELECT `+assignmentColumns+`
    FROM evaluation_assignments ea
    JOIN users u ON u.id = ea.evaluatee_id
    WHERE ea.period_id = $1 AND ea.evaluator_id = $2
    ORDER BY u.name
  `, periodID, evaluatorID)
}

func (s *Store) queryAssignments(ctx context.Context, query string, args ...any) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.PeriodID, &a.EvaluatorID, &a.EvaluateeID, &a.EvaluateeName,
			&a.IncludeBehavioral, &a.IncludeTechnical, &a.IncludeObjectives); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAssignment(ctx context.Context, assignmentID string) (Assignment, error) {
	var a Assignment
	err := s.DB.QueryRow(ctx, `
    SELECT `+assignmentColumns+`
    FROM evaluation_assignments ea
    JOIN users u ON u.id = ea.evaluatee_id
    WHERE ea.id = $1
  `, assignmentID).Scan(&a.ID, &a.PeriodID, &a.EvaluatorID, &a.EvaluateeID, &a.EvaluateeName,
		&a.IncludeBehavioral, &a.IncludeTechnical, &a.IncludeObjectives)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, ErrAssignmentNotFound
	}
	return a, err
}

func (s *Store) AnswerCounts(ctx context.Context, assignmentIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return counts, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT assignment_id::text, COUNT(1)
    FROM evaluation_answers
    WHERE assignment_id::text = ANY($1)
    GROUP BY assignment_id
  `, assignmentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (s *Store) ListAnswers(ctx context.Context, assignmentID string) ([]StoredAnswer, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT competency_id::text, score, comment_enc, updated_at
    FROM evaluation_answers
    WHERE assignment_id = $1
  `, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredAnswer
	for rows.Next() {
		var a StoredAnswer
		if err := rows.Scan(&a.CompetencyID, &a.Score, &a.CommentEnc, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertAnswers writes the whole batch in one transaction; a later save for
// the same competency overwrites score and comment.
func (s *Store) UpsertAnswers(ctx context.Context, assignmentID string, answers []StoredAnswer) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, a := range answers {
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluation_answers (assignment_id, competency_id, score, comment_enc)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (assignment_id, competency_id)
      DO UPDATE SET score = EXCLUDED.score, comment_enc = EXCLUDED.comment_enc, updated_at = now()
    `, assignmentID, a.CompetencyID, a.Score, a.CommentEnc); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
