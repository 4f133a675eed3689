package notifications

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateNotifications(ctx context.Context, userIDs []string, ntype, title, body string) error {
	if len(userIDs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, userID := range userIDs {
		batch.Queue(`
      INSERT INTO notifications (user_id, type, title, body)
      VALUES ($1,$2,$3,$4)
    `, userID, ntype, title, body)
	}
	return s.DB.SendBatch(ctx, batch).Close()
}

func (s *Store) ActiveRecipients(ctx context.Context) ([]Recipient, error) {
	rows, err := s.DB.Query(ctx, "SELECT id::text, email FROM users WHERE is_active = true ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.UserID, &r.Email); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, type, title, body, read_at, created_at
    FROM notifications
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountNotifications(ctx context.Context, userID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = $1", userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE user_id = $1 AND id::text = $2
  `, userID, notificationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
