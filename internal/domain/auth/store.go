package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID       string
	Name     string
	Email    string
	Role     string
	Password string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, role, password_hash
    FROM users
    WHERE lower(email) = lower($1) AND is_active = true
  `, email).Scan(&out.ID, &out.Name, &out.Email, &out.Role, &out.Password)
	return out, err
}

func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, userID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND token_hash = $2", userID, tokenHash)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID, tokenHash string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions s
    JOIN users u ON u.id = s.user_id
    WHERE s.user_id = $1 AND s.token_hash = $2 AND s.expires_at > now() AND s.revoked_at IS NULL AND u.is_active = true
  `, userID, tokenHash).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
