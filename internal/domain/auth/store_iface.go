package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
}
