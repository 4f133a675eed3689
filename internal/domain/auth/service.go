package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Service struct {
	store      StoreAPI
	secret     string
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(store StoreAPI, secret string, sessionTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, sessionTTL: sessionTTL, now: time.Now}
}

// Login never distinguishes an unknown email from a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	expires := s.now().Add(s.sessionTTL)
	if err := s.store.CreateSession(ctx, user.ID, HashToken(sessionID), expires); err != nil {
		return LoginResult{}, err
	}

	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Role: user.Role, SessionID: sessionID}, s.sessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	return LoginResult{
		Token:     token,
		ExpiresAt: expires,
		User:      Profile{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	if user.SessionID == "" {
		return nil
	}
	return s.store.RevokeSession(ctx, user.UserID, HashToken(user.SessionID))
}

// SessionActive satisfies the session check used by the Auth middleware.
func (s *Service) SessionActive(ctx context.Context, userID, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.store.SessionValid(ctx, userID, HashToken(sessionID))
}
