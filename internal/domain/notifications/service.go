package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store  StoreAPI
	Mailer Mailer
	From   string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, Mailer: mailer, From: from}
}

// NotifyPeriodOpened tells every active user a period is open. Mail
// failures are logged and do not fail the call.
func (s *Service) NotifyPeriodOpened(ctx context.Context, periodName string) (int, error) {
	recipients, err := s.store.ActiveRecipients(ctx)
	if err != nil {
		return 0, err
	}
	title := fmt.Sprintf("Período de avaliação aberto: %s", periodName)
	body := fmt.Sprintf("O período \"%s\" está ativo. Já pode preencher as suas avaliações.", periodName)

	ids := make([]string, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.UserID)
	}
	if err := s.store.CreateNotifications(ctx, ids, TypeReviewPeriodOpened, title, body); err != nil {
		return 0, err
	}

	if s.Mailer != nil {
		for _, r := range recipients {
			if strings.TrimSpace(r.Email) == "" {
				continue
			}
			if err := s.Mailer.Send(ctx, s.From, r.Email, title, body); err != nil {
				slog.Warn("notification email send failed", "userId", r.UserID, "err", err)
			}
		}
	}
	return len(ids), nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
