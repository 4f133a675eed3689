package periods

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Period, error) {
	return s.store.ListPeriods(ctx)
}

func (s *Service) Get(ctx context.Context, periodID string) (Period, error) {
	return s.store.GetPeriod(ctx, periodID)
}

// Current returns ErrNoActivePeriod when nothing is active.
func (s *Service) Current(ctx context.Context) (Period, error) {
	return s.store.CurrentPeriod(ctx)
}

func (s *Service) Create(ctx context.Context, p NewPeriod) (string, error) {
	if err := ValidateNew(p); err != nil {
		return "", err
	}
	p.Name = strings.TrimSpace(p.Name)
	return s.store.CreatePeriod(ctx, p)
}

func (s *Service) Activate(ctx context.Context, periodID string) error {
	if _, err := s.store.GetPeriod(ctx, periodID); err != nil {
		return err
	}
	return s.store.SetActivePeriod(ctx, periodID)
}

func ValidateNew(p NewPeriod) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if dateOnly(p.EndDate).Before(dateOnly(p.StartDate)) {
		return ErrInvalidDateRange
	}
	return nil
}

// DefaultName is the name the seed gives the first period of a year.
func DefaultName(day time.Time) string {
	return "Avaliação " + day.Format("2006")
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
