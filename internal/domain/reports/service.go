package reports

import (
	"context"

	"eval360/internal/domain/periods"
)

type PeriodSource interface {
	CurrentPeriod(ctx context.Context) (periods.Period, error)
}

type Service struct {
	store   StoreAPI
	periods PeriodSource
}

func NewService(store StoreAPI, periods PeriodSource) *Service {
	return &Service{store: store, periods: periods}
}

// MyScores averages what userID received in the current period.
func (s *Service) MyScores(ctx context.Context, userID string) (periods.Period, []CategoryScore, error) {
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return periods.Period{}, nil, err
	}
	rows, err := s.store.Scores(ctx, ScoreFilter{PeriodID: period.ID, EvaluateeID: userID})
	if err != nil {
		return period, nil, err
	}
	return period, ByCategory(rows), nil
}

func (s *Service) History(ctx context.Context, userID string) ([]PeriodScore, error) {
	rows, err := s.store.Scores(ctx, ScoreFilter{EvaluateeID: userID})
	if err != nil {
		return nil, err
	}
	return Timeline(rows), nil
}

func (s *Service) OrgPivot(ctx context.Context) (periods.Period, Pivot, error) {
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return periods.Period{}, Pivot{}, err
	}
	rows, err := s.store.Scores(ctx, ScoreFilter{PeriodID: period.ID})
	if err != nil {
		return period, Pivot{}, err
	}
	return period, PivotByEvaluatee(rows), nil
}

// PersonalReport gathers everything the PDF report prints for one user.
func (s *Service) PersonalReport(ctx context.Context, userID, userName string) (Report, error) {
	period, scores, err := s.MyScores(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	history, err := s.History(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	return Report{UserName: userName, Period: period, Scores: scores, History: history}, nil
}
