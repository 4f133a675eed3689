package periods

import "context"

type StoreAPI interface {
	ListPeriods(ctx context.Context) ([]Period, error)
	GetPeriod(ctx context.Context, periodID string) (Period, error)
	CurrentPeriod(ctx context.Context) (Period, error)
	CreatePeriod(ctx context.Context, p NewPeriod) (string, error)
	SetActivePeriod(ctx context.Context, periodID string) error
}
