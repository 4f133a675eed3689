package periods

import "errors"

var (
	ErrNoActivePeriod   = errors.New("no active evaluation period")
	ErrPeriodNotFound   = errors.New("evaluation period not found")
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrNameRequired     = errors.New("period name is required")
)
