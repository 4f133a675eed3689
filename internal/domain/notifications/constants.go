package notifications

const (
	TypeReviewPeriodOpened = "review_period_opened"
)
