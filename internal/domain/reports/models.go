package reports

import "time"

// ScoreRow is one stored answer joined with what aggregation needs.
type ScoreRow struct {
	EvaluateeID   string
	EvaluateeName string
	PeriodID      string
	PeriodName    string
	PeriodStart   time.Time
	Category      string
	Score         int
	Weight        float64
}

type ScoreFilter struct {
	PeriodID    string
	EvaluateeID string
}

type CategoryScore struct {
	Category        string  `json:"category"`
	Label           string  `json:"label"`
	Average         float64 `json:"average"`
	WeightedAverage float64 `json:"weightedAverage"`
	Count           int     `json:"count"`
}

type PeriodScore struct {
	PeriodID    string    `json:"periodId"`
	PeriodName  string    `json:"periodName"`
	PeriodStart time.Time `json:"periodStart"`
	CategoryScore
}

type PivotRow struct {
	EvaluateeID   string                   `json:"evaluateeId"`
	EvaluateeName string                   `json:"evaluateeName"`
	Scores        map[string]CategoryScore `json:"scores"`
}

type Pivot struct {
	Categories []string   `json:"categories"`
	Rows       []PivotRow `json:"rows"`
}
