package evaluation

import (
	"time"

	"eval360/internal/domain/catalog"
)

type Assignment struct {
	ID                string `json:"id"`
	PeriodID          string `json:"periodId"`
	EvaluatorID       string `json:"evaluatorId"`
	EvaluateeID       string `json:"evaluateeId"`
	EvaluateeName     string `json:"evaluateeName"`
	IncludeBehavioral bool   `json:"includeBehavioral"`
	IncludeTechnical  bool   `json:"includeTechnical"`
	IncludeObjectives bool   `json:"includeObjectives"`
}

// Plan is one assignment the generator wants to exist.
type Plan struct {
	EvaluatorID       string
	EvaluateeID       string
	IncludeBehavioral bool
	IncludeTechnical  bool
	IncludeObjectives bool
}

func (p Plan) Empty() bool {
	return !p.IncludeBehavioral && !p.IncludeTechnical && !p.IncludeObjectives
}

// StoredAnswer is an answer row as persisted; the comment is in the
// crypto service's storage format.
type StoredAnswer struct {
	CompetencyID string
	Score        int
	CommentEnc   []byte
	UpdatedAt    time.Time
}

type Answer struct {
	CompetencyID string    `json:"competencyId"`
	Score        int       `json:"score"`
	Comment      string    `json:"comment,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AnswerInput struct {
	CompetencyID string `json:"competencyId" validate:"required"`
	Score        int    `json:"score" validate:"min=1,max=5"`
	Comment      string `json:"comment" validate:"max=4000"`
}

type AssignmentSummary struct {
	Assignment
	EligibleCount int  `json:"eligibleCount"`
	AnsweredCount int  `json:"answeredCount"`
	Complete      bool `json:"complete"`
}

type Progress struct {
	Done  int     `json:"done"`
	Total int     `json:"total"`
	Ratio float64 `json:"ratio"`
}

type GenerationResult struct {
	PeriodID string `json:"periodId"`
	Planned  int    `json:"planned"`
	Inserted int    `json:"inserted"`
}

type Item struct {
	catalog.Competency
	Answer *Answer `json:"answer,omitempty"`
}

type ItemGroup struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Items    []Item `json:"items"`
}

type AssignmentDetail struct {
	AssignmentSummary
	Groups []ItemGroup `json:"groups"`
}
