package evaluation

import "errors"

var (
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrNotEvaluator          = errors.New("only the evaluator can access this assignment")
	ErrCompetencyNotEligible = errors.New("competency is not eligible for this assignment")
	ErrInvalidScore          = errors.New("score must be between 1 and 5")
	ErrNoAnswers             = errors.New("at least one answer is required")
	ErrDuplicateCompetency   = errors.New("competency answered more than once in the same request")
)
