package evaluation

import "context"

type StoreAPI interface {
	InsertAssignments(ctx context.Context, periodID string, plans []Plan) (int, error)
	ListAssignments(ctx context.Context, periodID string) ([]Assignment, error)
	ListAssignmentsForEvaluator(ctx context.Context, periodID, evaluatorID string) ([]Assignment, error)
	GetAssignment(ctx context.Context, assignmentID string) (Assignment, error)
	AnswerCounts(ctx context.Context, assignmentIDs []string) (map[string]int, error)
	ListAnswers(ctx context.Context, assignmentID string) ([]StoredAnswer, error)
	UpsertAnswers(ctx context.Context, assignmentID string, answers []StoredAnswer) error
}
