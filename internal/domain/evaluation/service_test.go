package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eval360/internal/domain/identity"
	"eval360/internal/domain/periods"
	"eval360/internal/platform/crypto"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestService(t *testing.T, key string) (*Service, *memStore) {
	t.Helper()
	enc, err := crypto.New(key)
	require.NoError(t, err)
	store := newMemStore(fixtureNames())
	svc := NewService(store, memMembers{active: fixtureMembers()}, fixtureCatalog(),
		fixedPeriod{period: periods.Period{ID: "p1", Name: "Avaliação 2026", Active: true}}, enc)
	return svc, store
}

func assignmentFor(t *testing.T, store *memStore, evaluator, evaluatee string) Assignment {
	t.Helper()
	a := store.find("p1", evaluator, evaluatee)
	require.NotNil(t, a, "%s -> %s", evaluator, evaluatee)
	return *a
}

func TestGenerateAssignmentsIsIdempotent(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()

	first, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 16, first.Planned)
	assert.Equal(t, 16, first.Inserted)
	before, _ := store.ListAssignments(ctx, "p1")

	second, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 16, second.Planned)
	assert.Zero(t, second.Inserted)
	after, _ := store.ListAssignments(ctx, "p1")
	assert.Equal(t, before, after)
}

func TestGenerateAssignmentsKeepsExistingRows(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()

	_, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	edited := store.find("p1", "ana", "pacheco")
	edited.IncludeTechnical = true

	_, err = svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, assignmentFor(t, store, "ana", "pacheco").IncludeTechnical)
}

func TestGenerateForCurrentWithoutActivePeriod(t *testing.T) {
	store := newMemStore(fixtureNames())
	svc := NewService(store, memMembers{active: fixtureMembers()}, fixtureCatalog(), fixedPeriod{err: periods.ErrNoActivePeriod}, nil)

	_, err := svc.GenerateForCurrent(context.Background())
	assert.ErrorIs(t, err, periods.ErrNoActivePeriod)
	assert.Empty(t, store.assignments)
}

func TestListForEvaluatorRegeneratesAndCounts(t *testing.T) {
	svc, _ := newTestService(t, "")
	period, items, err := svc.ListForEvaluator(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, "p1", period.ID)
	require.Len(t, items, 4)

	eligible := map[string]int{}
	for _, it := range items {
		eligible[it.EvaluateeID] = it.EligibleCount
		assert.False(t, it.Complete)
	}
	assert.Equal(t, 6, eligible["bruno"])
	assert.Equal(t, 1, eligible["natacha"])
	assert.Equal(t, 1, eligible["pacheco"])
	assert.Equal(t, 6, eligible["ana"])
}

func TestProgressTwoOfThree(t *testing.T) {
	members := []identity.Member{
		{UserID: "ana", Role: identity.RoleResponsavel, TeamIDs: []string{teamAdmin}},
		{UserID: "bruno", Role: identity.RoleResponsavel, TeamIDs: []string{teamAdmin, teamProjects}},
		{UserID: "rita", Role: identity.RoleMembro, TeamIDs: []string{teamAdmin}},
	}
	store := newMemStore(map[string]string{"ana": "Ana", "bruno": "Bruno", "rita": "Rita"})
	svc := NewService(store, memMembers{active: members}, fixtureCatalog(), fixedPeriod{period: periods.Period{ID: "p1"}}, nil)
	ctx := context.Background()

	_, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)

	full := []AnswerInput{
		{CompetencyID: "b-com", Score: 4}, {CompetencyID: "b-lead", Score: 5},
		{CompetencyID: "t-adm-1", Score: 3}, {CompetencyID: "t-adm-2", Score: 3},
		{CompetencyID: "o-1", Score: 4}, {CompetencyID: "o-2", Score: 2},
	}
	_, err = svc.SaveAnswers(ctx, "ana", assignmentFor(t, store, "ana", "ana").ID, full)
	require.NoError(t, err)
	_, err = svc.SaveAnswers(ctx, "ana", assignmentFor(t, store, "ana", "bruno").ID, full)
	require.NoError(t, err)
	partial := []AnswerInput{{CompetencyID: "b-com", Score: 3}, {CompetencyID: "o-1", Score: 3}}
	_, err = svc.SaveAnswers(ctx, "ana", assignmentFor(t, store, "ana", "rita").ID, partial)
	require.NoError(t, err)

	progress, err := svc.Progress(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Done)
	assert.Equal(t, 3, progress.Total)
}

func TestSaveAnswersOverwrites(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()
	_, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	a := assignmentFor(t, store, "ana", "bruno")

	_, err = svc.SaveAnswers(ctx, "ana", a.ID, []AnswerInput{{CompetencyID: "b-com", Score: 2, Comment: "primeira"}})
	require.NoError(t, err)
	_, err = svc.SaveAnswers(ctx, "ana", a.ID, []AnswerInput{{CompetencyID: "b-com", Score: 5, Comment: "  segunda  "}})
	require.NoError(t, err)

	require.Len(t, store.answers[a.ID], 1)
	detail, err := svc.Detail(ctx, "ana", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.AnsweredCount)

	var found *Answer
	for _, g := range detail.Groups {
		for _, it := range g.Items {
			if it.ID == "b-com" {
				found = it.Answer
			}
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 5, found.Score)
	assert.Equal(t, "segunda", found.Comment)
}

func TestSaveAnswersEmptyCommentStoredAsNull(t *testing.T) {
	svc, store := newTestService(t, testKey)
	ctx := context.Background()
	_, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	a := assignmentFor(t, store, "ana", "bruno")

	_, err = svc.SaveAnswers(ctx, "ana", a.ID, []AnswerInput{{CompetencyID: "o-1", Score: 4, Comment: "   "}})
	require.NoError(t, err)
	assert.Nil(t, store.answers[a.ID]["o-1"].CommentEnc)
}

func TestSaveAnswersSealsComments(t *testing.T) {
	svc, store := newTestService(t, testKey)
	ctx := context.Background()
	_, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	a := assignmentFor(t, store, "ana", "bruno")

	_, err = svc.SaveAnswers(ctx, "ana", a.ID, []AnswerInput{{CompetencyID: "o-1", Score: 4, Comment: "entrega sempre a tempo"}})
	require.NoError(t, err)
	raw := store.answers[a.ID]["o-1"].CommentEnc
	assert.NotContains(t, string(raw), "entrega")

	detail, err := svc.Detail(ctx, "ana", a.ID)
	require.NoError(t, err)
	var comment string
	for _, g := range detail.Groups {
		for _, it := range g.Items {
			if it.Answer != nil {
				comment = it.Answer.Comment
			}
		}
	}
	assert.Equal(t, "entrega sempre a tempo", comment)
}

func TestSaveAnswersRejections(t *testing.T) {
	tests := []struct {
		name      string
		evaluator string
		evaluatee string
		asUser    string
		inputs    []AnswerInput
		wantErr   error
	}{
		{"someone else's assignment", "ana", "bruno", "bruno", []AnswerInput{{CompetencyID: "b-com", Score: 3}}, ErrNotEvaluator},
		{"competency outside shared teams", "ana", "bruno", "ana", []AnswerInput{{CompetencyID: "t-proj-1", Score: 3}}, ErrCompetencyNotEligible},
		{"leadership competency for intern", "bruno", "pacheco", "bruno", []AnswerInput{{CompetencyID: "b-lead", Score: 3}}, ErrCompetencyNotEligible},
		{"score too high", "ana", "bruno", "ana", []AnswerInput{{CompetencyID: "b-com", Score: 6}}, ErrInvalidScore},
		{"score too low", "ana", "bruno", "ana", []AnswerInput{{CompetencyID: "b-com", Score: 0}}, ErrInvalidScore},
		{"duplicate competency", "ana", "bruno", "ana", []AnswerInput{{CompetencyID: "b-com", Score: 3}, {CompetencyID: "b-com", Score: 4}}, ErrDuplicateCompetency},
		{"empty batch", "ana", "bruno", "ana", nil, ErrNoAnswers},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService(t, "")
			ctx := context.Background()
			_, err := svc.GenerateAssignments(ctx, "p1")
			require.NoError(t, err)
			a := assignmentFor(t, store, tc.evaluator, tc.evaluatee)

			_, err = svc.SaveAnswers(ctx, tc.asUser, a.ID, tc.inputs)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Zero(t, store.upserts)
		})
	}
}

func TestSaveAnswersRejectsWholeBatchOnOneBadScore(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()
	_, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)
	a := assignmentFor(t, store, "ana", "bruno")

	_, err = svc.SaveAnswers(ctx, "ana", a.ID, []AnswerInput{{CompetencyID: "b-com", Score: 4}, {CompetencyID: "o-1", Score: 9}})
	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.Empty(t, store.answers[a.ID])
}

func TestDetailGroupsByCategory(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()
	_, err := svc.GenerateAssignments(ctx, "p1")
	require.NoError(t, err)

	detail, err := svc.Detail(ctx, "ana", assignmentFor(t, store, "ana", "bruno").ID)
	require.NoError(t, err)
	require.Len(t, detail.Groups, 3)
	assert.Equal(t, "BEHAVIORAL", detail.Groups[0].Category)
	assert.Equal(t, "TECHNICAL", detail.Groups[1].Category)
	assert.Equal(t, "OBJECTIVES", detail.Groups[2].Category)
	assert.Equal(t, 6, detail.EligibleCount)

	_, err = svc.Detail(ctx, "natacha", assignmentFor(t, store, "ana", "bruno").ID)
	assert.ErrorIs(t, err, ErrNotEvaluator)

	_, err = svc.Detail(ctx, "ana", "missing")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}
