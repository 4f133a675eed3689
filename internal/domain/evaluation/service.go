package evaluation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"eval360/internal/domain/catalog"
	"eval360/internal/domain/identity"
	"eval360/internal/domain/periods"
	"eval360/internal/platform/crypto"
)

type MemberSource interface {
	ActiveMembers(ctx context.Context) ([]identity.Member, error)
	MemberByID(ctx context.Context, userID string) (identity.Member, error)
}

type CompetencySource interface {
	ListCompetencies(ctx context.Context, activeOnly bool) ([]catalog.Competency, error)
}

type PeriodSource interface {
	CurrentPeriod(ctx context.Context) (periods.Period, error)
}

type Service struct {
	store   StoreAPI
	members MemberSource
	comps   CompetencySource
	periods PeriodSource
	crypto  *crypto.Service
}

func NewService(store StoreAPI, members MemberSource, comps CompetencySource, periods PeriodSource, crypto *crypto.Service) *Service {
	return &Service{store: store, members: members, comps: comps, periods: periods, crypto: crypto}
}

// GenerateAssignments is safe to run any number of times for a period.
func (s *Service) GenerateAssignments(ctx context.Context, periodID string) (GenerationResult, error) {
	members, err := s.members.ActiveMembers(ctx)
	if err != nil {
		return GenerationResult{}, err
	}
	plans := PlanAssignments(members)
	inserted, err := s.store.InsertAssignments(ctx, periodID, plans)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("insert assignments: %w", err)
	}
	return GenerationResult{PeriodID: periodID, Planned: len(plans), Inserted: inserted}, nil
}

func (s *Service) GenerateForCurrent(ctx context.Context) (GenerationResult, error) {
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return GenerationResult{}, err
	}
	return s.GenerateAssignments(ctx, period.ID)
}

// ListForEvaluator regenerates the current period's assignments before
// listing the evaluator's share of them.
func (s *Service) ListForEvaluator(ctx context.Context, evaluatorID string) (periods.Period, []AssignmentSummary, error) {
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return periods.Period{}, nil, err
	}
	if _, err := s.GenerateAssignments(ctx, period.ID); err != nil {
		return period, nil, err
	}
	summaries, err := s.summaries(ctx, period.ID, evaluatorID)
	if err != nil {
		return period, nil, err
	}
	return period, summaries, nil
}

func (s *Service) Progress(ctx context.Context, evaluatorID string) (Progress, error) {
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return Progress{}, err
	}
	summaries, err := s.summaries(ctx, period.ID, evaluatorID)
	if err != nil {
		return Progress{}, err
	}
	return ProgressOf(summaries), nil
}

func (s *Service) summaries(ctx context.Context, periodID, evaluatorID string) ([]AssignmentSummary, error) {
	assignments, err := s.store.ListAssignmentsForEvaluator(ctx, periodID, evaluatorID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []AssignmentSummary{}, nil
	}

	comps, err := s.comps.ListCompetencies(ctx, true)
	if err != nil {
		return nil, err
	}
	lookup, err := s.memberLookup(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
	}
	counts, err := s.store.AnswerCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]AssignmentSummary, 0, len(assignments))
	for _, a := range assignments {
		evaluator, err := lookup(a.EvaluatorID)
		if err != nil {
			return nil, err
		}
		evaluatee, err := lookup(a.EvaluateeID)
		if err != nil {
			return nil, err
		}
		eligible := len(EligibleCompetencies(a, evaluator, evaluatee, comps))
		answered := counts[a.ID]
		out = append(out, AssignmentSummary{
			Assignment:    a,
			EligibleCount: eligible,
			AnsweredCount: answered,
			Complete:      Complete(answered, eligible),
		})
	}
	return out, nil
}

// memberLookup serves active members from one query and falls back to a
// single lookup for anyone deactivated after assignments were generated.
func (s *Service) memberLookup(ctx context.Context) (func(string) (identity.Member, error), error) {
	members, err := s.members.ActiveMembers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]identity.Member, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}
	return func(id string) (identity.Member, error) {
		if m, ok := byID[id]; ok {
			return m, nil
		}
		m, err := s.members.MemberByID(ctx, id)
		if err != nil {
			return identity.Member{}, err
		}
		byID[id] = m
		return m, nil
	}, nil
}

func (s *Service) eligibleFor(ctx context.Context, a Assignment) ([]catalog.Competency, error) {
	evaluator, err := s.members.MemberByID(ctx, a.EvaluatorID)
	if err != nil {
		return nil, err
	}
	evaluatee, err := s.members.MemberByID(ctx, a.EvaluateeID)
	if err != nil {
		return nil, err
	}
	comps, err := s.comps.ListCompetencies(ctx, true)
	if err != nil {
		return nil, err
	}
	return EligibleCompetencies(a, evaluator, evaluatee, comps), nil
}

func (s *Service) ownedAssignment(ctx context.Context, evaluatorID, assignmentID string) (Assignment, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if a.EvaluatorID != evaluatorID {
		return Assignment{}, ErrNotEvaluator
	}
	return a, nil
}

func (s *Service) Detail(ctx context.Context, evaluatorID, assignmentID string) (AssignmentDetail, error) {
	a, err := s.ownedAssignment(ctx, evaluatorID, assignmentID)
	if err != nil {
		return AssignmentDetail{}, err
	}
	eligible, err := s.eligibleFor(ctx, a)
	if err != nil {
		return AssignmentDetail{}, err
	}
	stored, err := s.store.ListAnswers(ctx, a.ID)
	if err != nil {
		return AssignmentDetail{}, err
	}

	answers := make(map[string]Answer, len(stored))
	for _, sa := range stored {
		comment, err := s.crypto.OpenString(sa.CommentEnc)
		if err != nil {
			return AssignmentDetail{}, fmt.Errorf("open comment: %w", err)
		}
		answers[sa.CompetencyID] = Answer{CompetencyID: sa.CompetencyID, Score: sa.Score, Comment: comment, UpdatedAt: sa.UpdatedAt}
	}

	var groups []ItemGroup
	for _, g := range catalog.GroupByCategory(eligible) {
		group := ItemGroup{Category: g.Category, Label: g.Label}
		for _, c := range g.Competencies {
			item := Item{Competency: c}
			if ans, ok := answers[c.ID]; ok {
				ans := ans
				item.Answer = &ans
			}
			group.Items = append(group.Items, item)
		}
		groups = append(groups, group)
	}

	return AssignmentDetail{
		AssignmentSummary: AssignmentSummary{
			Assignment:    a,
			EligibleCount: len(eligible),
			AnsweredCount: len(stored),
			Complete:      Complete(len(stored), len(eligible)),
		},
		Groups: groups,
	}, nil
}

// SaveAnswers validates the whole batch before writing any of it.
func (s *Service) SaveAnswers(ctx context.Context, evaluatorID, assignmentID string, inputs []AnswerInput) (int, error) {
	if len(inputs) == 0 {
		return 0, ErrNoAnswers
	}
	a, err := s.ownedAssignment(ctx, evaluatorID, assignmentID)
	if err != nil {
		return 0, err
	}
	eligible, err := s.eligibleFor(ctx, a)
	if err != nil {
		return 0, err
	}
	allowed := make(map[string]struct{}, len(eligible))
	for _, c := range eligible {
		allowed[c.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(inputs))
	rows := make([]StoredAnswer, 0, len(inputs))
	for _, in := range inputs {
		if _, ok := allowed[in.CompetencyID]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrCompetencyNotEligible, in.CompetencyID)
		}
		if _, dup := seen[in.CompetencyID]; dup {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateCompetency, in.CompetencyID)
		}
		seen[in.CompetencyID] = struct{}{}
		if !ValidScore(in.Score) {
			return 0, ErrInvalidScore
		}
		enc, err := s.crypto.SealString(strings.TrimSpace(in.Comment))
		if err != nil {
			return 0, fmt.Errorf("seal comment: %w", err)
		}
		rows = append(rows, StoredAnswer{CompetencyID: in.CompetencyID, Score: in.Score, CommentEnc: enc})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CompetencyID < rows[j].CompetencyID })

	if err := s.store.UpsertAnswers(ctx, a.ID, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
