package evaluation

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"eval360/internal/domain/catalog"
	"eval360/internal/domain/identity"
	"eval360/internal/domain/periods"
)

type memStore struct {
	assignments []Assignment
	answers     map[string]map[string]StoredAnswer
	names       map[string]string
	upserts     int
}

func newMemStore(names map[string]string) *memStore {
	return &memStore{answers: map[string]map[string]StoredAnswer{}, names: names}
}

func (m *memStore) InsertAssignments(_ context.Context, periodID string, plans []Plan) (int, error) {
	inserted := 0
	for _, p := range plans {
		if m.find(periodID, p.EvaluatorID, p.EvaluateeID) != nil {
			continue
		}
		m.assignments = append(m.assignments, Assignment{
			ID:                fmt.Sprintf("a%d", len(m.assignments)+1),
			PeriodID:          periodID,
			EvaluatorID:       p.EvaluatorID,
			EvaluateeID:       p.EvaluateeID,
			EvaluateeName:     m.names[p.EvaluateeID],
			IncludeBehavioral: p.IncludeBehavioral,
			IncludeTechnical:  p.IncludeTechnical,
			IncludeObjectives: p.IncludeObjectives,
		})
		inserted++
	}
	return inserted, nil
}

func (m *memStore) find(periodID, evaluatorID, evaluateeID string) *Assignment {
	for i := range m.assignments {
		a := &m.assignments[i]
		if a.PeriodID == periodID && a.EvaluatorID == evaluatorID && a.EvaluateeID == evaluateeID {
			return a
		}
	}
	return nil
}

func (m *memStore) ListAssignments(_ context.Context, periodID string) ([]Assignment, error) {
	var out []Assignment
	for _, a := range m.assignments {
		if a.PeriodID == periodID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListAssignmentsForEvaluator(_ context.Context, periodID, evaluatorID string) ([]Assignment, error) {
	var out []Assignment
	for _, a := range m.assignments {
		if a.PeriodID == periodID && a.EvaluatorID == evaluatorID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EvaluateeName < out[j].EvaluateeName })
	return out, nil
}

func (m *memStore) GetAssignment(_ context.Context, assignmentID string) (Assignment, error) {
	for _, a := range m.assignments {
		if a.ID == assignmentID {
			return a, nil
		}
	}
	return Assignment{}, ErrAssignmentNotFound
}

func (m *memStore) AnswerCounts(_ context.Context, assignmentIDs []string) (map[string]int, error) {
	out := map[string]int{}
	for _, id := range assignmentIDs {
		if n := len(m.answers[id]); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (m *memStore) ListAnswers(_ context.Context, assignmentID string) ([]StoredAnswer, error) {
	var out []StoredAnswer
	for _, a := range m.answers[assignmentID] {
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) UpsertAnswers(_ context.Context, assignmentID string, answers []StoredAnswer) error {
	m.upserts++
	if m.answers[assignmentID] == nil {
		m.answers[assignmentID] = map[string]StoredAnswer{}
	}
	for _, a := range answers {
		m.answers[assignmentID][a.CompetencyID] = a
	}
	return nil
}

type memMembers struct {
	active   []identity.Member
	inactive []identity.Member
}

func (m memMembers) ActiveMembers(context.Context) ([]identity.Member, error) {
	return m.active, nil
}

func (m memMembers) MemberByID(_ context.Context, userID string) (identity.Member, error) {
	for _, list := range [][]identity.Member{m.active, m.inactive} {
		for _, mem := range list {
			if mem.UserID == userID {
				return mem, nil
			}
		}
	}
	return identity.Member{}, identity.ErrUserNotFound
}

type memCatalog []catalog.Competency

func (c memCatalog) ListCompetencies(_ context.Context, activeOnly bool) ([]catalog.Competency, error) {
	var out []catalog.Competency
	for _, comp := range c {
		if activeOnly && !comp.Active {
			continue
		}
		out = append(out, comp)
	}
	return out, nil
}

type fixedPeriod struct {
	period periods.Period
	err    error
}

func (f fixedPeriod) CurrentPeriod(context.Context) (periods.Period, error) {
	return f.period, f.err
}

const (
	teamMarketing = "t-mkt"
	teamAdmin     = "t-adm"
	teamProjects  = "t-proj"
)

// fixture mirrors a slice of the seeded organisation.
func fixtureMembers() []identity.Member {
	return []identity.Member{
		{UserID: "ana", Role: identity.RoleResponsavel, TeamIDs: []string{teamAdmin}},
		{UserID: "bruno", Role: identity.RoleResponsavel, TeamIDs: []string{teamAdmin, teamProjects}},
		{UserID: "natacha", Role: identity.RoleMembro, TeamIDs: []string{teamMarketing}},
		{UserID: "pacheco", Role: identity.RoleEstagiario, TeamIDs: []string{teamProjects}},
	}
}

func fixtureNames() map[string]string {
	return map[string]string{"ana": "Ana", "bruno": "Bruno", "natacha": "Natacha", "pacheco": "Pacheco"}
}

func fixtureCatalog() memCatalog {
	return memCatalog{
		{ID: "b-com", Name: "Comunicação", Category: catalog.CategoryBehavioral, Weight: 1, Active: true},
		{ID: "b-lead", Name: "Liderança", Category: catalog.CategoryBehavioral, LeadershipOnly: true, Weight: 1.2, Active: true},
		{ID: "b-old", Name: "Pontualidade", Category: catalog.CategoryBehavioral, Weight: 1, Active: false},
		{ID: "t-adm-1", Name: "Gestão documental", Category: catalog.CategoryTechnical, TeamID: teamAdmin, Weight: 1, Active: true},
		{ID: "t-adm-2", Name: "Faturação", Category: catalog.CategoryTechnical, TeamID: teamAdmin, Weight: 1, Active: true},
		{ID: "t-proj-1", Name: "Planeamento", Category: catalog.CategoryTechnical, TeamID: teamProjects, Weight: 1, Active: true},
		{ID: "t-mkt-1", Name: "Redes sociais", Category: catalog.CategoryTechnical, TeamID: teamMarketing, Weight: 1, Active: true},
		{ID: "o-1", Name: "Cumprimento de prazos", Category: catalog.CategoryObjectives, Weight: 1, Active: true},
		{ID: "o-2", Name: "Qualidade", Category: catalog.CategoryObjectives, Weight: 1, Active: true},
	}
}

func memberByID(t testing.TB, id string) identity.Member {
	t.Helper()
	for _, m := range fixtureMembers() {
		if m.UserID == id {
			return m
		}
	}
	t.Fatalf("no fixture member %q", id)
	return identity.Member{}
}

func competencyIDs(comps []catalog.Competency) []string {
	ids := make([]string, 0, len(comps))
	for _, c := range comps {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}
