package evaluation

import (
	"eval360/internal/domain/catalog"
	"eval360/internal/domain/identity"
)

const (
	MinScore = 1
	MaxScore = 5
)

// PlanAssignments pairs every member with every member, self included.
// Behavioral always applies; technical and objectives need a shared team.
func PlanAssignments(members []identity.Member) []Plan {
	plans := make([]Plan, 0, len(members)*len(members))
	for _, evaluator := range members {
		for _, evaluatee := range members {
			shared := identity.ShareTeam(evaluator.TeamIDs, evaluatee.TeamIDs)
			p := Plan{
				EvaluatorID:       evaluator.UserID,
				EvaluateeID:       evaluatee.UserID,
				IncludeBehavioral: true,
				IncludeTechnical:  shared,
				IncludeObjectives: shared,
			}
			if p.Empty() {
				continue
			}
			plans = append(plans, p)
		}
	}
	return plans
}

// EligibleCompetencies filters the catalog down to what the evaluator has
// to score on this assignment. Inactive competencies never qualify.
func EligibleCompetencies(a Assignment, evaluator, evaluatee identity.Member, comps []catalog.Competency) []catalog.Competency {
	shared := map[string]struct{}{}
	for _, id := range identity.SharedTeams(evaluator.TeamIDs, evaluatee.TeamIDs) {
		shared[id] = struct{}{}
	}
	leader := identity.IsLeadership(evaluatee.Role)

	var out []catalog.Competency
	for _, c := range comps {
		if !c.Active {
			continue
		}
		switch c.Category {
		case catalog.CategoryBehavioral:
			if !a.IncludeBehavioral {
				continue
			}
			if c.LeadershipOnly && !leader {
				continue
			}
		case catalog.CategoryObjectives:
			if !a.IncludeObjectives {
				continue
			}
		case catalog.CategoryTechnical:
			if !a.IncludeTechnical || !c.HasTeam() {
				continue
			}
			if _, ok := shared[c.TeamID]; !ok {
				continue
			}
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// Complete requires an exact count match over a non-empty eligible set.
func Complete(answered, eligible int) bool {
	return eligible > 0 && answered == eligible
}

func ProgressOf(items []AssignmentSummary) Progress {
	p := Progress{Total: len(items)}
	for _, it := range items {
		if it.Complete {
			p.Done++
		}
	}
	if p.Total > 0 {
		p.Ratio = float64(p.Done) / float64(p.Total)
	}
	return p
}

func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
