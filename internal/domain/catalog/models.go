package catalog

import "fmt"

type Competency struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	TeamID         string  `json:"teamId,omitempty"`
	TeamName       string  `json:"teamName,omitempty"`
	LeadershipOnly bool    `json:"leadershipOnly"`
	Weight         float64 `json:"weight"`
	Active         bool    `json:"active"`
}

func (c Competency) HasTeam() bool {
	return c.TeamID != ""
}

// Validate checks the category/team pairing the schema also enforces.
func (c Competency) Validate() error {
	if !ValidCategory(c.Category) {
		return fmt.Errorf("competency %q: unknown category %q", c.Name, c.Category)
	}
	if c.Category == CategoryTechnical && !c.HasTeam() {
		return fmt.Errorf("competency %q: technical competencies need an owning team", c.Name)
	}
	if c.Category != CategoryTechnical && c.HasTeam() {
		return fmt.Errorf("competency %q: only technical competencies can be team scoped", c.Name)
	}
	if c.LeadershipOnly && c.Category != CategoryBehavioral {
		return fmt.Errorf("competency %q: leadership-only applies to behavioral competencies", c.Name)
	}
	if c.Weight <= 0 {
		return fmt.Errorf("competency %q: weight must be positive", c.Name)
	}
	return nil
}
