package identity

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Membership struct {
	TeamID    string `json:"teamId"`
	TeamName  string `json:"teamName"`
	IsPrimary bool   `json:"isPrimary"`
}

type User struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Role   string       `json:"role"`
	Active bool         `json:"active"`
	Teams  []Membership `json:"teams"`
}

// Member is the slice of a user the evaluation engine needs: who they are,
// their role and which teams they belong to.
type Member struct {
	UserID  string
	Role    string
	TeamIDs []string
}

func (u User) PrimaryTeam() (Membership, bool) {
	for _, m := range u.Teams {
		if m.IsPrimary {
			return m, true
		}
	}
	return Membership{}, false
}

func (u User) TeamIDs() []string {
	ids := make([]string, 0, len(u.Teams))
	for _, m := range u.Teams {
		ids = append(ids, m.TeamID)
	}
	return ids
}
