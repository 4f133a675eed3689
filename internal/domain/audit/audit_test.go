package audit

import "testing"

func TestBuildBaseQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		wantQuery string
		wantArgs  int
	}{
		{
			name:      "no filter",
			wantQuery: "SELECT COUNT(1) FROM audit_events WHERE 1=1",
		},
		{
			name:      "action only",
			filter:    Filter{Action: ActionPeriodCreate},
			wantQuery: "SELECT COUNT(1) FROM audit_events WHERE 1=1 AND action = $1",
			wantArgs:  1,
		},
		{
			name:      "all filters",
			filter:    Filter{Action: ActionAnswersSave, EntityType: EntityAssignment, ActorUser: "u1"},
			wantQuery: "SELECT COUNT(1) FROM audit_events WHERE 1=1 AND action = $1 AND entity_type = $2 AND actor_user_id::text = $3",
			wantArgs:  3,
		},
		{
			name:      "actor only",
			filter:    Filter{ActorUser: "u1"},
			wantQuery: "SELECT COUNT(1) FROM audit_events WHERE 1=1 AND actor_user_id::text = $1",
			wantArgs:  1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildBaseQuery("SELECT COUNT(1)", tc.filter)
			if query != tc.wantQuery {
				t.Fatalf("query = %q, want %q", query, tc.wantQuery)
			}
			if len(args) != tc.wantArgs {
				t.Fatalf("args = %d, want %d", len(args), tc.wantArgs)
			}
		})
	}
}
