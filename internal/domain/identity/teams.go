package identity

// SharedTeams returns the teams present in both lists, in the order they
// appear in a. Duplicates are collapsed.
func SharedTeams(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var shared []string
	seen := map[string]struct{}{}
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		shared = append(shared, id)
	}
	return shared
}

func ShareTeam(a, b []string) bool {
	return len(SharedTeams(a, b)) > 0
}
