package identity

const (
	RoleCEO         = "CEO"
	RoleResponsavel = "RESPONSAVEL"
	RoleMembro      = "MEMBRO"
	RoleEstagiario  = "ESTAGIARIO"
)

var Roles = []string{RoleCEO, RoleResponsavel, RoleMembro, RoleEstagiario}

// IsLeadership reports whether role unlocks leadership-only competencies.
func IsLeadership(role string) bool {
	return role == RoleCEO || role == RoleResponsavel
}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if role == candidate {
			return true
		}
	}
	return false
}
