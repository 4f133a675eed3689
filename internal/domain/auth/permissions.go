package auth

import (
	"context"

	"eval360/internal/domain/identity"
)

const (
	PermCatalogRead      = "catalog.read"
	PermPeriodsRead      = "periods.read"
	PermPeriodsManage    = "periods.manage"
	PermEvaluationsWrite = "evaluations.write"
	PermResultsRead      = "results.read"
	PermDashboardRead    = "dashboard.read"
	PermAuditRead        = "audit.read"
)

var DefaultPermissions = []string{
	PermCatalogRead,
	PermPeriodsRead,
	PermPeriodsManage,
	PermEvaluationsWrite,
	PermResultsRead,
	PermDashboardRead,
	PermAuditRead,
}

var basePermissions = []string{
	PermCatalogRead,
	PermPeriodsRead,
	PermEvaluationsWrite,
	PermResultsRead,
}

var RolePermissions = map[string][]string{
	identity.RoleCEO: append(append([]string{}, basePermissions...),
		PermPeriodsManage,
		PermDashboardRead,
		PermAuditRead,
	),
	identity.RoleResponsavel: basePermissions,
	identity.RoleMembro:      basePermissions,
	identity.RoleEstagiario:  basePermissions,
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}
