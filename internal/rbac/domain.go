package rbac

import (
	"fmt"
	"strings"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/shared"
)

// Role is the staff role stored in users.role.
type Role string

const (
	// RoleSalesManager approves quotes and administers the system.
	RoleSalesManager Role = "sales_manager"
	// RoleSalesRep creates quotes and manages orders.
	RoleSalesRep Role = "sales_rep"
)

// ErrUnknownRole is returned for role values outside the enumeration.
var ErrUnknownRole = fmt.Errorf("rbac: unknown role: %w", httpx.ErrValidation)

// ParseRole accepts the stored code or the display label.
func ParseRole(raw string) (Role, error) {
	switch strings.TrimSpace(raw) {
	case string(RoleSalesManager), "Jefe de Ventas":
		return RoleSalesManager, nil
	case string(RoleSalesRep), "Vendedor":
		return RoleSalesRep, nil
	}
	return "", ErrUnknownRole
}

// Label returns the display name shown to staff.
func (r Role) Label() string {
	switch r {
	case RoleSalesManager:
		return "Jefe de Ventas"
	case RoleSalesRep:
		return "Vendedor"
	}
	return string(r)
}

// Permissions lists the capabilities granted to the role.
func (r Role) Permissions() []string {
	switch r {
	case RoleSalesManager:
		return shared.SalesManagerScopes()
	case RoleSalesRep:
		return shared.SalesRepScopes()
	}
	return nil
}

// Grant is the role and activity state of a staff account.
type Grant struct {
	UserID   int64
	Role     Role
	IsActive bool
}

// RoleInfo describes a role for API consumers.
type RoleInfo struct {
	Code        Role     `json:"code"`
	Label       string   `json:"label"`
	Permissions []string `json:"permissions"`
}

// Roles returns every known role.
func Roles() []RoleInfo {
	roles := []Role{RoleSalesManager, RoleSalesRep}
	out := make([]RoleInfo, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleInfo{Code: r, Label: r.Label(), Permissions: r.Permissions()})
	}
	return out
}
