package domain

// Role identifies a caller's access role. Roles are a closed
// enumeration: an unrecognised role is an error, never a fallback.
type Role string

// Available roles.
const (
	// RoleAdmin can access every department.
	RoleAdmin Role = "admin"

	// RoleHR can access HR and people documents.
	RoleHR Role = "hr"

	// RoleEngineer can access engineering documents.
	RoleEngineer Role = "engineer"

	// RoleFinance can access finance documents.
	RoleFinance Role = "finance"

	// RoleGeneral can access shared documents only.
	RoleGeneral Role = "general"
)

// roleDepartments is the static role to allowed-departments table.
// Every non-admin role includes the shared General bucket.
var roleDepartments = map[Role][]string{
	RoleHR:       {"HR", "People", "General"},
	RoleEngineer: {"Engineering", "Tech", "General"},
	RoleFinance:  {"Finance", "Budget", "General"},
	RoleGeneral:  {"General", "Public"},
}

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	if r == RoleAdmin {
		return true
	}
	_, ok := roleDepartments[r]
	return ok
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// AllowedDepartments returns the departments the role may read.
// Admin returns nil, meaning all departments.
func (r Role) AllowedDepartments() []string {
	if r == RoleAdmin {
		return nil
	}
	deps := roleDepartments[r]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// AccessFilter is a visibility predicate over chunk metadata derived
// from a role and an optional requested department. It is a tagged
// structure rather than an open-ended map so the index can push it
// down before top-k selection.
type AccessFilter struct {
	// AllowAll short-circuits the department test (admin).
	AllowAll bool

	// Departments is the finite allow-set. An empty set with
	// AllowAll false matches nothing.
	Departments []string
}

// BuildAccessFilter derives the effective filter for a query.
//
// If requestedDepartment is supplied the filter is the intersection of
// the role's allow-set and that single department. A requested
// department outside the allow-set yields an unsatisfiable filter,
// which retrieval surfaces as zero results rather than an error.
func BuildAccessFilter(role Role, requestedDepartment string) (AccessFilter, error) {
	if !role.IsValid() {
		return AccessFilter{}, ErrInvalidRole
	}

	if role == RoleAdmin {
		if requestedDepartment != "" {
			return AccessFilter{Departments: []string{requestedDepartment}}, nil
		}
		return AccessFilter{AllowAll: true}, nil
	}

	allowed := role.AllowedDepartments()
	if requestedDepartment == "" {
		return AccessFilter{Departments: allowed}, nil
	}

	for _, dep := range allowed {
		if dep == requestedDepartment {
			return AccessFilter{Departments: []string{requestedDepartment}}, nil
		}
	}

	// Requested department outside the role's allow-set: matches nothing.
	return AccessFilter{Departments: []string{}}, nil
}

// Matches reports whether a chunk with the given department is visible.
func (f AccessFilter) Matches(department string) bool {
	if f.AllowAll {
		return true
	}
	for _, dep := range f.Departments {
		if dep == department {
			return true
		}
	}
	return false
}

// Unsatisfiable reports whether the filter can never match any chunk.
func (f AccessFilter) Unsatisfiable() bool {
	return !f.AllowAll && len(f.Departments) == 0
}
