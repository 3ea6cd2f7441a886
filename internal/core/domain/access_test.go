package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleIsValid(t *testing.T) {
	tests := []struct {
		role  Role
		valid bool
	}{
		{RoleAdmin, true},
		{RoleHR, true},
		{RoleEngineer, true},
		{RoleFinance, true},
		{RoleGeneral, true},
		{Role("intern"), false},
		{Role(""), false},
		{Role("Admin"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.IsValid())
		})
	}
}

func TestAllowedDepartments(t *testing.T) {
	assert.Nil(t, RoleAdmin.AllowedDepartments())
	assert.Equal(t, []string{"HR", "People", "General"}, RoleHR.AllowedDepartments())
	assert.Equal(t, []string{"Engineering", "Tech", "General"}, RoleEngineer.AllowedDepartments())
	assert.Equal(t, []string{"Finance", "Budget", "General"}, RoleFinance.AllowedDepartments())
	assert.Equal(t, []string{"General", "Public"}, RoleGeneral.AllowedDepartments())
}

func TestAllowedDepartmentsReturnsCopy(t *testing.T) {
	deps := RoleHR.AllowedDepartments()
	deps[0] = "mutated"

	assert.Equal(t, []string{"HR", "People", "General"}, RoleHR.AllowedDepartments())
}

func TestBuildAccessFilterInvalidRole(t *testing.T) {
	_, err := BuildAccessFilter(Role("contractor"), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestBuildAccessFilterAdmin(t *testing.T) {
	f, err := BuildAccessFilter(RoleAdmin, "")
	require.NoError(t, err)

	assert.True(t, f.AllowAll)
	assert.False(t, f.Unsatisfiable())
	for _, dep := range []string{"HR", "Engineering", "Finance", "General", "Anything"} {
		assert.True(t, f.Matches(dep), "admin must match %s", dep)
	}
}

func TestBuildAccessFilterAdminWithDepartment(t *testing.T) {
	f, err := BuildAccessFilter(RoleAdmin, "Finance")
	require.NoError(t, err)

	assert.False(t, f.AllowAll)
	assert.True(t, f.Matches("Finance"))
	assert.False(t, f.Matches("HR"))
}

func TestBuildAccessFilterSoundness(t *testing.T) {
	departments := []string{
		"HR", "People", "Engineering", "Tech",
		"Finance", "Budget", "General", "Public", "Legal",
	}

	roles := []Role{RoleHR, RoleEngineer, RoleFinance, RoleGeneral}

	for _, role := range roles {
		f, err := BuildAccessFilter(role, "")
		require.NoError(t, err)

		allowed := make(map[string]bool)
		for _, dep := range role.AllowedDepartments() {
			allowed[dep] = true
		}

		for _, dep := range departments {
			assert.Equal(t, allowed[dep], f.Matches(dep),
				"role %s, department %s", role, dep)
		}
	}
}

func TestBuildAccessFilterNarrowing(t *testing.T) {
	tests := []struct {
		name       string
		role       Role
		department string
		wantDeps   []string
		wantEmpty  bool
	}{
		{
			name:       "department inside allow-set",
			role:       RoleHR,
			department: "People",
			wantDeps:   []string{"People"},
		},
		{
			name:       "shared bucket inside allow-set",
			role:       RoleEngineer,
			department: "General",
			wantDeps:   []string{"General"},
		},
		{
			name:       "department outside allow-set is unsatisfiable",
			role:       RoleEngineer,
			department: "HR",
			wantEmpty:  true,
		},
		{
			name:       "unknown department is unsatisfiable",
			role:       RoleFinance,
			department: "Legal",
			wantEmpty:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := BuildAccessFilter(tt.role, tt.department)
			require.NoError(t, err)

			if tt.wantEmpty {
				assert.True(t, f.Unsatisfiable())
				assert.False(t, f.Matches(tt.department))
				return
			}

			assert.False(t, f.Unsatisfiable())
			assert.Equal(t, tt.wantDeps, f.Departments)
		})
	}
}
