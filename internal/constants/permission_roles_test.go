package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	assert.True(t, AllowedRole(ViewCredit, Viewer))
	assert.False(t, AllowedRole(RunCreditCheck, Viewer))
	assert.True(t, AllowedRole(RunCreditCheck, Manager))
	assert.False(t, AllowedRole(RetractCreditCheck, Manager))
	assert.True(t, AllowedRole(ManageCompanies, Superadmin))
	assert.False(t, AllowedRole("unknown_permission", Superadmin))
}

func TestEveryPermissionHasValidRoles(t *testing.T) {
	for perm, roles := range PermissionRoles {
		assert.NotEmpty(t, roles, perm)
		for _, r := range roles {
			assert.True(t, IsValidRole(r), "%s -> %s", perm, r)
		}
	}
}
