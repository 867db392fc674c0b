package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHierarchicalPolicy(t *testing.T) {
	tests := []struct {
		have, want string
		allowed    bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleDeveloper, true},
		{RoleAdmin, RoleUser, true},
		{RoleDeveloper, RoleAdmin, false},
		{RoleDeveloper, RoleDeveloper, true},
		{RoleDeveloper, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleDeveloper, false},
		{RoleUser, RoleUser, true},
		{"", RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.have+"->"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.allowed, Hierarchical.Allows(tt.have, tt.want))
		})
	}
}

func TestExactMatchPolicy(t *testing.T) {
	assert.True(t, ExactMatch.Allows(RoleAdmin, RoleAdmin))
	assert.False(t, ExactMatch.Allows(RoleAdmin, RoleDeveloper))
	assert.False(t, ExactMatch.Allows(RoleDeveloper, RoleAdmin))

	assert.True(t, ExactMatch.AllowsAny(RoleDeveloper, RoleAdmin, RoleDeveloper))
	assert.False(t, ExactMatch.AllowsAny(RoleUser, RoleAdmin, RoleDeveloper))
	assert.True(t, ExactMatch.AllowsAny(RoleUser))
	assert.False(t, ExactMatch.AllowsAny(""))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("developer"))
	assert.False(t, ValidRole("root"))
}
