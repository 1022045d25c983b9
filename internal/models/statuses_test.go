package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleUser}, NormalizeRoles(nil))
	assert.Equal(t, []Role{RoleUser}, NormalizeRoles([]Role{"ghost"}))
	assert.Equal(t,
		[]Role{RoleAdmin, RoleMentor, RoleUser},
		NormalizeRoles([]Role{RoleUser, "Mentor", RoleUser, RoleAdmin, "bogus"}),
	)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("  Support ")
	assert.True(t, ok)
	assert.Equal(t, RoleSupport, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}

func TestHasAnyRole(t *testing.T) {
	held := []Role{RoleUser}
	assert.True(t, HasAnyRole(held, RoleMentor, RoleUser))
	assert.False(t, HasAnyRole(held, RoleMentor, RoleAdmin))
	assert.False(t, HasAnyRole(nil, RoleUser))
}

func TestUser_RoleSetNeverEmpty(t *testing.T) {
	u := &User{}
	assert.Equal(t, []Role{RoleUser}, u.RoleSet())
}

func TestUser_HasOpenResetWindow(t *testing.T) {
	now := time.Now()
	token := "abc"
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&User{}).HasOpenResetWindow(now))
	assert.False(t, (&User{PasswordResetToken: &token, PasswordResetExpires: &past}).HasOpenResetWindow(now))
	assert.True(t, (&User{PasswordResetToken: &token, PasswordResetExpires: &future}).HasOpenResetWindow(now))
}
