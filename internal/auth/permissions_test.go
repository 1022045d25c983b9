package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studyzone_backend/internal/models"
)

func TestLandingView(t *testing.T) {
	assert.Equal(t, "/mentor/dashboard", LandingView([]models.Role{models.RoleMentor}))
	assert.Equal(t, "/admin", LandingView([]models.Role{models.RoleAdmin}))
	assert.Equal(t, "/support", LandingView([]models.Role{models.RoleSupport}))
	assert.Equal(t, "/dashboard", LandingView([]models.Role{models.RoleUser}))
	assert.Equal(t, "/mentor/dashboard", LandingView([]models.Role{models.RoleUser, models.RoleMentor}))
	assert.Equal(t, EntryPoint, LandingView(nil))
}

func TestRolesFromClaims_DropsUnknown(t *testing.T) {
	roles := RolesFromClaims(&Claims{Roles: []string{"user", "superuser", "ADMIN"}})
	assert.Equal(t, []models.Role{models.RoleUser, models.RoleAdmin}, roles)
	assert.Nil(t, RolesFromClaims(nil))
}
