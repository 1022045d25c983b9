package auth

import "studyzone_backend/internal/models"

// Landing views per role, in the order used when a user holds several.
var landingViews = []struct {
	role models.Role
	path string
}{
	{models.RoleAdmin, "/admin"},
	{models.RoleMentor, "/mentor/dashboard"},
	{models.RoleSupport, "/support"},
	{models.RoleUser, "/dashboard"},
}

// EntryPoint is where unauthenticated clients are sent.
const EntryPoint = "/login"

// LandingView returns the default view for a set of roles.
func LandingView(roles []models.Role) string {
	for _, lv := range landingViews {
		if models.HasAnyRole(roles, lv.role) {
			return lv.path
		}
	}
	return EntryPoint
}

// RolesFromClaims converts claim strings into known roles, dropping anything unknown.
func RolesFromClaims(c *Claims) []models.Role {
	if c == nil {
		return nil
	}
	return models.RolesFromStrings(c.Roles)
}

// SubjectFor builds the token subject for a stored user.
func SubjectFor(u *models.User) Subject {
	return Subject{
		ID:    u.ID,
		Email: u.Email,
		Roles: models.RoleStrings(u.RoleSet()),
	}
}
