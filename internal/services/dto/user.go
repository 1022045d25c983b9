package dto

import (
	"time"

	"studyzone_backend/internal/models"
)

// UserView - public projection of a user, never carries credentials
type UserView struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Roles     []models.Role `json:"roles"`
	LastLogin *time.Time    `json:"lastLogin,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func NewUserView(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.RoleSet(),
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type GrantRoleRequest struct {
	Role string `json:"role" validate:"required,is-role"`
}

// MentorOverview - landing payload of the mentor area
type MentorOverview struct {
	User    UserView `json:"user"`
	Mentors int64    `json:"mentors"`
}
