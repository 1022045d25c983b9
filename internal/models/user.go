package models

import (
	"time"

	"github.com/lib/pq"
)

// User - a StudyZone account. Email is stored lower-cased; the unique index on it
// is what makes concurrent registrations with the same address fail.
type User struct {
	BaseModel
	Username             string         `gorm:"type:varchar(100);not null"`
	Email                string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash         string         `gorm:"not null"`
	Roles                pq.StringArray `gorm:"type:text[];not null"`
	LastLogin            *time.Time
	PasswordResetToken   *string `gorm:"type:varchar(64);index"`
	PasswordResetExpires *time.Time
}

// RoleSet returns the user's roles as the closed enumeration.
func (u *User) RoleSet() []Role {
	return NormalizeRoles(RolesFromStrings(u.Roles))
}

// HasOpenResetWindow reports whether a reset token is stored and still usable at now.
func (u *User) HasOpenResetWindow(now time.Time) bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil && now.Before(*u.PasswordResetExpires)
}
