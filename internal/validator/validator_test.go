package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyzone_backend/pkg/apperrors"
)

type sample struct {
	Username string `json:"username" validate:"required_without=FullName"`
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,is-role"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Email: "not-an-email", Password: "123", Role: "root"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []apperrors.FieldError{
		{Field: "username", Message: "Required when fullName is empty"},
		{Field: "email", Message: "Must be a valid email address"},
		{Field: "password", Message: "Must be at least 6 characters long"},
		{Field: "role", Message: "Must be one of: user, mentor, admin, support"},
	}, verr.Fields)
}

func TestValidate_MaxBytesCountsBytesNotRunes(t *testing.T) {
	type secret struct {
		Password string `json:"password" validate:"required,min=6,max-bytes=72"`
	}
	v := New()

	// 40 runes, 80 bytes
	err := v.Validate(&secret{Password: strings.Repeat("é", 40)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []apperrors.FieldError{
		{Field: "password", Message: "Must be at most 72 bytes long"},
	}, verr.Fields)

	assert.NoError(t, v.Validate(&secret{Password: strings.Repeat("é", 36)}))
	assert.Error(t, v.Validate(&secret{Password: strings.Repeat("a", 73)}))
}

func TestValidate_OK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&sample{FullName: "Ann", Email: "a@x.com", Password: "123456", Role: "Mentor"}))
}
