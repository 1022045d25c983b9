package dto

// RegisterRequest - sign-up payload. Either username or fullName names the account.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required_without=FullName,max=100"`
	FullName        string `json:"fullName" validate:"max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max-bytes=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// DisplayName returns the name to store for the account.
func (r *RegisterRequest) DisplayName() string {
	if r.Username != "" {
		return r.Username
	}
	return r.FullName
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=6,max-bytes=72"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=6,max-bytes=72"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse - returned by register and login
type AuthResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         UserView `json:"user"`
}

// ForgotPasswordResult is the same for known and unknown addresses.
// ResetToken is only set when an account exists and is never serialized by the
// service itself; the handler decides whether to expose it.
type ForgotPasswordResult struct {
	Message    string `json:"message"`
	ResetToken string `json:"-"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SessionResponse struct {
	Valid bool     `json:"valid"`
	User  UserView `json:"user"`
}
