package services

import (
	"context"
	"errors"
	"time"

	"studyzone_backend/internal/logger"
	"studyzone_backend/internal/models"
	"studyzone_backend/internal/services/dto"
	"studyzone_backend/pkg/apperrors"
)

const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent"

// ResetNotifier delivers reset links. Implemented by email.Mailer.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, to, name, token string, expires time.Time) error
}

// EventRecorder counts auth events. Implemented by metrics.Metrics.
type EventRecorder interface {
	Record(event, outcome string)
}

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, email string) (*dto.ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*dto.UserView, error)
	ValidateSession(ctx context.Context, userID string) (*dto.SessionResponse, error)
}

type AuthServiceImpl struct {
	store    *CredentialStore
	tokens   *TokenService
	notifier ResetNotifier
	events   EventRecorder
	now      func() time.Time
}

func NewAuthService(store *CredentialStore, tokens *TokenService, notifier ResetNotifier, events EventRecorder) AuthService {
	if events == nil {
		events = nopRecorder{}
	}
	return &AuthServiceImpl{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		events:   events,
		now:      time.Now,
	}
}

// Register creates an account with the default role set and signs it in.
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	user, err := s.store.CreateUser(ctx, req.DisplayName(), req.Email, req.Password)
	if err != nil {
		s.events.Record("register", outcomeOf(err))
		return nil, err
	}

	resp, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	s.events.Record("register", "success")
	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)
	return resp, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		user = nil
	}

	ok, err := s.store.VerifyPassword(ctx, user, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.events.Record("login", "failure")
		logger.CtxWarn(ctx, "login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.CtxWithError(ctx, "failed to record last login", err, "user_id", user.ID)
	} else {
		user.LastLogin = &now
	}

	resp, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	s.events.Record("login", "success")
	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return resp, nil
}

// Logout is advisory. Tokens stay valid until they expire; clients drop them.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID string) error {
	s.events.Record("logout", "success")
	logger.CtxInfo(ctx, "user logged out", "user_id", userID)
	return nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmNewPassword {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.store.VerifyPassword(ctx, user, req.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		s.events.Record("change_password", "failure")
		return apperrors.ErrInvalidCredentials
	}

	if err := s.store.UpdateFields(ctx, userID, UserUpdate{Password: &req.NewPassword}); err != nil {
		return err
	}
	s.events.Record("change_password", "success")
	logger.CtxInfo(ctx, "password changed", "user_id", userID)
	return nil
}

// RequestPasswordReset answers the same way for known and unknown addresses.
// Only a known address gets a token stored and mailed.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) (*dto.ForgotPasswordResult, error) {
	result := &dto.ForgotPasswordResult{Message: forgotPasswordMessage}

	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.events.Record("forgot_password", "unknown_email")
		logger.CtxInfo(ctx, "password reset requested for unknown email")
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	raw, expires, err := s.tokens.IssuePasswordResetToken(ctx, user)
	if err != nil {
		return nil, err
	}
	result.ResetToken = raw

	if s.notifier != nil {
		if err := s.notifier.SendPasswordReset(ctx, user.Email, user.Username, raw, expires); err != nil {
			logger.CtxWithError(ctx, "failed to send password reset email", err, "user_id", user.ID)
		}
	}

	s.events.Record("forgot_password", "issued")
	logger.CtxInfo(ctx, "password reset token issued", "user_id", user.ID)
	return result, nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmNewPassword {
		return apperrors.ErrPasswordMismatch
	}

	if err := s.tokens.ConsumeResetToken(ctx, req.Token, req.NewPassword); err != nil {
		s.events.Record("reset_password", outcomeOf(err))
		return err
	}
	s.events.Record("reset_password", "success")
	logger.CtxInfo(ctx, "password reset completed")
	return nil
}

// RefreshToken issues a new access token for the subject of a valid refresh token.
// The refresh token itself is not rotated.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.events.Record("refresh", "failure")
		return nil, err
	}

	// roles may have changed since the refresh token was issued
	user, err := s.store.FindByID(ctx, claims.Subject)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.events.Record("refresh", "failure")
		return nil, apperrors.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	s.events.Record("refresh", "success")
	return &dto.AuthResponse{Token: access, User: dto.NewUserView(user)}, nil
}

func (s *AuthServiceImpl) Profile(ctx context.Context, userID string) (*dto.UserView, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := dto.NewUserView(user)
	return &view, nil
}

// ValidateSession confirms that the subject of an already verified token still exists.
func (s *AuthServiceImpl) ValidateSession(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{Valid: true, User: dto.NewUserView(user)}, nil
}

func (s *AuthServiceImpl) issueSession(user *models.User) (*dto.AuthResponse, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         dto.NewUserView(user),
	}, nil
}

func outcomeOf(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.HTTPCode < 500 {
		return string(appErr.Code)
	}
	return "error"
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string) {}
