package services

import (
	"context"
	"errors"
	"time"

	"studyzone_backend/internal/auth"
	"studyzone_backend/internal/models"
	"studyzone_backend/internal/repositories"
	"studyzone_backend/pkg/apperrors"
)

const DefaultResetTokenTTL = time.Hour

// TokenService issues session tokens and manages one-time reset tokens.
type TokenService struct {
	manager  *auth.TokenManager
	repo     repositories.UserRepository
	store    *CredentialStore
	resetTTL time.Duration
	now      func() time.Time
}

func NewTokenService(manager *auth.TokenManager, repo repositories.UserRepository, store *CredentialStore, resetTTL time.Duration) *TokenService {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}
	return &TokenService{
		manager:  manager,
		repo:     repo,
		store:    store,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	token, err := s.manager.IssueAccessToken(auth.SubjectFor(user))
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return token, nil
}

func (s *TokenService) IssueRefreshToken(user *models.User) (string, error) {
	token, err := s.manager.IssueRefreshToken(auth.SubjectFor(user))
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return token, nil
}

func (s *TokenService) VerifyAccessToken(token string) (*auth.Claims, error) {
	claims, err := s.manager.VerifyAccessToken(token)
	return claims, translateTokenError(err)
}

func (s *TokenService) VerifyRefreshToken(token string) (*auth.Claims, error) {
	claims, err := s.manager.VerifyRefreshToken(token)
	return claims, translateTokenError(err)
}

// IssuePasswordResetToken stores the hash of a fresh token on user and returns the
// raw value together with its expiry. Any earlier token for the user is replaced.
func (s *TokenService) IssuePasswordResetToken(ctx context.Context, user *models.User) (string, time.Time, error) {
	raw, hashed, err := auth.NewResetToken()
	if err != nil {
		return "", time.Time{}, apperrors.InternalError(err)
	}
	expires := s.now().Add(s.resetTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, hashed, expires); err != nil {
		return "", time.Time{}, translateRepoError(err)
	}
	return raw, expires, nil
}

// ConsumeResetToken sets newPassword for whoever holds raw, if it is unexpired,
// and invalidates the token in the same write.
func (s *TokenService) ConsumeResetToken(ctx context.Context, raw, newPassword string) error {
	if raw == "" {
		return apperrors.ErrInvalidOrExpiredResetToken
	}
	tokenHash := auth.HashResetToken(raw)
	now := s.now()

	// skip bcrypt for tokens that cannot match; the UPDATE below still decides
	active, err := s.repo.HasActiveResetToken(ctx, tokenHash, now)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !active {
		return apperrors.ErrInvalidOrExpiredResetToken
	}

	hash, err := s.store.HashPassword(ctx, newPassword)
	if err != nil {
		return err
	}

	err = s.repo.ConsumeResetToken(ctx, tokenHash, hash, now)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrResetTokenRejected):
		return apperrors.ErrInvalidOrExpiredResetToken
	default:
		return apperrors.InternalError(err)
	}
}

func translateTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrExpiredToken):
		return apperrors.ErrExpiredToken
	default:
		return apperrors.ErrInvalidToken
	}
}
