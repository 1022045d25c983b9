package services

import (
	"context"

	"studyzone_backend/internal/logger"
	"studyzone_backend/internal/models"
	"studyzone_backend/internal/repositories"
	"studyzone_backend/internal/services/dto"
	"studyzone_backend/pkg/apperrors"
)

type UserService interface {
	GrantRole(ctx context.Context, actorID, userID string, role models.Role) (*dto.UserView, error)
	MentorOverview(ctx context.Context, userID string) (*dto.MentorOverview, error)
}

type UserServiceImpl struct {
	store *CredentialStore
	repo  repositories.UserRepository
}

func NewUserService(store *CredentialStore, repo repositories.UserRepository) UserService {
	return &UserServiceImpl{store: store, repo: repo}
}

// GrantRole adds role to userID on behalf of actorID. Roles are only ever added.
func (s *UserServiceImpl) GrantRole(ctx context.Context, actorID, userID string, role models.Role) (*dto.UserView, error) {
	user, err := s.store.GrantRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, "role granted", "actor_id", actorID, "target_id", userID, "role", role)
	view := dto.NewUserView(user)
	return &view, nil
}

func (s *UserServiceImpl) MentorOverview(ctx context.Context, userID string) (*dto.MentorOverview, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	mentors, err := s.repo.CountByRole(ctx, models.RoleMentor)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.MentorOverview{User: dto.NewUserView(user), Mentors: mentors}, nil
}
