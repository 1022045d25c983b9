package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"

	"studyzone_backend/internal/models"
	"studyzone_backend/internal/repositories"
	"studyzone_backend/pkg/apperrors"
)

// PasswordHasher hashes and checks passwords. Implemented by auth.Hasher.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) (bool, error)
}

// UserUpdate lists the fields UpdateFields may change. Nil fields are left alone.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Roles    []models.Role
}

// CredentialStore is the only place plaintext passwords are turned into hashes.
type CredentialStore struct {
	repo   repositories.UserRepository
	hasher PasswordHasher

	dummyMu   sync.Mutex
	dummyHash string
}

func NewCredentialStore(repo repositories.UserRepository, hasher PasswordHasher) *CredentialStore {
	return &CredentialStore{repo: repo, hasher: hasher}
}

// CreateUser hashes rawPassword and inserts the user. An empty role list becomes {user}.
func (s *CredentialStore) CreateUser(ctx context.Context, username, email, rawPassword string, roles ...models.Role) (*models.User, error) {
	hash, err := s.hasher.Hash(ctx, rawPassword)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:     username,
		Email:        repositories.NormalizeEmail(email),
		PasswordHash: hash,
		Roles:        models.RoleStrings(models.NormalizeRoles(roles)),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	return user, translateRepoError(err)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	return user, translateRepoError(err)
}

// UpdateFields applies upd. A new password is hashed before it reaches storage.
func (s *CredentialStore) UpdateFields(ctx context.Context, id string, upd UserUpdate) error {
	fields := make(map[string]interface{})
	if upd.Username != nil {
		fields["username"] = *upd.Username
	}
	if upd.Email != nil {
		fields["email"] = repositories.NormalizeEmail(*upd.Email)
	}
	if upd.Password != nil {
		hash, err := s.hasher.Hash(ctx, *upd.Password)
		if err != nil {
			return apperrors.InternalError(err)
		}
		fields["password_hash"] = hash
	}
	if upd.Roles != nil {
		fields["roles"] = pq.StringArray(models.RoleStrings(models.NormalizeRoles(upd.Roles)))
	}

	err := s.repo.UpdateFields(ctx, id, fields)
	if errors.Is(err, repositories.ErrUserAlreadyExists) {
		return apperrors.ErrDuplicateEmail
	}
	return translateRepoError(err)
}

// VerifyPassword reports whether candidate matches the stored hash. A nil user is
// compared against a throwaway hash so unknown accounts take as long as known ones.
func (s *CredentialStore) VerifyPassword(ctx context.Context, user *models.User, candidate string) (bool, error) {
	var hash string
	if user != nil {
		hash = user.PasswordHash
	} else {
		var err error
		if hash, err = s.timingHash(ctx); err != nil {
			return false, apperrors.InternalError(err)
		}
	}
	ok, err := s.hasher.Compare(ctx, hash, candidate)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	return ok && user != nil, nil
}

// HashPassword exposes the hasher for callers that write the hash themselves.
func (s *CredentialStore) HashPassword(ctx context.Context, raw string) (string, error) {
	hash, err := s.hasher.Hash(ctx, raw)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return hash, nil
}

func (s *CredentialStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return translateRepoError(s.repo.TouchLastLogin(ctx, id, at))
}

// GrantRole adds role to the user. Granting a held role is a no-op.
func (s *CredentialStore) GrantRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewBadRequestError("Unknown role")
	}
	if err := s.repo.AddRole(ctx, id, role); err != nil {
		return nil, translateRepoError(err)
	}
	return s.FindByID(ctx, id)
}

// timingHash lazily computes the hash unknown accounts are compared against.
// The caller's cancellation does not apply and a failure is not cached.
func (s *CredentialStore) timingHash(ctx context.Context) (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash, nil
	}
	hash, err := s.hasher.Hash(context.WithoutCancel(ctx), "studyzone-timing-equalizer")
	if err != nil {
		return "", err
	}
	s.dummyHash = hash
	return hash, nil
}

func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	default:
		return apperrors.InternalError(err)
	}
}
