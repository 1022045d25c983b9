package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"studyzone_backend/internal/models"
)

// MemoryUserRepository keeps users in process memory. It enforces the same email
// uniqueness and reset-token rules as the SQL implementation and is used by tests
// and by development runs without a database.
type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = NormalizeEmail(user.Email)
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrUserAlreadyExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryUserRepository) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	if email, ok := fields["email"].(string); ok {
		email = NormalizeEmail(email)
		if owner, taken := r.byEmail[email]; taken && owner != id {
			return ErrUserAlreadyExists
		}
		delete(r.byEmail, u.Email)
		u.Email = email
		r.byEmail[email] = id
	}
	if v, ok := fields["username"].(string); ok {
		u.Username = v
	}
	if v, ok := fields["password_hash"].(string); ok {
		u.PasswordHash = v
	}
	if v, ok := fields["roles"].(pq.StringArray); ok {
		u.Roles = append(pq.StringArray(nil), v...)
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) AddRole(_ context.Context, id string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	for _, held := range u.Roles {
		if held == string(role) {
			return nil
		}
	}
	u.Roles = append(u.Roles, string(role))
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (r *MemoryUserRepository) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordResetToken = &tokenHash
	u.PasswordResetExpires = &expires
	return nil
}

func (r *MemoryUserRepository) HasActiveResetToken(_ context.Context, tokenHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == tokenHash &&
			u.PasswordResetExpires != nil && now.Before(*u.PasswordResetExpires) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.PasswordResetToken == nil || *u.PasswordResetToken != tokenHash {
			continue
		}
		if u.PasswordResetExpires == nil || !now.Before(*u.PasswordResetExpires) {
			return ErrResetTokenRejected
		}
		u.PasswordHash = newPasswordHash
		u.PasswordResetToken = nil
		u.PasswordResetExpires = nil
		u.UpdatedAt = now
		return nil
	}
	return ErrResetTokenRejected
}

func (r *MemoryUserRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, u := range r.byID {
		if u.PasswordResetExpires != nil && !now.Before(*u.PasswordResetExpires) {
			u.PasswordResetToken = nil
			u.PasswordResetExpires = nil
			cleared++
		}
	}
	return cleared, nil
}

func (r *MemoryUserRepository) CountByRole(_ context.Context, role models.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.byID {
		for _, held := range u.Roles {
			if held == string(role) {
				n++
				break
			}
		}
	}
	return n, nil
}

// Len reports the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Roles = append(pq.StringArray(nil), u.Roles...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		cp.LastLogin = &t
	}
	if u.PasswordResetToken != nil {
		s := *u.PasswordResetToken
		cp.PasswordResetToken = &s
	}
	if u.PasswordResetExpires != nil {
		t := *u.PasswordResetExpires
		cp.PasswordResetExpires = &t
	}
	return &cp
}
