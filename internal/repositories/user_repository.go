package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"studyzone_backend/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrResetTokenRejected = errors.New("reset token not found or expired")
)

const uniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	AddRole(ctx context.Context, id string, role models.Role) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	HasActiveResetToken(ctx context.Context, tokenHash string, now time.Time) (bool, error)
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// NormalizeEmail is the stored form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts user. Uniqueness of the email is left to the database index.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", NormalizeEmail(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateFields writes the given columns. Values must already be in storage form.
func (r *UserRepositoryImpl) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	if email, ok := fields["email"].(string); ok {
		fields["email"] = NormalizeEmail(email)
	}
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrUserAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddRole appends role unless the user already holds it.
func (r *UserRepositoryImpl) AddRole(ctx context.Context, id string, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND NOT (? = ANY(roles))", id, string(role)).
		Updates(map[string]interface{}{
			"roles":      gorm.Expr("array_append(roles, ?)", string(role)),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// either missing or already holding the role
		_, err := r.FindByID(ctx, id)
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

// SetResetToken stores a reset token hash and its expiry together.
func (r *UserRepositoryImpl) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_reset_token":   tokenHash,
			"password_reset_expires": expires,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// HasActiveResetToken reports whether some user holds tokenHash unexpired at now.
// ConsumeResetToken remains the authoritative check.
func (r *UserRepositoryImpl) HasActiveResetToken(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now).
		Count(&count).Error
	return count > 0, err
}

// ConsumeResetToken replaces the password of the user holding an unexpired
// tokenHash and clears the reset window in the same statement, so a token
// can succeed at most once.
func (r *UserRepositoryImpl) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now).
		Updates(map[string]interface{}{
			"password_hash":          newPasswordHash,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
			"updated_at":             now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResetTokenRejected
	}
	return nil
}

// ClearExpiredResetTokens drops reset windows that can no longer be used.
func (r *UserRepositoryImpl) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("password_reset_expires IS NOT NULL AND password_reset_expires <= ?", now).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *UserRepositoryImpl) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("? = ANY(roles)", string(role)).
		Count(&count).Error
	return count, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
