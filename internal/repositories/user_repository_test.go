package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyzone_backend/internal/models"
)

func newMockRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewUserRepository(db), mock
}

func TestCreate_NormalizesEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Username: "ann", Email: "  Ann@Example.COM ", PasswordHash: "h", Roles: []string{"user"}}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolationMapsToAlreadyExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

	err := repo.Create(context.Background(), &models.User{Email: "a@x.com", Roles: []string{"user"}})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(context.Background(), "Ghost@X.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_LowerCasesLookup(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "roles"}).
		AddRow("u-1", "ann", "ann@x.com", "hash", "{user,mentor}")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WithArgs("ann@x.com", 1).
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "ANN@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, []models.Role{models.RoleMentor, models.RoleUser}, user.RoleSet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeResetToken_ZeroRowsIsRejected(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "users" SET .* WHERE password_reset_token = \$\d+ AND password_reset_expires > \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConsumeResetToken(context.Background(), "hash", "newhash", time.Now())
	assert.ErrorIs(t, err, ErrResetTokenRejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveResetToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE password_reset_token = $1 AND password_reset_expires > $2`)).
		WithArgs("hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := repo.HasActiveResetToken(context.Background(), "hash", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeResetToken_Success(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "users" SET .*"password_hash"=.* WHERE password_reset_token = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ConsumeResetToken(context.Background(), "hash", "newhash", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_MissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields(context.Background(), "nope", map[string]interface{}{"username": "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRole_AlreadyHeldIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "users" SET .*array_append`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "roles"}).AddRow("u-1", "{mentor,user}"))

	require.NoError(t, repo.AddRole(context.Background(), "u-1", models.RoleMentor))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearExpiredResetTokens(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "users" SET .* WHERE password_reset_expires IS NOT NULL AND password_reset_expires <= `).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ClearExpiredResetTokens(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository_ConsumeResetTokenOnce(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := &models.User{Email: "A@x.com", PasswordHash: "old", Roles: []string{"user"}}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "hash", time.Now().Add(time.Hour)))

	active, err := repo.HasActiveResetToken(ctx, "hash", time.Now())
	require.NoError(t, err)
	assert.True(t, active)
	active, err = repo.HasActiveResetToken(ctx, "hash", time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, repo.ConsumeResetToken(ctx, "hash", "new", time.Now()))
	assert.ErrorIs(t, repo.ConsumeResetToken(ctx, "hash", "newer", time.Now()), ErrResetTokenRejected)

	stored, err := repo.FindByEmail(ctx, "a@X.com")
	require.NoError(t, err)
	assert.Equal(t, "new", stored.PasswordHash)
	assert.Nil(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@x.com"}))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Email: "A@X.COM"}), ErrUserAlreadyExists)
	assert.Equal(t, 1, repo.Len())
}
