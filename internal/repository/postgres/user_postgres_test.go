package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nara/internal/model"
	"nara/internal/repository"
)

var userCols = []string{"id", "email", "name", "password_hash", "avatar_url", "role", "created_at", "updated_at", "deleted_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)

	now := time.Now().UTC()
	u := &model.User{ID: "u1", Email: " ada@example.com ", Name: "Ada", PasswordHash: "hash", Role: model.RoleUser, CreatedAt: now}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u1", "ada@example.com", "Ada", "hash", "", model.RoleUser, now).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "ada@example.com", "Ada", "hash", "", "user", now, now, nil))

	got, err := repo.Create(context.Background(), u)

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Nil(t, got.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_CreateWithoutPassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u1", "oauth@example.com", "", nil, "https://avatars/x.png", model.RoleUser, now).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "oauth@example.com", "", "", "https://avatars/x.png", "user", now, now, nil))

	got, err := repo.Create(context.Background(), &model.User{
		ID: "u1", Email: "oauth@example.com", AvatarURL: "https://avatars/x.png", Role: model.RoleUser, CreatedAt: now,
	})

	require.NoError(t, err)
	assert.Empty(t, got.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users u WHERE lower\(u.email\) = lower\(\$1\) AND u.deleted_at IS NULL`).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "Ada@Example.com", "Ada", "", "", "admin", time.Now(), time.Now(), nil))

		u, err := repo.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users u WHERE lower").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByID_Deleted(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)

	deleted := time.Now().UTC()
	mock.ExpectQuery(`SELECT (.+) FROM users u WHERE u.id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@example.com", "", "", "", "user", time.Now(), time.Now(), deleted))

	u, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, u.DeletedAt)
	assert.True(t, deleted.Equal(*u.DeletedAt))
}

func TestUserPostgres_UpdatePasswordHash(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("u1", "newhash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdatePasswordHash(ctx, "u1", "newhash"))

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("missing", "newhash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, "missing", "newhash"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_OAuth(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users u JOIN oauth_accounts a ON a.user_id = u.id").
		WithArgs("github", "42").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@example.com", "A", "", "", "user", now, now, nil))

	u, err := repo.FindByOAuth(ctx, "github", "42")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	mock.ExpectExec("INSERT INTO oauth_accounts (.+) ON CONFLICT").
		WithArgs("github", "42", "u1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.LinkOAuth(ctx, &model.OAuthAccount{Provider: "github", ProviderUserID: "42", UserID: "u1", CreatedAt: now})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

	_, err := repo.Create(context.Background(), &model.User{ID: "u1", Email: "a@example.com", Role: model.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "idx_users_email")
}
