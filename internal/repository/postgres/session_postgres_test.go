package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nara/internal/model"
)

func TestSessionPostgres_CreateAndFind(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	s := &model.Session{ID: "tok", UserID: "u1", UserAgent: "curl", IPAddress: "10.0.0.1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("tok", "u1", "curl", "10.0.0.1", s.ExpiresAt, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, s))

	mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id = \$1`).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "user_agent", "ip_address", "expires_at", "created_at"}).
			AddRow("tok", "u1", "curl", "10.0.0.1", s.ExpiresAt, now))

	got, err := repo.FindByID(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.Expired(now))

	mock.ExpectQuery("SELECT (.+) FROM sessions").WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionPostgres_Touch(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionPostgres(db)
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec("UPDATE sessions SET expires_at").WithArgs("tok", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Touch(context.Background(), "tok", exp))

	mock.ExpectExec("UPDATE sessions SET expires_at").WithArgs("gone", exp).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Touch(context.Background(), "gone", exp), sql.ErrNoRows)
}

func TestSessionPostgres_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionPostgres(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, repo.Delete(ctx, "tok"))

	mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 3))
	assert.NoError(t, repo.DeleteByUser(ctx, "u1"))

	mock.ExpectExec(`DELETE FROM sessions WHERE id`).WithArgs("x").WillReturnError(errors.New("conn reset"))
	assert.Error(t, repo.Delete(ctx, "x"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionPostgres_DeleteExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionPostgres(db)
	now := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at <= \$1`).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
