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
	"nara/internal/repository"
)

var (
	flagCols = []string{"key", "description", "enabled", "rollout_percentage", "updated_at"}
	postCols = []string{"id", "slug", "title", "excerpt", "body", "author_id", "author_name", "published", "is_deleted", "published_at", "created_at", "updated_at"}
	bookCols = []string{"id", "title", "author", "isbn", "published_year", "created_at", "updated_at"}
)

func TestFeatureFlagPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFeatureFlagPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM feature_flags ORDER BY key").
		WillReturnRows(sqlmock.NewRows(flagCols).
			AddRow("blog.comments", "", false, 0, now).
			AddRow("showcase.voting", "Voting", true, 100, now))

	flags, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Equal(t, "showcase.voting", flags[1].Key)
	assert.Equal(t, 100, flags[1].RolloutPercentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureFlagPostgres_UpsertAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFeatureFlagPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO feature_flags (.+) ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("dashboard.charts", "Charts", true, 25, now).
		WillReturnRows(sqlmock.NewRows(flagCols).AddRow("dashboard.charts", "Charts", true, 25, now))

	f, err := repo.Upsert(ctx, &model.FeatureFlag{Key: "dashboard.charts", Description: "Charts", Enabled: true, RolloutPercentage: 25, UpdatedAt: now})
	require.NoError(t, err)
	assert.True(t, f.Enabled)

	mock.ExpectExec(`DELETE FROM feature_flags WHERE key = \$1`).WithArgs("dashboard.charts").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "dashboard.charts"))

	mock.ExpectExec(`DELETE FROM feature_flags`).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), sql.ErrNoRows)

	mock.ExpectQuery(`FROM feature_flags WHERE key = \$1`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByKey(ctx, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPostgres_ListPublished(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p WHERE p.published = true AND p.is_deleted = false`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY p.published_at DESC, p.id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow("p1", "hello-world", "Hello", "", "Body", "", "", true, false, now, now, now))

	res, err := repo.ListPublished(context.Background(), repository.PageQuery{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "hello-world", res.Items[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPostgres_CountError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostPostgres(db)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("db down"))

	res, err := repo.ListPublished(context.Background(), repository.PageQuery{Limit: 20})
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestPostPostgres_CreateAndSlug(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM posts WHERE slug = \$1\)`).
		WithArgs("hello-world").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.SlugExists(ctx, "hello-world")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("p2", "hello-world-2", "Hello", "ex", "Body", nil, false, nil, now).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow("p2", "hello-world-2", "Hello", "ex", "Body", "", "", false, false, nil, now, now))

	p, err := repo.Create(ctx, &model.Post{ID: "p2", Slug: "hello-world-2", Title: "Hello", Excerpt: "ex", Body: "Body", CreatedAt: now})
	require.NoError(t, err)
	assert.Nil(t, p.PublishedAt)
	assert.Empty(t, p.AuthorID)

	mock.ExpectExec(`UPDATE posts SET is_deleted = true`).WithArgs("p2", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SoftDelete(ctx, "p2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookPostgres_CRUD(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO books").
		WithArgs("b1", "Dune", "Frank Herbert", "9780441013593", 1965, now).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow("b1", "Dune", "Frank Herbert", "9780441013593", 1965, now, now))

	b, err := repo.Create(ctx, &model.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", PublishedYear: 1965, CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, 1965, b.PublishedYear)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM books`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY created_at ASC, id ASC`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow("b1", "Dune", "Frank Herbert", "", 0, now, now))

	res, err := repo.List(ctx, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	mock.ExpectQuery(`UPDATE books`).
		WithArgs("missing", "X", "Y", "", 0, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.Update(ctx, &model.Book{ID: "missing", Title: "X", Author: "Y"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(`DELETE FROM books WHERE id = \$1`).WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "b1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsPostgres_Overview(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStatsPostgres(db)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM showcases`).
		WithArgs("u1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e"}).AddRow(3, 2, 11, 40, 5))

	s, err := repo.Overview(context.Background(), "u1", from, to)
	require.NoError(t, err)
	assert.Equal(t, &model.Stats{ShowcasesCreated: 3, ShowcasesPublished: 2, VotesReceived: 11, TotalShowcases: 40, NewUsers: 5}, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsPostgres_DailyShowcases(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStatsPostgres(db)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(`to_char\(created_at AT TIME ZONE \$4, 'YYYY-MM-DD'\)`).
		WithArgs("u1", from, to, "UTC").
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2026-01-02", 2).
			AddRow("2026-01-05", 1))

	days, err := repo.DailyShowcases(context.Background(), "u1", from, to, "UTC")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), days[0].Day)
	assert.Equal(t, 1, days[1].Count)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.DailyShowcases(context.Background(), "u1", from, to, "Not/AZone")
	assert.Error(t, err)
}
