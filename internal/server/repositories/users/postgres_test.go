package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "username", "password_hash", "role", "is_active",
	"created_at", "last_login_at", "total_usage_time", "login_count",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,`).
		WithArgs(sqlmock.AnyArg(), "alice", "hash", "user", true, now, int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{UserName: "alice", PasswordHash: "hash", Role: models.RoleUser, IsActive: true, CreatedAt: now}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "alice", got.UserName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice"})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice"})
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Regexp(t, `insert user: db down`, err.Error())
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u-1", "alice", "hash", "admin", true, created, nil, int64(90), int64(4))
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Nil(t, got.LastLoginAt)
	assert.Equal(t, int64(90), got.TotalUsageTime)
	assert.Equal(t, int64(4), got.LoginCount)
}

func TestGetByID_ScansLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	last := created.Add(time.Hour)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u-1", "alice", "hash", "user", false, created, last, int64(0), int64(1))
	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1$`).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, last.Equal(*got.LastLoginAt))
	assert.False(t, got.IsActive)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_BuildsSetClause(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	name := "bob"
	q := regexp.QuoteMeta(`UPDATE users SET username = $1, login_count = login_count + $2, total_usage_time = total_usage_time + $3 WHERE id = $4`)
	mock.ExpectExec(q).
		WithArgs("bob", int64(1), int64(30), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "u-1", Update{UserName: &name, LoginCountDelta: 1, UsageTimeDelta: 30})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_Empty(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	err := repo.Update(context.Background(), "u-1", Update{})
	assert.ErrorIs(t, err, common.ErrNoFieldsToUpdate)
}

func TestUpdate_NoRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	active := false
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active = $1 WHERE id = $2`)).
		WithArgs(false, "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "gone", Update{IsActive: &active})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_UsernameCollision(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	name := "taken"
	mock.ExpectExec(`UPDATE users`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Update(context.Background(), "u-1", Update{UserName: &name})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u-1"), common.ErrorNotFound)
}

func TestCount_WithFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`) + `$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE is_active = $1`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	all, err := repo.Count(context.Background(), Filter{})
	require.NoError(t, err)
	active := true
	onlyActive, err := repo.Count(context.Background(), Filter{IsActive: &active})
	require.NoError(t, err)

	assert.Equal(t, int64(5), all)
	assert.Equal(t, int64(3), onlyActive)
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u-1", "admin", "h1", "admin", true, t0, nil, int64(0), int64(0)).
		AddRow("u-2", "alice", "h2", "user", true, t0.Add(time.Minute), nil, int64(0), int64(0))
	mock.ExpectQuery(`ORDER BY created_at, id$`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "admin", got[0].UserName)
	assert.Equal(t, "alice", got[1].UserName)
}

func TestList_RowError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u-1", "admin", "h1", "admin", true, time.Now(), nil, int64(0), int64(0)).
		RowError(0, errors.New("broken row"))
	mock.ExpectQuery(`FROM users`).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestSetLoginCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET login_count = $1 WHERE id = $2`)).
		WithArgs(int64(12), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetLoginCount(context.Background(), "u-1", 12))
}
