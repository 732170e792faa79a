package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/dbx"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const userColumns = `id, username, password_hash, role, is_active, created_at, last_login_at, total_usage_time, login_count`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var role string
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.UserName, &u.PasswordHash, &role, &u.IsActive,
		&u.CreatedAt, &lastLogin, &u.TotalUsageTime, &u.LoginCount)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, password_hash, role, is_active, created_at, total_usage_time, login_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id, user.UserName, user.PasswordHash, string(user.Role), user.IsActive,
		user.CreatedAt, user.TotalUsageTime, user.LoginCount)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrUsernameTaken
		}
		return nil, common.StoreError("insert user", err)
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError("select user", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd Update) error {
	if upd.IsEmpty() {
		return common.ErrNoFieldsToUpdate
	}

	var sets []string
	var args []any
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if upd.UserName != nil {
		add("username = $%d", *upd.UserName)
	}
	if upd.Role != nil {
		add("role = $%d", string(*upd.Role))
	}
	if upd.IsActive != nil {
		add("is_active = $%d", *upd.IsActive)
	}
	if upd.PasswordHash != nil {
		add("password_hash = $%d", *upd.PasswordHash)
	}
	if upd.LastLoginAt != nil {
		add("last_login_at = $%d", *upd.LastLoginAt)
	}
	if upd.LoginCountDelta != 0 {
		add("login_count = login_count + $%d", upd.LoginCountDelta)
	}
	if upd.UsageTimeDelta != 0 {
		add("total_usage_time = total_usage_time + $%d", upd.UsageTimeDelta)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrUsernameTaken
		}
		return common.StoreError("update user", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return common.StoreError("delete user", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Count(ctx context.Context, f Filter) (int64, error) {
	query := `SELECT COUNT(*) FROM users`
	var args []any
	if f.IsActive != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *f.IsActive)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, common.StoreError("count users", err)
	}
	return n, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, common.StoreError("list users", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, common.StoreError("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("list users", err)
	}
	return out, nil
}

func (r *PostgresRepository) SetLoginCount(ctx context.Context, id string, n int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET login_count = $1 WHERE id = $2`, n, id)
	if err != nil {
		return common.StoreError("set login count", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.StoreError("rows affected", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
