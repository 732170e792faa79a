package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/dbx"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Open(ctx context.Context, s *models.Session) (*models.Session, error) {
	query :=
		`INSERT INTO user_sessions (id, user_id, login_at)
		 VALUES ($1, $2, $3)
		 `

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, query, id, s.UserID, s.LoginAt); err != nil {
		return nil, common.StoreError("open session", err)
	}

	s.ID = id
	s.LogoutAt = nil
	s.Duration = nil
	return s, nil
}

// newSessionID returns a time-ordered UUIDv7, so "id DESC" breaks login_at
// ties in favour of the session inserted last.
func newSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return id.String(), nil
}

func (r *PostgresRepository) CloseMostRecentOpen(ctx context.Context, userID string, at time.Time) (*models.Session, error) {
	selectQuery :=
		`SELECT id, login_at FROM user_sessions
		 WHERE user_id = $1 AND logout_at IS NULL
		 ORDER BY login_at DESC, id DESC
		 LIMIT 1
		 `

	s := &models.Session{UserID: userID}
	err := r.db.QueryRowContext(ctx, selectQuery, userID).Scan(&s.ID, &s.LoginAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError("select open session", err)
	}

	duration := models.SessionDuration(s.LoginAt, at)

	updateQuery :=
		`UPDATE user_sessions SET logout_at = $1, session_duration = $2
		 WHERE id = $3 AND logout_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, updateQuery, at, duration, s.ID)
	if err != nil {
		return nil, common.StoreError("close session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, common.StoreError("close session", err)
	}
	// Closed concurrently by another logout.
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	s.LogoutAt = &at
	s.Duration = &duration
	return s, nil
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_sessions WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, common.StoreError("count sessions", err)
	}
	return n, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_sessions`).Scan(&n); err != nil {
		return 0, common.StoreError("count sessions", err)
	}
	return n, nil
}
