package tokens

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/dbx"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Token) (*models.Token, error) {
	query := `
		INSERT INTO user_tokens (id, user_id, token, token_type, created_at, expires_at, is_active, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id, t.UserID, t.Token, string(t.Kind), t.CreatedAt, t.ExpiresAt, t.IsActive, t.DeviceInfo)
	if err != nil {
		return nil, common.StoreError("insert token", err)
	}
	t.ID = id
	return t, nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID, token string, kind models.TokenKind, now time.Time) (*models.Token, error) {
	query := `
		SELECT id, created_at, expires_at, device_info
		FROM user_tokens
		WHERE user_id = $1 AND token = $2 AND token_type = $3
		  AND is_active AND expires_at > $4
	`
	t := &models.Token{UserID: userID, Token: token, Kind: kind, IsActive: true}
	var device sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID, token, string(kind), now).
		Scan(&t.ID, &t.CreatedAt, &t.ExpiresAt, &device)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError("find token", err)
	}
	t.DeviceInfo = device.String
	return t, nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, common.StoreError("delete tokens", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.StoreError("delete tokens", err)
	}
	return n, nil
}
