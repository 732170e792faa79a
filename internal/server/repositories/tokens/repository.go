// Package tokens declares the server-side repository contract for the
// persisted records that back remember-me and auto-login tokens.
package tokens

import (
	"context"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
)

// Repository defines operations for recording, looking up and revoking
// long-lived tokens.
type Repository interface {
	// Create stores t and assigns its ID.
	Create(ctx context.Context, t *models.Token) (*models.Token, error)

	// FindActive returns the record matching userID, token and kind that is
	// still active and expires after now. Implementations return
	// common.ErrorNotFound when no such record exists.
	FindActive(ctx context.Context, userID, token string, kind models.TokenKind, now time.Time) (*models.Token, error)

	// DeleteForUser removes every token record of userID and reports how many
	// were removed. Removing zero records is not an error.
	DeleteForUser(ctx context.Context, userID string) (int64, error)
}
