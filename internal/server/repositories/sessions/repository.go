// Package sessions stores login events and closes them on logout.
package sessions

import (
	"context"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
)

// Repository is implemented by every session store backend.
type Repository interface {
	// Open records a new open session and assigns its ID.
	Open(ctx context.Context, s *models.Session) (*models.Session, error)
	// CloseMostRecentOpen closes the open session of userID with the latest
	// login time, setting its logout time and duration in seconds. It returns
	// common.ErrorNotFound when the user has no open session.
	CloseMostRecentOpen(ctx context.Context, userID string, at time.Time) (*models.Session, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
	// Count returns the number of sessions across all users.
	Count(ctx context.Context) (int64, error)
}
