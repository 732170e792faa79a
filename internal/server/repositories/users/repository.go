// Package users declares the storage contract for user accounts and its
// PostgreSQL, MongoDB and in-memory implementations.
package users

import (
	"context"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
)

// Update is a partial modification of a user. Nil fields are left unchanged;
// the delta fields are added to the stored counters.
type Update struct {
	UserName     *string
	Role         *models.Role
	IsActive     *bool
	PasswordHash *string
	LastLoginAt  *time.Time

	LoginCountDelta int64
	UsageTimeDelta  int64
}

// IsEmpty reports whether applying u would change nothing.
func (u Update) IsEmpty() bool {
	return u.UserName == nil && u.Role == nil && u.IsActive == nil &&
		u.PasswordHash == nil && u.LastLoginAt == nil &&
		u.LoginCountDelta == 0 && u.UsageTimeDelta == 0
}

// Filter narrows Count. A nil IsActive matches every user.
type Filter struct {
	IsActive *bool
}

// Repository is implemented by every user store backend.
//
// Lookups return common.ErrorNotFound when no record matches. Create and
// Update return common.ErrUsernameTaken when the username collides with an
// existing account. Other failures are wrapped with common.ErrStoreUnavailable.
type Repository interface {
	// Create stores user, assigning its ID, and returns it.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Update applies upd to the user with the given id.
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int64, error)
	// List returns every user ordered by creation time.
	List(ctx context.Context) ([]*models.User, error)
	// SetLoginCount overwrites the stored login counter.
	SetLoginCount(ctx context.Context, id string, n int64) error
}
