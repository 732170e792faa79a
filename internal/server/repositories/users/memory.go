package users

import (
	"context"
	"sort"
	"sync"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in a map. It enforces the same username
// uniqueness as the persistent backends.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (r *MemoryRepository) usernameTakenLocked(username, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.UserName == username {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTakenLocked(user.UserName, "") {
		return nil, common.ErrUsernameTaken
	}

	user.ID = uuid.NewString()
	r.users[user.ID] = clone(user)
	return user, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.UserName == username {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Update(_ context.Context, id string, upd Update) error {
	if upd.IsEmpty() {
		return common.ErrNoFieldsToUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.UserName != nil && r.usernameTakenLocked(*upd.UserName, id) {
		return common.ErrUsernameTaken
	}

	if upd.UserName != nil {
		u.UserName = *upd.UserName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.LastLoginAt != nil {
		t := *upd.LastLoginAt
		u.LastLoginAt = &t
	}
	u.LoginCount += upd.LoginCountDelta
	u.TotalUsageTime += upd.UsageTimeDelta
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) Count(_ context.Context, f Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if f.IsActive == nil || u.IsActive == *f.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, clone(u))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) SetLoginCount(_ context.Context, id string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.LoginCount = n
	return nil
}
