package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu       sync.Mutex
	sessions []*models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Open(_ context.Context, s *models.Session) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = uuid.NewString()
	s.LogoutAt = nil
	s.Duration = nil
	c := *s
	r.sessions = append(r.sessions, &c)
	return s, nil
}

func (r *MemoryRepository) CloseMostRecentOpen(_ context.Context, userID string, at time.Time) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *models.Session
	for _, s := range r.sessions {
		if s.UserID != userID || !s.IsOpen() {
			continue
		}
		if latest == nil || !s.LoginAt.Before(latest.LoginAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, common.ErrorNotFound
	}

	logout := at
	duration := models.SessionDuration(latest.LoginAt, at)
	latest.LogoutAt = &logout
	latest.Duration = &duration

	c := *latest
	return &c, nil
}

func (r *MemoryRepository) CountForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sessions)), nil
}

// OpenFor returns the open sessions of userID in login order.
func (r *MemoryRepository) OpenFor(userID string) []models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsOpen() {
			out = append(out, *s)
		}
	}
	return out
}
