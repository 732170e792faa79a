package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]*models.Token
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]*models.Token)}
}

func (r *MemoryRepository) Create(_ context.Context, t *models.Token) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = uuid.NewString()
	c := *t
	r.tokens[t.ID] = &c
	return t, nil
}

func (r *MemoryRepository) FindActive(_ context.Context, userID, token string, kind models.TokenKind, now time.Time) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.UserID == userID && t.Token == token && t.Kind == kind && t.IsActive && t.ExpiresAt.After(now) {
			c := *t
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) DeleteForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

// CountForUser reports how many token records userID currently holds.
func (r *MemoryRepository) CountForUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}
