package repomanager

import (
	"context"

	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/sessions"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/tokens"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. It backs the
// memory:// DSN and the service tests.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	sessions *sessions.MemoryRepository
	tokens   *tokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
		tokens:   tokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository       { return m.users }
func (m *MemoryRepositoryManager) Sessions() sessions.Repository { return m.sessions }
func (m *MemoryRepositoryManager) Tokens() tokens.Repository     { return m.tokens }

// MemorySessions exposes the concrete session store for inspection.
func (m *MemoryRepositoryManager) MemorySessions() *sessions.MemoryRepository { return m.sessions }

// MemoryTokens exposes the concrete token store for inspection.
func (m *MemoryRepositoryManager) MemoryTokens() *tokens.MemoryRepository { return m.tokens }

func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return fn(ctx, m)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Close(context.Context) error         { return nil }
