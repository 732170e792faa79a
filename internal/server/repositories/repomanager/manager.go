// Package repomanager vends the user, session and token repositories for the
// configured store backend and owns the backend connection.
package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/sessions"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/tokens"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Sessions() sessions.Repository
	Tokens() tokens.Repository

	// WithinTx runs fn with a manager whose repositories share one
	// transaction. Backends without transactions pass themselves.
	WithinTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error

	// RunMigrations prepares the schema or indexes the repositories rely on.
	RunMigrations(ctx context.Context) error
	Close(ctx context.Context) error
}

// New opens the backend selected by the DSN scheme: postgres://,
// mongodb:// (or mongodb+srv://) and memory://. database names the MongoDB
// database and is ignored by the other backends.
func New(ctx context.Context, dsn, database string) (RepositoryManager, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("database DSN %q has no scheme", dsn)
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, dsn, database)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}
