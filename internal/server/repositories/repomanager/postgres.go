package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chengshang-tools/launcher-auth/internal/dbx"
	"github.com/chengshang-tools/launcher-auth/internal/server/migrations"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/sessions"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/tokens"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories bound either
// to the pool or to a single transaction.
type PostgresRepositoryManager struct {
	db *sql.DB
	q  dbx.DBTX
}

// NewPostgresRepositoryManager wraps an already opened pool.
func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db, q: db}
}

// OpenPostgres opens a pgx-backed pool for dsn and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresRepositoryManager(db), nil
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.q)
}

func (m *PostgresRepositoryManager) Sessions() sessions.Repository {
	return sessions.NewPostgresRepository(m.q)
}

func (m *PostgresRepositoryManager) Tokens() tokens.Repository {
	return tokens.NewPostgresRepository(m.q)
}

func (m *PostgresRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &PostgresRepositoryManager{db: m.db, q: tx})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
