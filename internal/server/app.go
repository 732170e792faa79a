// Package server wires the configuration, logging, store backend, services
// and gRPC transport together and runs them until shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chengshang-tools/launcher-auth/internal/clock"
	"github.com/chengshang-tools/launcher-auth/internal/logging"
	"github.com/chengshang-tools/launcher-auth/internal/server/auth"
	"github.com/chengshang-tools/launcher-auth/internal/server/config"
	"github.com/chengshang-tools/launcher-auth/internal/server/password"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/repomanager"
	"github.com/chengshang-tools/launcher-auth/internal/server/services"

	gs "github.com/chengshang-tools/launcher-auth/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	flush  func() error
	repos  repomanager.RepositoryManager
	auth   *services.AuthService
}

// NewApp opens the store, applies migrations and builds the services. Logs go
// to out.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger, flush, err := logging.New(out, logging.Options{Backend: c.LogBackend, Format: c.LogFormat, Level: c.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	hasher, err := password.NewHasher(password.Scheme(c.PasswordScheme), c.PasswordPepper)
	if err != nil {
		return nil, err
	}

	repos, err := repomanager.New(ctx, c.DatabaseDSN, c.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migrations: %w", err)
	}

	clk := clock.Real{}
	issuer := auth.NewIssuer([]byte(c.SecretKey), clk)
	svc := services.NewAuthService(repos, hasher, issuer, clk, services.NewCurrentSession(), logger, c)

	return &App{config: c, logger: logger, flush: flush, repos: repos, auth: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves gRPC until ctx is cancelled or a termination signal arrives,
// then closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	// only the scheme; the rest of the DSN may carry credentials
	store, _, _ := strings.Cut(app.config.DatabaseDSN, "://")
	app.logger.Info(ctx, "Starting app...", "store", store, "password_scheme", app.config.PasswordScheme)
	app.initSignalHandler(cancelFunc)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth)
	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "grpc server stopped", "error", runErr)
	}

	if err := app.repos.Close(context.WithoutCancel(ctx)); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.flush()

	return runErr
}
