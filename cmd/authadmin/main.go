// Command authadmin runs maintenance tasks directly against the auth store.
//
//	authadmin [server flags] create-admin [-username name]
//	authadmin [server flags] reset-password [-username name]
//	authadmin [server flags] backfill-login-counts
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chengshang-tools/launcher-auth/internal/adminctl"
	"github.com/chengshang-tools/launcher-auth/internal/clock"
	"github.com/chengshang-tools/launcher-auth/internal/logging"
	"github.com/chengshang-tools/launcher-auth/internal/server/config"
	"github.com/chengshang-tools/launcher-auth/internal/server/password"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/repomanager"
	"github.com/chengshang-tools/launcher-auth/internal/server/services"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "authadmin:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd, cmdArgs, err := adminctl.SplitCommand(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, flush, err := logging.New(os.Stderr, logging.Options{Backend: cfg.LogBackend, Format: "text", Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer flush()

	hasher, err := password.NewHasher(password.Scheme(cfg.PasswordScheme), cfg.PasswordPepper)
	if err != nil {
		return err
	}

	repos, err := repomanager.New(ctx, cfg.DatabaseDSN, cfg.DatabaseName)
	if err != nil {
		return err
	}
	defer repos.Close(ctx)

	if err := repos.RunMigrations(ctx); err != nil {
		return err
	}

	maint := services.NewMaintenanceService(repos, hasher, clock.Real{}, logger, cfg)
	return adminctl.NewApp(maint, os.Stdin, os.Stdout).Run(ctx, cmd, cmdArgs)
}
