// Package adminctl implements the maintenance commands of the authadmin
// binary: bootstrapping an admin, resetting a password and backfilling login
// counts, all directly against the store.
package adminctl

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
)

const (
	CmdCreateAdmin         = "create-admin"
	CmdResetPassword       = "reset-password"
	CmdBackfillLoginCounts = "backfill-login-counts"
)

var ErrUnknownCommand = errors.New("unknown command")

// Maintenance is the store-level operations the commands drive.
type Maintenance interface {
	CreateAdmin(ctx context.Context, username, plain string) (*models.UserView, error)
	ResetPassword(ctx context.Context, username, plain string) error
	BackfillLoginCounts(ctx context.Context) (int, error)
}

type App struct {
	maint  Maintenance
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(m Maintenance, in io.Reader, out io.Writer) *App {
	return &App{maint: m, reader: bufio.NewReader(in), out: out}
}

// SplitCommand finds the command name in args and returns it with the
// arguments that follow it. Arguments before the command belong to the
// server configuration.
func SplitCommand(args []string) (string, []string, error) {
	for i, a := range args {
		switch a {
		case CmdCreateAdmin, CmdResetPassword, CmdBackfillLoginCounts:
			return a, args[i+1:], nil
		}
	}
	return "", nil, fmt.Errorf("%w: expected one of %s, %s, %s", ErrUnknownCommand, CmdCreateAdmin, CmdResetPassword, CmdBackfillLoginCounts)
}

// Run executes cmd with its own flags in args.
func (a *App) Run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case CmdCreateAdmin:
		return a.createAdmin(ctx, args)
	case CmdResetPassword:
		return a.resetPassword(ctx, args)
	case CmdBackfillLoginCounts:
		return a.backfillLoginCounts(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

func (a *App) usernameArg(name string, args []string) (string, error) {
	var username string
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&username, "username", "", "account username")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if username != "" {
		return username, nil
	}
	return GetSimpleText(a.reader, "Username", a.out)
}

func (a *App) createAdmin(ctx context.Context, args []string) error {
	username, err := a.usernameArg(CmdCreateAdmin, args)
	if err != nil {
		return err
	}
	plain, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}

	v, err := a.maint.CreateAdmin(ctx, username, plain)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "admin %q created with id %s\n", v.UserName, v.ID)
	return nil
}

func (a *App) resetPassword(ctx context.Context, args []string) error {
	username, err := a.usernameArg(CmdResetPassword, args)
	if err != nil {
		return err
	}
	plain, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.maint.ResetPassword(ctx, username, plain); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "password of %q reset\n", username)
	return nil
}

func (a *App) backfillLoginCounts(ctx context.Context) error {
	n, err := a.maint.BackfillLoginCounts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "login counts updated for %d user(s)\n", n)
	return nil
}
