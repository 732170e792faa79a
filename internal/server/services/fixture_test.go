package services

import (
	"context"
	"testing"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/clock"
	"github.com/chengshang-tools/launcher-auth/internal/logging"
	"github.com/chengshang-tools/launcher-auth/internal/server/auth"
	"github.com/chengshang-tools/launcher-auth/internal/server/config"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/chengshang-tools/launcher-auth/internal/server/password"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	cfg     *config.Config
	clock   *clock.Manual
	hasher  *password.Hasher
	issuer  *auth.Issuer
	repos   *repomanager.MemoryRepositoryManager
	current *CurrentSession
	svc     *AuthService
	maint   *MaintenanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

// newFixtureWith builds the services over wrap(memory manager) when wrap is
// set, so tests can inject failing repositories.
func newFixtureWith(t *testing.T, wrap func(*repomanager.MemoryRepositoryManager) repomanager.RepositoryManager) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	hasher, err := password.NewHasher(password.SchemeSHA256, cfg.PasswordPepper)
	require.NoError(t, err)

	f := &fixture{
		cfg:     cfg,
		clock:   clock.NewManual(t0),
		hasher:  hasher,
		repos:   repomanager.NewMemoryRepositoryManager(),
		current: NewCurrentSession(),
	}
	f.issuer = auth.NewIssuer([]byte("test-secret"), f.clock)

	var m repomanager.RepositoryManager = f.repos
	if wrap != nil {
		m = wrap(f.repos)
	}
	f.svc = NewAuthService(m, f.hasher, f.issuer, f.clock, f.current, logging.Nop(), cfg)
	f.maint = NewMaintenanceService(m, f.hasher, f.clock, logging.Nop(), cfg)
	return f
}

// seedUser stores an account directly, bypassing the admin checks.
func (f *fixture) seedUser(t *testing.T, name, plain string, role models.Role) *models.User {
	t.Helper()
	digest, err := f.hasher.Hash(plain)
	require.NoError(t, err)

	u, err := f.repos.Users().Create(context.Background(), &models.User{
		UserName:     name,
		PasswordHash: digest,
		Role:         role,
		IsActive:     true,
		CreatedAt:    f.clock.Now(),
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, name, plain string) *LoginResult {
	t.Helper()
	res, err := f.svc.Login(context.Background(), LoginRequest{UserName: name, Password: plain})
	require.NoError(t, err)
	return res
}

// signInAdmin seeds an admin account and signs it in.
func (f *fixture) signInAdmin(t *testing.T) *models.User {
	t.Helper()
	admin := f.seedUser(t, "admin", "admin@2025csch", models.RoleAdmin)
	f.login(t, "admin", "admin@2025csch")
	return admin
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.repos.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
