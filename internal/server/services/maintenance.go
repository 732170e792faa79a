package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chengshang-tools/launcher-auth/internal/clock"
	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/logging"
	"github.com/chengshang-tools/launcher-auth/internal/server/config"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/chengshang-tools/launcher-auth/internal/server/password"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/repomanager"
)

// MaintenanceService runs operator tasks directly against the store,
// without a signed-in session.
type MaintenanceService struct {
	repomanager       repomanager.RepositoryManager
	hasher            *password.Hasher
	clock             clock.Clock
	logger            logging.Logger
	minUsernameLength int
	minPasswordLength int
}

func NewMaintenanceService(m repomanager.RepositoryManager, hasher *password.Hasher, clk clock.Clock, logger logging.Logger, cfg *config.Config) *MaintenanceService {
	return &MaintenanceService{
		repomanager:       m,
		hasher:            hasher,
		clock:             clk,
		logger:            logger.With("module", "maintenance"),
		minUsernameLength: cfg.MinUsernameLength,
		minPasswordLength: cfg.MinPasswordLength,
	}
}

// CreateAdmin bootstraps an admin account.
func (s *MaintenanceService) CreateAdmin(ctx context.Context, username, plain string) (*models.UserView, error) {
	if err := validateUsername(username, s.minUsernameLength); err != nil {
		return nil, err
	}
	if err := validatePassword(plain, s.minPasswordLength); err != nil {
		return nil, err
	}

	u, err := createAccount(ctx, s.repomanager.Users(), s.hasher, s.clock.Now(),
		CreateUserRequest{UserName: username, Password: plain, Role: models.RoleAdmin})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "admin created", "user_id", u.ID, "username", u.UserName)
	return u.View(), nil
}

// ResetPassword sets the password of the named user and revokes their
// long-lived tokens.
func (s *MaintenanceService) ResetPassword(ctx context.Context, username, plain string) error {
	if err := validatePassword(plain, s.minPasswordLength); err != nil {
		return err
	}

	u, err := s.repomanager.Users().GetByUsername(ctx, username)
	if err != nil {
		return userLookupError(err)
	}
	if err := setPassword(ctx, s.repomanager.Users(), s.hasher, u.ID, plain); err != nil {
		return err
	}
	if _, err := s.repomanager.Tokens().DeleteForUser(ctx, u.ID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}

	s.logger.Info(ctx, "password reset", "user_id", u.ID)
	return nil
}

// BackfillLoginCounts sets every user's login count to their recorded
// session count and reports how many users were updated. On PostgreSQL the
// whole pass runs in one transaction.
func (s *MaintenanceService) BackfillLoginCounts(ctx context.Context) (int, error) {
	updated := 0
	err := s.repomanager.WithinTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		list, err := m.Users().List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		for _, u := range list {
			n, err := m.Sessions().CountForUser(ctx, u.ID)
			if err != nil {
				return fmt.Errorf("count sessions for %s: %w", u.ID, err)
			}
			if n == u.LoginCount {
				continue
			}
			if err := m.Users().SetLoginCount(ctx, u.ID, n); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					continue
				}
				return fmt.Errorf("set login count for %s: %w", u.ID, err)
			}
			s.logger.Debug(ctx, "login count updated", "user_id", u.ID, "from", u.LoginCount, "to", n)
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "login counts backfilled", "updated", updated)
	return updated, nil
}
