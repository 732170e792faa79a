package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/chengshang-tools/launcher-auth/internal/server/password"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/users"
)

// createAccount inserts an active account after checking the username is
// free. Callers validate lengths and role first.
func createAccount(ctx context.Context, repo users.Repository, hasher *password.Hasher, now time.Time, req CreateUserRequest) (*models.User, error) {
	_, err := repo.GetByUsername(ctx, req.UserName)
	switch {
	case err == nil:
		return nil, common.ErrUsernameTaken
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("check username: %w", err)
	}

	digest, err := hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{
		UserName:     req.UserName,
		PasswordHash: digest,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func setPassword(ctx context.Context, repo users.Repository, hasher *password.Hasher, id, plain string) error {
	digest, err := hasher.Hash(plain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repo.Update(ctx, id, users.Update{PasswordHash: &digest}); err != nil {
		return userLookupError(err)
	}
	return nil
}
