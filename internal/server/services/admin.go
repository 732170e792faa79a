package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/users"
)

// CreateUserRequest describes a new account.
type CreateUserRequest struct {
	UserName string
	Password string
	Role     models.Role
}

// EditUserRequest is a partial edit; nil fields stay unchanged.
type EditUserRequest struct {
	UserName *string
	Role     *models.Role
	IsActive *bool
}

// Overview summarises the user base for the admin dashboard.
type Overview struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	TotalSessions int64 `json:"totalSessions"`
}

// requireAdmin returns the signed-in admin. Anonymous callers get an error
// matching both ErrUnauthorized and ErrNotAuthenticated.
func (s *AuthService) requireAdmin(ctx context.Context, op string) (*models.UserView, error) {
	cur, ok := s.current.Get()
	if !ok {
		s.logger.Warn(ctx, "admin operation denied", "op", op, "reason", "anonymous")
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, common.ErrNotAuthenticated)
	}
	if !cur.IsAdmin() {
		s.logger.Warn(ctx, "admin operation denied", "op", op, "operator", cur.ID)
		return nil, common.ErrUnauthorized
	}
	return cur, nil
}

func (s *AuthService) revokeTokens(ctx context.Context, userID string) error {
	if _, err := s.repomanager.Tokens().DeleteForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// CreateUser adds an active account. The username check runs before the
// insert; the stores' unique index catches a concurrent duplicate.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.UserView, error) {
	admin, err := s.requireAdmin(ctx, "create_user")
	if err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, common.ErrInvalidRole
	}
	if err := validateUsername(req.UserName, s.minUsernameLength); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password, s.minPasswordLength); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := createAccount(ctx, s.repomanager.Users(), s.hasher, s.clock.Now(), req)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user created", "operator", admin.ID, "target", u.ID, "role", u.Role)
	return u.View(), nil
}

// EditUser changes username, role or active flag. An admin cannot disable
// or demote their own account through it.
func (s *AuthService) EditUser(ctx context.Context, id string, req EditUserRequest) (*models.UserView, error) {
	admin, err := s.requireAdmin(ctx, "edit_user")
	if err != nil {
		return nil, err
	}
	if req.UserName == nil && req.Role == nil && req.IsActive == nil {
		return nil, common.ErrNoFieldsToUpdate
	}
	if req.Role != nil && !req.Role.Valid() {
		return nil, common.ErrInvalidRole
	}
	if req.UserName != nil {
		if err := validateUsername(*req.UserName, s.minUsernameLength); err != nil {
			return nil, err
		}
	}
	if id == admin.ID && ((req.IsActive != nil && !*req.IsActive) || (req.Role != nil && *req.Role != models.RoleAdmin)) {
		return nil, common.ErrSelfActionForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	repo := s.repomanager.Users()
	target, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	if req.UserName != nil && *req.UserName != target.UserName {
		other, err := repo.GetByUsername(ctx, *req.UserName)
		switch {
		case err == nil && other.ID != id:
			return nil, common.ErrUsernameTaken
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("check username: %w", err)
		}
	}

	upd := users.Update{UserName: req.UserName, Role: req.Role, IsActive: req.IsActive}
	if err := repo.Update(ctx, id, upd); err != nil {
		return nil, userLookupError(err)
	}

	updated, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	view := updated.View()
	if id == admin.ID {
		s.current.Set(view)
	}
	s.logger.Info(ctx, "user edited", "operator", admin.ID, "target", id)
	return view, nil
}

// DeleteUser removes the account and its long-lived tokens. Its sessions
// are kept for usage history.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	admin, err := s.requireAdmin(ctx, "delete_user")
	if err != nil {
		return err
	}
	if id == admin.ID {
		return common.ErrSelfActionForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repomanager.Users().Delete(ctx, id); err != nil {
		return userLookupError(err)
	}
	if err := s.revokeTokens(ctx, id); err != nil {
		return err
	}

	s.logger.Info(ctx, "user deleted", "operator", admin.ID, "target", id)
	return nil
}

// ResetPassword sets a new password and revokes the target's long-lived
// tokens.
func (s *AuthService) ResetPassword(ctx context.Context, id, newPassword string) error {
	admin, err := s.requireAdmin(ctx, "reset_password")
	if err != nil {
		return err
	}
	if err := validatePassword(newPassword, s.minPasswordLength); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := setPassword(ctx, s.repomanager.Users(), s.hasher, id, newPassword); err != nil {
		return err
	}
	if err := s.revokeTokens(ctx, id); err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "operator", admin.ID, "target", id)
	return nil
}

// ToggleActive flips the target's active flag and returns the new state.
func (s *AuthService) ToggleActive(ctx context.Context, id string) (*models.UserView, error) {
	admin, err := s.requireAdmin(ctx, "toggle_active")
	if err != nil {
		return nil, err
	}
	if id == admin.ID {
		return nil, common.ErrSelfActionForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	repo := s.repomanager.Users()
	target, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	active := !target.IsActive
	if err := repo.Update(ctx, id, users.Update{IsActive: &active}); err != nil {
		return nil, userLookupError(err)
	}
	target.IsActive = active

	s.logger.Info(ctx, "user active flag toggled", "operator", admin.ID, "target", id, "is_active", active)
	return target.View(), nil
}

// ListUsers returns every account ordered by creation time.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.UserView, error) {
	if _, err := s.requireAdmin(ctx, "list_users"); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]*models.UserView, 0, len(list))
	for _, u := range list {
		out = append(out, u.View())
	}
	return out, nil
}

// SystemOverview counts users, active users and recorded sessions.
func (s *AuthService) SystemOverview(ctx context.Context) (*Overview, error) {
	if _, err := s.requireAdmin(ctx, "system_overview"); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		o      Overview
		err    error
		active = true
	)
	if o.TotalUsers, err = s.repomanager.Users().Count(ctx, users.Filter{}); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if o.ActiveUsers, err = s.repomanager.Users().Count(ctx, users.Filter{IsActive: &active}); err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	if o.TotalSessions, err = s.repomanager.Sessions().Count(ctx); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	return &o, nil
}

func userLookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrUserNotFound
	}
	if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrNoFieldsToUpdate) {
		return err
	}
	return fmt.Errorf("user store: %w", err)
}
