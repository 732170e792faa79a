// Package services contains the server-side business logic: the login and
// session lifecycle, token re-authentication and admin user management.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/clock"
	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/logging"
	"github.com/chengshang-tools/launcher-auth/internal/server/auth"
	"github.com/chengshang-tools/launcher-auth/internal/server/config"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/chengshang-tools/launcher-auth/internal/server/password"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/repomanager"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/users"
)

// LoginRequest carries the credentials and the long-lived token flags.
type LoginRequest struct {
	UserName   string
	Password   string
	RememberMe bool
	AutoLogin  bool
	DeviceInfo string
}

// LoginResult is the sanitized user plus whichever long-lived tokens were
// requested.
type LoginResult struct {
	User            *models.UserView
	RememberMeToken string
	AutoLoginToken  string
}

// AuthService orchestrates login, logout, token re-authentication and the
// admin operations. Multi-step writes are not atomic: a failure part way
// leaves the earlier writes in place and is reported as one error.
type AuthService struct {
	repomanager repomanager.RepositoryManager
	hasher      *password.Hasher
	issuer      *auth.Issuer
	clock       clock.Clock
	current     *CurrentSession
	logger      logging.Logger

	rememberMeValidity time.Duration
	autoLoginValidity  time.Duration
	minUsernameLength  int
	minPasswordLength  int
	storeTimeout       time.Duration

	// dummyDigest is verified against when the username is unknown, so
	// both failure paths pay for one hash in the configured scheme.
	dummyDigest string
}

const dummyPassword = "launcher-auth/unknown-user"


func NewAuthService(
	m repomanager.RepositoryManager,
	hasher *password.Hasher,
	issuer *auth.Issuer,
	clk clock.Clock,
	current *CurrentSession,
	logger logging.Logger,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		repomanager:        m,
		hasher:             hasher,
		issuer:             issuer,
		clock:              clk,
		current:            current,
		logger:             logger.With("module", "auth"),
		rememberMeValidity: cfg.RememberMeValidity,
		autoLoginValidity:  cfg.AutoLoginValidity,
		minUsernameLength:  cfg.MinUsernameLength,
		minPasswordLength:  cfg.MinPasswordLength,
		storeTimeout:       cfg.StoreTimeout,
		dummyDigest:        dummyDigest(hasher),
	}
}

func dummyDigest(h *password.Hasher) string {
	d, err := h.Hash(dummyPassword)
	if err != nil {
		return ""
	}
	return d
}

func (s *AuthService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Login verifies the credentials, records the login and opens a session.
// Every successful login revokes the user's previous long-lived tokens before
// issuing the requested ones.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repomanager.Users().GetByUsername(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(req.Password, s.dummyDigest)
			s.logger.Warn(ctx, "login failed", "username", req.UserName, "reason", "unknown user")
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Warn(ctx, "login failed", "username", req.UserName, "reason", "password mismatch")
		return nil, common.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn(ctx, "login refused", "user_id", user.ID, "reason", "account disabled")
		return nil, common.ErrAccountDisabled
	}

	now := s.clock.Now()
	err = s.repomanager.Users().Update(ctx, user.ID, users.Update{LastLoginAt: &now, LoginCountDelta: 1})
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now
	user.LoginCount++

	if _, err := s.repomanager.Sessions().Open(ctx, &models.Session{UserID: user.ID, LoginAt: now}); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	revoked, err := s.repomanager.Tokens().DeleteForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("revoke tokens: %w", err)
	}

	res := &LoginResult{User: user.View()}
	if req.RememberMe {
		if res.RememberMeToken, err = s.issueToken(ctx, user, models.TokenRememberMe, s.rememberMeValidity, req.DeviceInfo); err != nil {
			return nil, err
		}
	}
	if req.AutoLogin {
		if res.AutoLoginToken, err = s.issueToken(ctx, user, models.TokenAutoLogin, s.autoLoginValidity, req.DeviceInfo); err != nil {
			return nil, err
		}
	}

	s.current.Set(res.User)
	s.logger.Info(ctx, "login succeeded",
		"user_id", user.ID,
		"remember_me", req.RememberMe,
		"auto_login", req.AutoLogin,
		"revoked_tokens", revoked,
	)
	return res, nil
}

func (s *AuthService) issueToken(ctx context.Context, u *models.User, kind models.TokenKind, validity time.Duration, device string) (string, error) {
	signed, claims, err := s.issuer.Issue(auth.Identity{UserID: u.ID, UserName: u.UserName, Role: u.Role}, kind, validity)
	if err != nil {
		return "", fmt.Errorf("issue %s token: %w", kind, err)
	}

	_, err = s.repomanager.Tokens().Create(ctx, &models.Token{
		UserID:     u.ID,
		Token:      signed,
		Kind:       kind,
		CreatedAt:  claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
		IsActive:   true,
		DeviceInfo: device,
	})
	if err != nil {
		return "", fmt.Errorf("persist %s token: %w", kind, err)
	}
	return signed, nil
}

// Logout closes the user's most recent open session, adds its duration to
// the usage total, revokes every long-lived token and clears the current
// session. An empty userID means the signed-in user. Logging out without an
// open session is not an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		cur, ok := s.current.Get()
		if !ok {
			return common.ErrNotAuthenticated
		}
		userID = cur.ID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	closed, err := s.repomanager.Sessions().CloseMostRecentOpen(ctx, userID, s.clock.Now())
	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.logger.Debug(ctx, "logout without open session", "user_id", userID)
	case err != nil:
		return fmt.Errorf("close session: %w", err)
	case closed.Duration != nil && *closed.Duration > 0:
		err := s.repomanager.Users().Update(ctx, userID, users.Update{UsageTimeDelta: *closed.Duration})
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("record usage time: %w", err)
		}
	}

	if _, err := s.repomanager.Tokens().DeleteForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}

	s.current.Clear()
	s.logger.Info(ctx, "logout", "user_id", userID)
	return nil
}

// CheckSession returns the signed-in user.
func (s *AuthService) CheckSession(context.Context) (*models.UserView, error) {
	cur, ok := s.current.Get()
	if !ok {
		return nil, common.ErrNotAuthenticated
	}
	return cur, nil
}

// ReauthenticateByToken signs the owner of a long-lived token back in. The
// signature and embedded expiry are checked first, then the persisted record
// must still be active and unexpired. The token is not rotated.
func (s *AuthService) ReauthenticateByToken(ctx context.Context, token string, kind models.TokenKind) (*models.UserView, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		s.logger.Warn(ctx, "token re-authentication failed", "reason", err.Error())
		return nil, err
	}
	if claims.TokenType != kind {
		return nil, fmt.Errorf("%w: expected %s, got %s", common.ErrTokenTypeMismatch, kind, claims.TokenType)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.clock.Now()
	if _, err := s.repomanager.Tokens().FindActive(ctx, claims.Subject, token, kind, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "token re-authentication failed", "user_id", claims.Subject, "reason", "revoked or expired")
			return nil, common.ErrTokenRevokedOrExpired
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	user, err := s.repomanager.Users().GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrAccountDisabled
	}

	if err := s.repomanager.Users().Update(ctx, user.ID, users.Update{LastLoginAt: &now}); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now

	if _, err := s.repomanager.Sessions().Open(ctx, &models.Session{UserID: user.ID, LoginAt: now}); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	view := user.View()
	s.current.Set(view)
	s.logger.Info(ctx, "token re-authentication succeeded", "user_id", user.ID, "token_type", kind)
	return view, nil
}
