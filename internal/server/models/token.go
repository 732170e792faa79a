package models

import (
	"fmt"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
)

// TokenKind distinguishes the two long-lived token policies.
type TokenKind string

const (
	TokenRememberMe TokenKind = "remember_me"
	TokenAutoLogin  TokenKind = "auto_login"
)

// ParseTokenKind validates a token kind received from a caller.
func ParseTokenKind(s string) (TokenKind, error) {
	switch k := TokenKind(s); k {
	case TokenRememberMe, TokenAutoLogin:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidTokenKind, s)
	}
}

// Token is the persisted row tracking an issued signed token. Deleting the
// row revokes the token regardless of its embedded expiry.
type Token struct {
	ID         string
	UserID     string
	Token      string
	Kind       TokenKind
	CreatedAt  time.Time
	ExpiresAt  time.Time
	IsActive   bool
	DeviceInfo string
}
