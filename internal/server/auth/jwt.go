// Package auth issues and verifies the signed long-lived tokens. Verification
// is a pure function of the secret, the clock and the token string; whether a
// token has been revoked is decided by the token store, not here.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/clock"
	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the registered claims (sub, iat, exp, jti) plus the identity and
// the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Username  string           `json:"username"`
	Role      models.Role      `json:"role"`
	TokenType models.TokenKind `json:"token_type"`
}

// Identity is the principal a token is issued for.
type Identity struct {
	UserID   string
	UserName string
	Role     models.Role
}

// Issuer signs tokens with a single HS256 secret.
type Issuer struct {
	secret []byte
	clock  clock.Clock
}

func NewIssuer(secret []byte, c clock.Clock) *Issuer {
	return &Issuer{secret: secret, clock: c}
}

// Issue signs a token of the given kind for id, valid for validity from now.
func (i *Issuer) Issue(id Identity, kind models.TokenKind, validity time.Duration) (string, *Claims, error) {
	now := i.clock.Now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Username:  id.UserName,
		Role:      id.Role,
		TokenType: kind,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, claims, nil
}

// Verify checks the signature and the embedded expiry of tokenString.
// It fails with common.ErrInvalidSignature or common.ErrTokenExpired.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidSignature
	}

	return claims, nil
}
