// Package common defines the sentinel errors shared by the store, service and
// transport layers. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Credential and account errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled, contact an administrator")

	// Session and authorization errors.
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrUnauthorized        = errors.New("insufficient privileges: admin role required")
	ErrSelfActionForbidden = errors.New("this action cannot be applied to your own account")

	// User management validation errors.
	ErrUsernameTaken    = errors.New("username already exists")
	ErrInvalidUsername  = errors.New("username is too short")
	ErrInvalidRole      = errors.New("invalid role, must be admin or user")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrUserNotFound     = errors.New("user not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrInvalidTokenKind = errors.New("invalid token type")

	// Signed token errors.
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token expired")

	// Persisted token errors.
	ErrTokenTypeMismatch     = errors.New("token type mismatch")
	ErrTokenRevokedOrExpired = errors.New("token is revoked or expired")

	// ErrStoreUnavailable wraps any underlying store I/O failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
