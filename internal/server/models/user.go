// Package models defines the records persisted by the store backends and the
// sanitized projections handed back to callers.
package models

import "time"

// Role is the privilege level of a user account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the stored identity record. PasswordHash must never leave the
// service layer; use View to build a response.
type User struct {
	ID             string
	UserName       string
	PasswordHash   string
	Role           Role
	IsActive       bool
	CreatedAt      time.Time
	LastLoginAt    *time.Time
	TotalUsageTime int64
	LoginCount     int64
}

// UserView is the projection of User returned to callers.
type UserView struct {
	ID             string     `json:"id"`
	UserName       string     `json:"username"`
	Role           Role       `json:"role"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt"`
	TotalUsageTime int64      `json:"totalUsageTime"`
	LoginCount     int64      `json:"loginCount"`
}

// View returns the sanitized projection of u.
func (u *User) View() *UserView {
	v := &UserView{
		ID:             u.ID,
		UserName:       u.UserName,
		Role:           u.Role,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		TotalUsageTime: u.TotalUsageTime,
		LoginCount:     u.LoginCount,
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		v.LastLoginAt = &t
	}
	return v
}

// IsAdmin reports whether the projected user holds the admin role.
func (v *UserView) IsAdmin() bool {
	return v != nil && v.Role == RoleAdmin
}
