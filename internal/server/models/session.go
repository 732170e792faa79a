package models

import "time"

// Session is one login event. A nil LogoutAt means the session is open.
type Session struct {
	ID       string
	UserID   string
	LoginAt  time.Time
	LogoutAt *time.Time
	// Duration is the session length in seconds, set when the session closes.
	Duration *int64
}

// IsOpen reports whether the session has not been closed yet.
func (s *Session) IsOpen() bool {
	return s.LogoutAt == nil
}

// SessionDuration returns the whole seconds elapsed between login and logout,
// never negative.
func SessionDuration(loginAt, logoutAt time.Time) int64 {
	d := int64(logoutAt.Sub(loginAt) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}
