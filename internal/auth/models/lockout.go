package models

import (
	"strings"
	"time"
)

// LoginFailures tracks failed password attempts for one username from one
// client address.
type LoginFailures struct {
	Key           string
	FailureCount  int
	LastFailureAt time.Time
	LockedUntil   *time.Time
}

// LockoutKey composes the lockout identifier. Usernames match
// case-insensitively, like login itself.
func LockoutKey(username, clientIP string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + clientIP
}

func (l *LoginFailures) IsLockedAt(now time.Time) bool {
	return l != nil && l.LockedUntil != nil && now.Before(*l.LockedUntil)
}

// StaleAt reports whether the failure window has passed since the last
// failure, or an earlier lock has run out. Either way counting starts over.
func (l *LoginFailures) StaleAt(now time.Time, window time.Duration) bool {
	if l.LockedUntil != nil && !now.Before(*l.LockedUntil) {
		return true
	}
	return !l.LastFailureAt.After(now.Add(-window))
}
