package models

import (
	"strings"
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// User is an account. Usernames are unique case-insensitively; the stored
// value keeps the casing given at registration.
type User struct {
	ID           id.UserID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         id.Role
	Active       bool
	CreatedAt    time.Time
}

// NewUser builds an active account. The password must already be hashed.
func NewUser(userID id.UserID, username, email, firstName, lastName, passwordHash string, role id.Role, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if len(username) > 150 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username must be 150 characters or less")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &User{
		ID:           userID,
		Username:     username,
		Email:        strings.TrimSpace(email),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
	}, nil
}

// DisplayName is "first last" when either is set, otherwise the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// UsernameKey is the normalized form used for uniqueness.
func UsernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
