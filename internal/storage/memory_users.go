package storage

import (
	"context"

	authmodels "lifeline/internal/auth/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

func cloneUser(u *authmodels.User) *authmodels.User {
	c := *u
	return &c
}

// CreateUser fails with sentinel.ErrAlreadyUsed when the username is taken
// in any casing.
func (m *Memory) CreateUser(ctx context.Context, user *authmodels.User) error {
	defer m.lock(ctx)()
	key := authmodels.UsernameKey(user.Username)
	if _, taken := m.usernames[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	m.users[user.ID] = cloneUser(user)
	m.usernames[key] = user.ID
	return nil
}

func (m *Memory) FindUserByID(ctx context.Context, userID id.UserID) (*authmodels.User, error) {
	defer m.rlock(ctx)()
	u, ok := m.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *Memory) FindUserByUsername(ctx context.Context, username string) (*authmodels.User, error) {
	defer m.rlock(ctx)()
	userID, ok := m.usernames[authmodels.UsernameKey(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(m.users[userID]), nil
}
