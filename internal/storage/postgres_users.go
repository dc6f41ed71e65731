package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	authmodels "lifeline/internal/auth/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, role, is_active, created_at`

func scanUser(row scanner) (*authmodels.User, error) {
	var (
		u      authmodels.User
		userID uuid.UUID
		role   string
	)
	if err := row.Scan(&userID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &role, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.Role = id.Role(role)
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, user *authmodels.User) error {
	_, err := p.exec(ctx).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(user.ID), user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, string(user.Role), user.Active, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (p *Postgres) FindUserByID(ctx context.Context, userID id.UserID) (*authmodels.User, error) {
	u, err := scanUser(p.exec(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (p *Postgres) FindUserByUsername(ctx context.Context, username string) (*authmodels.User, error) {
	u, err := scanUser(p.exec(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = $1`, authmodels.UsernameKey(username)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}
