package lockout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lifeline/internal/auth/models"
)

// PostgresStore persists login failure counters so lockouts hold across
// replicas. Login runs outside any store transaction, so it uses the pool
// directly.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const lockoutColumns = `key, failure_count, last_failure_at, locked_until`

func (s *PostgresStore) Get(ctx context.Context, key string) (*models.LoginFailures, error) {
	record, err := scanLoginFailures(s.db.QueryRowContext(ctx,
		`SELECT `+lockoutColumns+` FROM auth_lockouts WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get auth lockout: %w", err)
	}
	return record, nil
}

// RecordFailure increments the counter in one statement so concurrent
// failures cannot skip the threshold. A stale row starts over at one.
func (s *PostgresStore) RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*models.LoginFailures, error) {
	record, err := scanLoginFailures(s.db.QueryRowContext(ctx, `
		INSERT INTO auth_lockouts (key, failure_count, last_failure_at, locked_until)
		VALUES ($1, 1, $2, NULL)
		ON CONFLICT (key) DO UPDATE SET
			failure_count = CASE
				WHEN auth_lockouts.last_failure_at <= $3
					OR auth_lockouts.locked_until <= $2 THEN 1
				ELSE auth_lockouts.failure_count + 1
			END,
			locked_until = CASE
				WHEN auth_lockouts.locked_until <= $2 THEN NULL
				ELSE auth_lockouts.locked_until
			END,
			last_failure_at = $2
		RETURNING `+lockoutColumns,
		key, now, now.Add(-window)))
	if err != nil {
		return nil, fmt.Errorf("record auth failure: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Lock(ctx context.Context, key string, until time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE auth_lockouts SET locked_until = $2 WHERE key = $1`, key, until); err != nil {
		return fmt.Errorf("lock auth key: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_lockouts WHERE key = $1`, key); err != nil {
		return fmt.Errorf("clear auth lockout: %w", err)
	}
	return nil
}

func scanLoginFailures(row interface{ Scan(dest ...any) error }) (*models.LoginFailures, error) {
	var (
		record      models.LoginFailures
		lockedUntil sql.NullTime
	)
	if err := row.Scan(&record.Key, &record.FailureCount, &record.LastFailureAt, &lockedUntil); err != nil {
		return nil, err
	}
	if lockedUntil.Valid {
		until := lockedUntil.Time
		record.LockedUntil = &until
	}
	return &record, nil
}
