// Package lockout throttles password guessing. Each username and client
// address pair gets a failure budget per window; spending it locks the pair
// out of login for a fixed period.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"lifeline/internal/auth/models"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/requestcontext"
)

// Store persists failure counters. Get returns nil, nil for an unknown key.
type Store interface {
	Get(ctx context.Context, key string) (*models.LoginFailures, error)
	RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*models.LoginFailures, error)
	Lock(ctx context.Context, key string, until time.Time) error
	Clear(ctx context.Context, key string) error
}

type Config struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Window: 15 * time.Minute, LockDuration: 15 * time.Minute}
}

type Service struct {
	store  Store
	cfg    Config
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig replaces the defaults; zero fields keep their default.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.MaxAttempts > 0 {
			s.cfg.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.Window > 0 {
			s.cfg.Window = cfg.Window
		}
		if cfg.LockDuration > 0 {
			s.cfg.LockDuration = cfg.LockDuration
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	s := &Service{store: store, cfg: DefaultConfig(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Check refuses a login attempt while the pair is locked.
func (s *Service) Check(ctx context.Context, username, clientIP string) error {
	record, err := s.store.Get(ctx, models.LockoutKey(username, clientIP))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load login lockout")
	}
	now := requestcontext.Now(ctx)
	if !record.IsLockedAt(now) {
		return nil
	}
	retryAfter := int(record.LockedUntil.Sub(now).Round(time.Second).Seconds())
	return dErrors.New(dErrors.CodeRateLimited, "Too many failed login attempts. Try again later.").
		WithDetails("retry_after", strconv.Itoa(max(retryAfter, 1)))
}

// RecordFailure counts one failed attempt and locks the pair once the
// window's budget is spent. It reports whether this failure set the lock.
func (s *Service) RecordFailure(ctx context.Context, username, clientIP string) (bool, error) {
	key := models.LockoutKey(username, clientIP)
	now := requestcontext.Now(ctx)
	record, err := s.store.RecordFailure(ctx, key, now, s.cfg.Window)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login failure")
	}
	if record.FailureCount < s.cfg.MaxAttempts || record.IsLockedAt(now) {
		return false, nil
	}
	until := now.Add(s.cfg.LockDuration)
	if err := s.store.Lock(ctx, key, until); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock login")
	}
	s.logger.WarnContext(ctx, "login locked out",
		"request_id", requestcontext.RequestID(ctx),
		"username", username,
		"failures", record.FailureCount,
		"locked_until", until,
	)
	return true, nil
}

// Clear forgets the pair's failures after a successful login.
func (s *Service) Clear(ctx context.Context, username, clientIP string) error {
	if err := s.store.Clear(ctx, models.LockoutKey(username, clientIP)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear login failures")
	}
	return nil
}
