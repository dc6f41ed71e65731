package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	donormodels "lifeline/internal/donor/models"
	"lifeline/internal/leaderboard"
	"lifeline/internal/leaderboard/metrics"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/circuit"
	"lifeline/pkg/requestcontext"
)

type RowStore interface {
	ListLeaderboard(ctx context.Context, limit int) ([]donormodels.LeaderboardRow, error)
}

type Cache interface {
	Get(ctx context.Context, limit int) (*leaderboard.Board, bool, error)
	Set(ctx context.Context, limit int, board *leaderboard.Board) error
	Invalidate(ctx context.Context) error
}

// Service serves the ranked board. With a cache configured, reads go to
// Redis first; concurrent misses for the same limit share one store query,
// and a run of cache failures opens the breaker so reads go straight to the
// store until it cools down.
type Service struct {
	store   RowStore
	cache   Cache
	breaker *circuit.Breaker
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store RowStore, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = circuit.New("leaderboard-cache")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Top returns the best donors, at most limit of them. Out-of-range limits
// are clamped the same way ParseLimit does. With a cache configured the board
// may trail the counters by up to the cache TTL (LEADERBOARD_CACHE_TTL) when
// an invalidation could not reach the cache.
func (s *Service) Top(ctx context.Context, limit int) (*leaderboard.Board, error) {
	if limit < 1 {
		limit = leaderboard.DefaultLimit
	}
	limit = min(limit, leaderboard.MaxLimit)

	if board, ok := s.cached(ctx, limit); ok {
		s.metrics.IncrementHit()
		return board, nil
	}
	s.metrics.IncrementMiss()

	// The shared call must not die with whichever request started it.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(strconv.Itoa(limit), func() (any, error) {
		start := time.Now()
		rows, err := s.store.ListLeaderboard(fillCtx, limit)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load leaderboard")
		}
		board := leaderboard.Rank(rows)
		s.metrics.ObserveBuild(time.Since(start).Seconds())
		s.fill(fillCtx, limit, &board)
		return &board, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*leaderboard.Board), nil
}

// Invalidate drops cached boards. It runs even while the breaker is open so
// a recovering Redis never serves a board older than the last write.
func (s *Service) Invalidate(ctx context.Context) error {
	for limit := 1; limit <= leaderboard.MaxLimit; limit++ {
		s.group.Forget(strconv.Itoa(limit))
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.cacheFailed(ctx, "invalidate", err)
		return err
	}
	s.cacheSucceeded(ctx)
	return nil
}

func (s *Service) cached(ctx context.Context, limit int) (*leaderboard.Board, bool) {
	if s.cache == nil || !s.breaker.Allow() {
		return nil, false
	}
	board, hit, err := s.cache.Get(ctx, limit)
	if err != nil {
		s.cacheFailed(ctx, "get", err)
		return nil, false
	}
	s.cacheSucceeded(ctx)
	return board, hit
}

func (s *Service) fill(ctx context.Context, limit int, board *leaderboard.Board) {
	if s.cache == nil || !s.breaker.Allow() {
		return
	}
	if err := s.cache.Set(ctx, limit, board); err != nil {
		s.cacheFailed(ctx, "set", err)
		return
	}
	s.cacheSucceeded(ctx)
}

func (s *Service) cacheFailed(ctx context.Context, op string, err error) {
	s.metrics.IncrementError()
	_, change := s.breaker.RecordFailure()
	s.logger.WarnContext(ctx, "leaderboard cache error",
		"request_id", requestcontext.RequestID(ctx),
		"op", op,
		"error", err,
	)
	if change.Opened {
		s.metrics.SetBreakerOpen(true)
		s.logger.ErrorContext(ctx, "leaderboard cache breaker opened", "breaker", s.breaker.Name())
	}
}

func (s *Service) cacheSucceeded(ctx context.Context) {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.metrics.SetBreakerOpen(false)
		s.logger.InfoContext(ctx, "leaderboard cache breaker closed", "breaker", s.breaker.Name())
	}
}
