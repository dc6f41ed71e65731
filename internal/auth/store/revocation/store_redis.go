package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var revocationCheckSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "lifeline_token_revocation_check_seconds",
	Help:    "Time spent asking Redis whether a token was logged out",
	Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
})

const keyPrefix = "lifeline:logout:"

// RedisTRL shares logouts between server instances. Each key lives exactly
// as long as the token it blocks.
type RedisTRL struct {
	client *redis.Client
}

func NewRedisTRL(client *redis.Client) *RedisTRL {
	return &RedisTRL{client: client}
}

func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if err := t.client.SetNX(ctx, keyPrefix+jti, time.Now().UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke %s: %w", jti, err)
	}
	return nil
}

func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	timer := prometheus.NewTimer(revocationCheckSeconds)
	defer timer.ObserveDuration()

	n, err := t.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation of %s: %w", jti, err)
	}
	return n > 0, nil
}
