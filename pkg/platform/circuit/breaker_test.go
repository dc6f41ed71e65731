package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCacheBreaker(clock *fakeClock, opts ...Option) *Breaker {
	opts = append([]Option{withClock(clock.Now)}, opts...)
	return New("leaderboard-cache", opts...)
}

func TestBreakerStartsClosed(t *testing.T) {
	b := New("leaderboard-cache")

	assert.Equal(t, "leaderboard-cache", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerTransitions(t *testing.T) {
	type step struct {
		fail      bool
		wantOpen  bool
		wantEvent StateChange
	}
	cases := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "opens on the threshold-th consecutive failure",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{fail: true},
				{fail: true},
				{fail: true, wantOpen: true, wantEvent: StateChange{Opened: true}},
			},
		},
		{
			name: "a success in between restarts the count",
			opts: []Option{WithFailureThreshold(2)},
			steps: []step{
				{fail: true},
				{fail: false},
				{fail: true},
				{fail: true, wantOpen: true, wantEvent: StateChange{Opened: true}},
			},
		},
		{
			name: "needs the configured successes to close",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{fail: true, wantOpen: true, wantEvent: StateChange{Opened: true}},
				{fail: false, wantOpen: true},
				{fail: false, wantEvent: StateChange{Closed: true}},
			},
		},
		{
			name: "a failed probe keeps it open",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{fail: true, wantOpen: true, wantEvent: StateChange{Opened: true}},
				{fail: false, wantOpen: true},
				{fail: true, wantOpen: true},
				{fail: false, wantOpen: true},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newCacheBreaker(&fakeClock{now: time.Now()}, tc.opts...)
			for i, s := range tc.steps {
				var change StateChange
				if s.fail {
					_, change = b.RecordFailure()
				} else {
					_, change = b.RecordSuccess()
				}
				require.Equal(t, s.wantEvent, change, "step %d", i)
				require.Equal(t, s.wantOpen, b.IsOpen(), "step %d", i)
			}
		})
	}
}

func TestBreakerLetsProbesThroughAfterCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
	b := newCacheBreaker(clock, WithFailureThreshold(1), WithCooldown(30*time.Second))

	useFallback, _ := b.RecordFailure()
	require.True(t, useFallback)
	assert.False(t, b.Allow())

	clock.Advance(29 * time.Second)
	assert.False(t, b.Allow())

	clock.Advance(time.Second)
	assert.True(t, b.Allow(), "probe allowed once the cooldown elapsed")

	// The probe failed: the cooldown starts over.
	b.RecordFailure()
	assert.False(t, b.Allow())

	clock.Advance(30 * time.Second)
	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
}

func TestBreakerReset(t *testing.T) {
	b := newCacheBreaker(&fakeClock{now: time.Now()}, WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()

	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerIsSafeForConcurrentCallers(t *testing.T) {
	b := New("leaderboard-cache", WithFailureThreshold(1000))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if (i+j)%2 == 0 {
					b.RecordFailure()
				} else {
					b.RecordSuccess()
				}
				b.Allow()
			}
		}(i)
	}
	wg.Wait()
	assert.False(t, b.IsOpen())
}
