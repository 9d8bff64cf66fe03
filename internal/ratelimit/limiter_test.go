package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/domain"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return New(DefaultConfig()).WithClock(clock.Now), clock
}

func TestLimiterBurstTripsAfterThreshold(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 1; i <= 11; i++ {
		require.NoError(t, l.Allow(), "call %d", i)
		clock.Advance(100 * time.Millisecond)
	}

	err := l.Allow()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))

	var limited *LimitedError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, 5*time.Minute, limited.RetryAfter)
	assert.Equal(t, StateLimited, l.Snapshot().State)
}

func TestLimiterRejectsDuringCooldownWithoutCounting(t *testing.T) {
	l, clock := newTestLimiter()
	for i := 0; i < 11; i++ {
		require.NoError(t, l.Allow())
	}
	require.Error(t, l.Allow())
	before := l.Snapshot().Count

	clock.Advance(4 * time.Minute)
	err := l.Allow()
	require.Error(t, err)
	var limited *LimitedError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, time.Minute, limited.RetryAfter)
	assert.Equal(t, before, l.Snapshot().Count)
}

func TestLimiterAcceptsAfterCooldown(t *testing.T) {
	l, clock := newTestLimiter()
	for i := 0; i < 11; i++ {
		require.NoError(t, l.Allow())
	}
	require.Error(t, l.Allow())

	clock.Advance(5*time.Minute + time.Second)
	assert.NoError(t, l.Allow())
}

func TestLimiterSnapshotReturnsToNormalAfterCooldown(t *testing.T) {
	l, clock := newTestLimiter()
	for i := 0; i < 11; i++ {
		require.NoError(t, l.Allow())
	}
	require.Error(t, l.Allow())
	assert.Equal(t, StateLimited, l.Snapshot().State)

	clock.Advance(5 * time.Minute)
	snap := l.Snapshot()
	assert.Equal(t, StateNormal, snap.State)
	assert.True(t, snap.LimitedAt.IsZero())

	clock.Advance(10 * time.Second)
	require.NoError(t, l.Allow())
	assert.Equal(t, StateNormal, l.Snapshot().State)
}

func TestLimiterVolumeWithoutBurstIsAccepted(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 50; i++ {
		require.NoError(t, l.Allow(), "call %d", i)
		clock.Advance(7 * time.Second)
	}
	assert.Equal(t, 50, l.Snapshot().Count)
	assert.Equal(t, StateNormal, l.Snapshot().State)
}

func TestLimiterWindowResetClearsLimited(t *testing.T) {
	l, clock := newTestLimiter()

	// Open the window, then burst near its end so the cooldown straddles the reset.
	require.NoError(t, l.Allow())
	clock.Advance(58 * time.Minute)
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Allow())
	}
	require.Error(t, l.Allow())

	clock.Advance(2*time.Minute + time.Second)
	require.NoError(t, l.Allow(), "window reset must clear LIMITED before the cooldown ends")

	snap := l.Snapshot()
	assert.Equal(t, StateNormal, snap.State)
	assert.Equal(t, 1, snap.Count)
}

func TestLimiterConcurrentUse(t *testing.T) {
	l := New(Config{Window: time.Hour, Cooldown: time.Minute, BurstInterval: time.Nanosecond, BurstThreshold: 1 << 30})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = l.Allow()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 6400, l.Snapshot().Count)
}

func TestConfigFromDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFrom(config.Default().RateLimit))
}
