package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(clock *fakeClock) *Limiter {
	return New(Config{
		Capacity:    5,
		RefillEvery: 6 * time.Second,
		RetryAfter:  6 * time.Second,
		Now:         clock.Now,
	})
}

func TestFiveCallsThenThrottled(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		require.True(t, limiter.CheckAndConsume("s1").Allowed, "call %d should pass", i+1)
	}

	denied := limiter.CheckAndConsume("s1")
	assert.False(t, denied.Allowed)
	assert.Equal(t, 6*time.Second, denied.RetryAfter)
}

func TestRefillGrantsExactlyOneToken(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		limiter.CheckAndConsume("s1")
	}
	require.False(t, limiter.CheckAndConsume("s1").Allowed)

	clock.Advance(6 * time.Second)
	assert.True(t, limiter.CheckAndConsume("s1").Allowed)
	assert.False(t, limiter.CheckAndConsume("s1").Allowed)
}

func TestRefillIsCappedAtCapacity(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(clock)

	limiter.CheckAndConsume("s1")
	clock.Advance(time.Hour)

	allowed := 0
	for i := 0; i < 10; i++ {
		if limiter.CheckAndConsume("s1").Allowed {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}

func TestSessionsHaveIndependentBuckets(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		limiter.CheckAndConsume("s1")
	}
	require.False(t, limiter.CheckAndConsume("s1").Allowed)
	assert.True(t, limiter.CheckAndConsume("s2").Allowed)
}

func TestNewAppliesDefaults(t *testing.T) {
	limiter := New(Config{})
	assert.Equal(t, DefaultCapacity, limiter.burst)
	assert.Equal(t, DefaultRetryAfter, limiter.retry)
	assert.True(t, limiter.CheckAndConsume("any").Allowed)
}
