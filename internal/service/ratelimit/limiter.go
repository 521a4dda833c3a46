// Package ratelimit guards calls to the upstream model with one token
// bucket per chat session.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultCapacity    = 5
	DefaultRefillEvery = 6 * time.Second
	DefaultRetryAfter  = 6 * time.Second
)

// Config describes the bucket shape shared by every session.
type Config struct {
	Capacity    int
	RefillEvery time.Duration
	// RetryAfter is the fixed hint returned to throttled callers.
	RetryAfter time.Duration
	Now        func() time.Time
}

// Decision is the outcome of a single rate check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter keeps a lazily created bucket per session key. Buckets live as
// long as the process.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	retry   time.Duration
	now     func() time.Time
}

// New builds a Limiter, filling zero values with the defaults.
func New(cfg Config) *Limiter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.RefillEvery <= 0 {
		cfg.RefillEvery = DefaultRefillEvery
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = DefaultRetryAfter
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Every(cfg.RefillEvery),
		burst:   cfg.Capacity,
		retry:   cfg.RetryAfter,
		now:     cfg.Now,
	}
}

// CheckAndConsume takes one token from the session bucket when available.
func (l *Limiter) CheckAndConsume(sessionID string) Decision {
	bucket := l.bucket(sessionID)
	if bucket.AllowN(l.now(), 1) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, RetryAfter: l.retry}
}

func (l *Limiter) bucket(sessionID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[sessionID]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[sessionID] = b
	}
	return b
}
