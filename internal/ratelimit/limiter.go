// Package ratelimit implements the process-wide gate in front of upstream LLM calls.
//
// The limiter is deliberately approximate: it only trips when requests are
// both numerous within the window and bursty. Each process keeps its own
// state; several replicas do not share a budget.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/domain"
)

// State is the limiter's mode.
type State string

const (
	StateNormal  State = "NORMAL"
	StateLimited State = "LIMITED"
)

// Config holds the limiter's timing rules.
type Config struct {
	// Window is how long requests accumulate before the count resets.
	Window time.Duration
	// Cooldown is how long calls are rejected once LIMITED.
	Cooldown time.Duration
	// BurstInterval and BurstThreshold define a burst: a call arriving
	// within BurstInterval of the previous one while more than
	// BurstThreshold calls were accepted in the window.
	BurstInterval  time.Duration
	BurstThreshold int
}

// DefaultConfig returns the 1h window, 5m cooldown, 6s / 10 request rule.
func DefaultConfig() Config {
	return Config{
		Window:         time.Hour,
		Cooldown:       5 * time.Minute,
		BurstInterval:  6 * time.Second,
		BurstThreshold: 10,
	}
}

// ConfigFrom converts the ratelimit config section.
func ConfigFrom(c config.RateLimitConfig) Config {
	return Config{
		Window:         c.Window,
		Cooldown:       c.Cooldown,
		BurstInterval:  c.BurstInterval,
		BurstThreshold: c.BurstThreshold,
	}
}

// LimitedError is returned for a rejected call. It matches domain.ErrRateLimited.
type LimitedError struct {
	RetryAfter time.Duration
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("%s: retry after %s", domain.ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *LimitedError) Unwrap() error { return domain.ErrRateLimited }

// Snapshot is a point-in-time copy of the limiter state.
type Snapshot struct {
	State       State     `json:"state"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
	LastRequest time.Time `json:"last_request"`
	LimitedAt   time.Time `json:"limited_at,omitempty"`
}

// Limiter is safe for concurrent use.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu          sync.Mutex
	windowStart time.Time
	lastRequest time.Time
	limitedAt   time.Time
	count       int
	limited     bool
}

// New creates a limiter. The first call always opens a fresh window.
func New(cfg Config) *Limiter {
	return &Limiter{cfg: cfg, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records an attempt and returns a *LimitedError if it must be rejected.
func (l *Limiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// A window reset clears LIMITED even in the middle of a cooldown.
	if now.Sub(l.windowStart) > l.cfg.Window {
		l.count = 0
		l.limited = false
		l.windowStart = now
	}

	if l.limited {
		if now.Before(l.limitedAt.Add(l.cfg.Cooldown)) {
			return &LimitedError{RetryAfter: l.limitedAt.Add(l.cfg.Cooldown).Sub(now)}
		}
		l.limited = false
	}

	if now.Sub(l.lastRequest) < l.cfg.BurstInterval && l.count > l.cfg.BurstThreshold {
		l.limited = true
		l.limitedAt = now
		return &LimitedError{RetryAfter: l.cfg.Cooldown}
	}

	l.lastRequest = now
	l.count++
	return nil
}

// Snapshot returns the current state without recording an attempt.
func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		State:       StateNormal,
		Count:       l.count,
		WindowStart: l.windowStart,
		LastRequest: l.lastRequest,
	}
	if l.limited && l.now().Before(l.limitedAt.Add(l.cfg.Cooldown)) {
		s.State = StateLimited
		s.LimitedAt = l.limitedAt
	}
	return s
}
