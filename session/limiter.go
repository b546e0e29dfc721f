/*
limiter.go - Login attempt limiter

PURPOSE:
  Per-client lockout for the login endpoint. A client that fails too many
  times inside the window is refused before credentials are even checked,
  so lockout leaks nothing about whether the account exists.

SEMANTICS:
  - Failures older than the window are forgotten on the next check.
  - A successful login clears the client's failure history.
  - State is in-memory and per-process; a restart clears all lockouts.
*/
package session

import (
	"sync"
	"time"
)

// Limiter gates login attempts per client key (normally the remote IP).
type Limiter interface {
	// Allow reports whether the client may attempt a login right now.
	// When refused, retryAfter is how long until the oldest counted
	// failure ages out.
	Allow(key string) (ok bool, retryAfter time.Duration)

	RecordFailure(key string)
	RecordSuccess(key string)
}

// LockoutLimiter locks a client out after maxFailures failed attempts
// within window.
type LockoutLimiter struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	now         func() time.Time
	failures    map[string][]time.Time
}

func NewLockoutLimiter(maxFailures int, window time.Duration) *LockoutLimiter {
	return &LockoutLimiter{
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
		failures:    make(map[string][]time.Time),
	}
}

func (l *LockoutLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key)
	if len(recent) < l.maxFailures {
		return true, 0
	}
	return false, recent[0].Add(l.window).Sub(l.now())
}

func (l *LockoutLimiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[key] = append(l.prune(key), l.now())
}

func (l *LockoutLimiter) RecordSuccess(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
}

// prune drops failures older than the window. Caller holds the lock.
func (l *LockoutLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	kept := l.failures[key][:0]
	for _, t := range l.failures[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = kept
	return kept
}
