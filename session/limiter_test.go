package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(start time.Time) (*LockoutLimiter, *time.Time) {
	now := start
	l := NewLockoutLimiter(5, 5*time.Minute)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLockoutLimiter_LocksAfterMaxFailures(t *testing.T) {
	// GIVEN: five failures inside the window
	// THEN: the client is refused with a retry hint

	l, _ := newTestLimiter(time.Unix(1_700_000_000, 0))

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("10.0.0.1")
		assert.True(t, ok, "attempt %d should be allowed", i)
		l.RecordFailure("10.0.0.1")
	}

	ok, retryAfter := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 5*time.Minute, retryAfter)
}

func TestLockoutLimiter_FailuresAgeOut(t *testing.T) {
	l, now := newTestLimiter(time.Unix(1_700_000_000, 0))

	for i := 0; i < 5; i++ {
		l.RecordFailure("10.0.0.1")
	}
	ok, _ := l.Allow("10.0.0.1")
	assert.False(t, ok)

	*now = now.Add(5*time.Minute + time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok, "failures older than the window are forgotten")
}

func TestLockoutLimiter_SuccessClearsHistory(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1_700_000_000, 0))

	for i := 0; i < 4; i++ {
		l.RecordFailure("10.0.0.1")
	}
	l.RecordSuccess("10.0.0.1")
	l.RecordFailure("10.0.0.1")

	ok, _ := l.Allow("10.0.0.1")
	assert.True(t, ok, "a success resets the failure count")
}

func TestLockoutLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1_700_000_000, 0))

	for i := 0; i < 5; i++ {
		l.RecordFailure("10.0.0.1")
	}

	ok, _ := l.Allow("10.0.0.2")
	assert.True(t, ok, "one client's lockout must not affect another")
}
