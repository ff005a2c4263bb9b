package domain

import (
	"sync"
	"time"
)

const (
	DefaultMaxAttempts   = 5
	DefaultAttemptWindow = 15 * time.Minute
)

// AttemptLimiter counts failed logins per email inside a sliding window.
// Once max failures sit inside the window the email is locked until the
// oldest of them expires. Emails with no failure left in the window are
// swept at most once per window.
type AttemptLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	failures  map[string][]time.Time
	lastSweep time.Time
}

func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultAttemptWindow
	}
	return &AttemptLimiter{max: max, window: window, failures: map[string][]time.Time{}}
}

func (l *AttemptLimiter) Locked(email string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pruneLocked(email, now)) >= l.max
}

func (l *AttemptLimiter) RecordFailure(email string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweepLocked(now)
	}
	l.failures[email] = append(l.pruneLocked(email, now), now)
}

func (l *AttemptLimiter) Reset(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, email)
}

func (l *AttemptLimiter) pruneLocked(email string, now time.Time) []time.Time {
	kept := l.failures[email][:0]
	for _, at := range l.failures[email] {
		if now.Sub(at) < l.window {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, email)
		return nil
	}
	l.failures[email] = kept
	return kept
}

func (l *AttemptLimiter) sweepLocked(now time.Time) {
	for email, times := range l.failures {
		// timestamps are appended in order
		if len(times) == 0 || now.Sub(times[len(times)-1]) >= l.window {
			delete(l.failures, email)
		}
	}
	l.lastSweep = now
}
