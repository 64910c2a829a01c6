// Package ratelimit bounds how many collaborator calls may be made per
// rolling time window. Callers wait for capacity instead of failing.
package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// Limiter allows at most max calls per rolling window. All AI collaborators
// share one limiter so the combined call volume stays bounded.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
}

// New creates a limiter allowing max calls per window. max <= 0 disables
// limiting entirely.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Wait blocks until a call slot is available or ctx is done. On success the
// slot is consumed.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.max <= 0 {
		return nil
	}
	for {
		l.mu.Lock()
		l.prune()
		if len(l.calls) < l.max {
			l.calls = append(l.calls, l.now())
			l.mu.Unlock()
			return nil
		}
		wait := l.calls[0].Add(l.window).Sub(l.now())
		l.mu.Unlock()

		if wait < 10*time.Millisecond {
			wait = 10 * time.Millisecond
		}
		log.Printf("rate limit reached (%d calls / %s), waiting %s", l.max, l.window, wait.Round(time.Millisecond))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Used returns how many slots are currently consumed in the window.
func (l *Limiter) Used() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	return len(l.calls)
}

// prune drops call records older than the window. Caller holds mu.
func (l *Limiter) prune() {
	cutoff := l.now().Add(-l.window)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}
