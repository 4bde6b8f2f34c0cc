// Package throttle holds the error rate limiter and the accept backoff used
// by the listeners.
package throttle

import (
	"sync"
	"time"
)

// Limiter decides whether an error message should be reported
type Limiter interface {
	Allow(message string) bool
}

type limiter struct {
	cooldown time.Duration
	now      func() time.Time
	mu       sync.Mutex
	last     string
	lastAt   time.Time
	reported bool
}

// NewLimiter allows a message when it differs from the last allowed one or
// when cooldown has passed since then
func NewLimiter(cooldown time.Duration) Limiter {
	return newLimiter(cooldown, time.Now)
}

func newLimiter(cooldown time.Duration, now func() time.Time) *limiter {
	return &limiter{cooldown: cooldown, now: now}
}

// Allow reports whether message should be surfaced and records it if so
func (l *limiter) Allow(message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()

	if l.reported && message == l.last && t.Sub(l.lastAt) < l.cooldown {
		return false
	}

	l.reported = true
	l.last = message
	l.lastAt = t

	return true
}

// MinBackoff is the smallest delay a Backoff ever returns
const MinBackoff = 10 * time.Millisecond

// Backoff produces exponentially growing delays up to a cap
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a backoff starting at initial and capped at max
func NewBackoff(initial, max time.Duration) *Backoff {
	if initial < MinBackoff {
		initial = MinBackoff
	}

	if max < initial {
		max = initial
	}

	return &Backoff{initial: initial, max: max}
}

// Next returns the delay to wait now and doubles the following one
func (b *Backoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.initial
	}

	d := b.current

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}

	return d
}

// Reset starts the sequence over
func (b *Backoff) Reset() {
	b.current = 0
}
