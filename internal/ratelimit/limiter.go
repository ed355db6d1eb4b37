// Package ratelimit caps per-user request volume with process-local counters.
package ratelimit

import "sync"

// Limiter counts requests per user for the life of the process. Counters never
// decay: a user who reaches the ceiling stays blocked until restart. This is
// the documented contract, not an oversight to be fixed here.
type Limiter struct {
	mu      sync.Mutex
	ceiling int
	counts  map[string]int
}

// New creates a limiter with the given per-user request ceiling.
func New(ceiling int) *Limiter {
	return &Limiter{
		ceiling: ceiling,
		counts:  make(map[string]int),
	}
}

// Allow reports whether the user may proceed, incrementing the counter on
// success. Increment-and-check happens under one lock, so no interleaving of
// concurrent calls lets more than the ceiling through for a single user.
func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.counts[userID] >= l.ceiling {
		return false
	}
	l.counts[userID]++
	return true
}
