// Package ratelimit throttles guessable endpoints per client IP.
//
// The workflow itself puts no limit on verification code attempts, so the
// HTTP edge caps how fast one client can try codes or registration numbers.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a denied caller should wait.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Windows is an in-memory sliding-window counter keyed by caller.
type Windows struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time
}

// NewWindows creates an empty counter. now may be nil.
func NewWindows(now func() time.Time) *Windows {
	if now == nil {
		now = time.Now
	}
	return &Windows{buckets: make(map[string][]time.Time), now: now}
}

// Allow records one request for key if fewer than limit were seen within
// window.
func (w *Windows) Allow(key string, limit int, window time.Duration) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	stamps := prune(w.buckets[key], now.Add(-window))
	if len(stamps) >= limit {
		w.buckets[key] = stamps
		return Result{Allowed: false, Limit: limit, ResetAt: stamps[0].Add(window)}
	}
	stamps = append(stamps, now)
	w.buckets[key] = stamps
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(stamps),
		ResetAt:   stamps[0].Add(window),
	}
}

// Sweep drops keys with no requests inside window.
func (w *Windows) Sweep(window time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.now().Add(-window)
	for key, stamps := range w.buckets {
		if stamps = prune(stamps, cutoff); len(stamps) == 0 {
			delete(w.buckets, key)
		} else {
			w.buckets[key] = stamps
		}
	}
}

func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}
