package httpapi

import (
	"sync"
	"time"
)

// syncLimiter allows at most max events per key in a sliding window.
type syncLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time
}

func newSyncLimiter(max int, window time.Duration) *syncLimiter {
	if max <= 0 {
		max = 6
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &syncLimiter{
		window:  window,
		max:     max,
		entries: make(map[string][]time.Time),
	}
}

func (l *syncLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	ts := l.entries[key]

	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	ts = kept
	if len(ts) >= l.max {
		l.entries[key] = ts
		return false
	}

	l.entries[key] = append(ts, now)
	return true
}
