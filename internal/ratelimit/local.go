package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/cafelink/internal/clock"
)

// localWindow keeps per-key request timestamps in process memory. It is the
// fallback when no redis address is configured; single replica only.
type localWindow struct {
	clock clock.Clock

	mu      sync.Mutex
	history map[string][]time.Time
}

func NewLocalWindow(c clock.Clock) Limiter {
	return &localWindow{
		clock:   c,
		history: make(map[string][]time.Time),
	}
}

func (l *localWindow) Allow(_ context.Context, key string, limit int) (*Result, error) {
	now := l.clock.Now()
	cutoff := now.Add(-Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.history[key][:0]
	for _, ts := range l.history[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	out := &Result{Limit: limit}
	if len(kept) < limit {
		out.Allowed = true
		kept = append(kept, now)
	} else {
		out.RetryAfter = Window
	}
	l.history[key] = kept

	out.Remaining = limit - len(kept)
	if out.Remaining < 0 {
		out.Remaining = 0
	}
	return out, nil
}
