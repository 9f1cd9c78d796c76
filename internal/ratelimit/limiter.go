package ratelimit

import (
	"context"
	"time"
)

// Window is the sliding interval the per-key request budget applies to.
const Window = time.Minute

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter answers whether one more request under key fits inside the
// trailing window given the key's per-minute budget.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) (*Result, error)
}
