package server

import "time"

// TokenBucket is a small token bucket limiter. It is not thread-safe; the
// accept loop is its only caller.
type TokenBucket struct {
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
}

func NewTokenBucket(ratePerSec, burst int) *TokenBucket {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst <= 0 {
		burst = ratePerSec
	}
	return &TokenBucket{
		rate:   float64(ratePerSec),
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// Allow reports whether a token is available, refilling over elapsed time.
func (t *TokenBucket) Allow() bool {
	now := time.Now()
	t.tokens += now.Sub(t.last).Seconds() * t.rate
	t.last = now
	if t.tokens > t.burst {
		t.tokens = t.burst
	}
	if t.tokens < 1 {
		return false
	}
	t.tokens--
	return true
}
