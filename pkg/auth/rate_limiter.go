package auth

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket limiter guarding the RPC endpoint. A denied
// request is reported to the caller as a quota error, not silently dropped.
type RateLimiter struct {
	mu       sync.Mutex
	rate     float64 // tokens per second
	capacity float64
	tokens   float64
	last     time.Time
}

// NewRateLimiter allows rate operations per interval.
func NewRateLimiter(rate int64, interval time.Duration) *RateLimiter {
	if rate <= 0 || interval <= 0 {
		panic("rate and interval must be positive")
	}

	return &RateLimiter{
		rate:     float64(rate) / interval.Seconds(),
		capacity: float64(rate),
		tokens:   float64(rate),
		last:     time.Now(),
	}
}

// Allow reports whether one more request fits under the limit.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.last).Seconds()
	rl.last = now

	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}

	if rl.tokens < 1.0 {
		return false
	}

	rl.tokens--
	return true
}

// WaitTime returns how long to wait before the next token is available.
func (rl *RateLimiter) WaitTime() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens >= 1.0 {
		return 0
	}

	needed := 1.0 - rl.tokens
	return time.Duration(needed / rl.rate * float64(time.Second))
}

// Reset refills the bucket.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = rl.capacity
	rl.last = time.Now()
}
