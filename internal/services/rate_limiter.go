package services

import (
	"fmt"
	"sync"
	"time"
)

// SMSRateLimiter caps alerts per phone number over a sliding window.
type SMSRateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
}

// NewSMSRateLimiter creates a limiter allowing maxRequests per window.
func NewSMSRateLimiter(maxRequests int, window time.Duration) *SMSRateLimiter {
	return &SMSRateLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow checks if the request is allowed for the given phone number
func (rl *SMSRateLimiter) Allow(phoneNumber string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.pruneOld(phoneNumber, now)

	if len(rl.requests[phoneNumber]) >= rl.maxRequests {
		return fmt.Errorf("rate limit exceeded: maximum %d SMS per %v", rl.maxRequests, rl.window)
	}

	rl.requests[phoneNumber] = append(rl.requests[phoneNumber], now)
	return nil
}

// pruneOld removes requests outside the time window
func (rl *SMSRateLimiter) pruneOld(phoneNumber string, now time.Time) {
	requests, exists := rl.requests[phoneNumber]
	if !exists {
		return
	}

	cutoff := now.Add(-rl.window)
	valid := requests[:0]
	for _, req := range requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}

	if len(valid) == 0 {
		delete(rl.requests, phoneNumber)
	} else {
		rl.requests[phoneNumber] = valid
	}
}

// Reset clears all rate limiting data
func (rl *SMSRateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.requests = make(map[string][]time.Time)
}
