package http_utils

import (
	"sync"
	"time"
)

// IPRateLimiter hands out a TokenBucket per client IP for the HTTP
// submission endpoint's 429 + Retry-After behavior (§6). Grounded on the
// same TokenBucket this file's token_bucket.go already implements for
// outbound host rate limiting, reused here for inbound per-IP limiting.
type IPRateLimiter struct {
	rate      float64
	maxTokens float64
	mu        sync.Mutex
	buckets   map[string]*TokenBucket
}

// NewIPRateLimiter creates a limiter allowing rate requests/second per IP,
// bursting up to maxTokens.
func NewIPRateLimiter(rate, maxTokens float64) *IPRateLimiter {
	return &IPRateLimiter{
		rate:      rate,
		maxTokens: maxTokens,
		buckets:   make(map[string]*TokenBucket),
	}
}

func (l *IPRateLimiter) bucketFor(ip string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		b = NewTokenBucket(l.rate, l.maxTokens, 0)
		l.buckets[ip] = b
	}
	return b
}

// Allow reports whether ip may proceed, and if not, the number of seconds
// the caller should wait before retrying.
func (l *IPRateLimiter) Allow(ip string) (bool, time.Duration) {
	b := l.bucketFor(ip)
	if b.HasToken() {
		return true, 0
	}
	retryAfter := time.Duration(float64(time.Second) / l.rate)
	return false, retryAfter
}
