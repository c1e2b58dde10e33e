package cache

import (
	"sync"
	"time"
)

type Cache struct {
	Storage sync.Map
}

// RateLimiter counts hits per key in a fixed window that starts with the
// first hit. Counts are per process.
type RateLimiter struct {
	mu     sync.Mutex
	cache  *Cache
	window time.Duration
}

type hits struct {
	n int
}

func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{cache: InitStorage(), window: window}
}

// Allow records a hit for key. false once key used up limit hits inside
// the window
func (r *RateLimiter) Allow(key string, limit int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.cache.Load(key).(*hits)
	if !ok {
		// expiration is set once, later hits do not extend the window
		h = &hits{}
		r.cache.Set(key, h, r.window)
	}
	if h.n >= limit {
		return false
	}

	h.n++
	return true
}
