package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	windowStart time.Time
	count       int
}

// memoryLimiter is the fallback fixed-window limiter used when Redis is not
// configured. Keyed by client IP.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{buckets: make(map[string]*bucket)}
}

func (l *memoryLimiter) allow(key string, rpm int) (bool, int) {
	now := time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil || now.Sub(b.windowStart) >= time.Minute {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}

	b.count++
	if b.count > rpm {
		reset := 60 - int(now.Sub(b.windowStart).Seconds())
		return false, reset
	}
	return true, 0
}

// RateLimit limits requests per client IP using the in-memory fixed window.
// Used when no Redis URL is configured.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	limiter := newMemoryLimiter()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, reset := limiter.allow(clientIP(r), rpm)
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				write429(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func write429(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
}
