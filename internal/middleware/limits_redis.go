package middleware

import (
	"net/http"
	"strconv"

	"github.com/peacewatch/peacewatch/internal/logger"
	"github.com/peacewatch/peacewatch/internal/ratelimit"
)

// RedisRateLimit limits requests per client IP using the Redis-backed
// manager; a nil manager disables the middleware. Redis errors fail open:
// a limiter outage must not take the submission endpoints with it.
func RedisRateLimit(m *ratelimit.Manager, rpm int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, reset, err := m.Allow(r.Context(), clientIP(r), rpm)
			if err != nil {
				logger.Warn("rate limiter unavailable; allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				write429(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
