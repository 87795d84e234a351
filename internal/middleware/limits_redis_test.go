package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/peacewatch/peacewatch/internal/ratelimit"
)

func TestRedisRateLimit(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	mgr, err := ratelimit.NewManager("redis://" + s.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	h := RedisRateLimit(mgr, 3)(okHandler())

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/v1/reports", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after exceeding rpm, got %d", last)
	}

	// New window admits requests again.
	s.FastForward(time.Minute)
	s.FlushAll()

	req := httptest.NewRequest("POST", "/v1/reports", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 after window reset, got %d", rec.Code)
	}
}

func TestRedisRateLimit_NilManagerPassesThrough(t *testing.T) {
	h := RedisRateLimit(nil, 1)(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/reports", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected pass-through with nil manager, got %d", rec.Code)
		}
	}
}
