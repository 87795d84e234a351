// Package ratelimit provides a Redis-backed fixed-window request limiter
// for the public submission endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Manager counts requests per caller in one-minute windows
type Manager struct {
	redis *redis.Client
}

// NewManager connects to Redis and verifies the connection
func NewManager(redisURL string) (*Manager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Manager{redis: client}, nil
}

// Close releases the Redis connection
func (m *Manager) Close() error { return m.redis.Close() }

// Allow increments the caller's counter for the current minute window and
// reports whether the request fits under rpm. resetSec is the time until the
// window rolls over, for the Retry-After header.
func (m *Manager) Allow(ctx context.Context, key string, rpm int) (allowed bool, resetSec int, err error) {
	now := time.Now().UTC()
	window := now.Unix() / 60
	rk := fmt.Sprintf("rl:%s:%d", key, window)

	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, time.Minute)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if int(incr.Val()) > rpm {
		return false, 60 - int(now.Unix()%60), nil
	}
	return true, 0, nil
}
