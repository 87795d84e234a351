// Package scheduler runs the periodic fetch-match-store cycle over the
// configured news feeds.
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/peacewatch/peacewatch/config"
	"github.com/peacewatch/peacewatch/internal/feed"
	"github.com/peacewatch/peacewatch/internal/logger"
	"github.com/peacewatch/peacewatch/internal/metrics"
	"github.com/peacewatch/peacewatch/internal/models"
	"github.com/peacewatch/peacewatch/internal/realtime"
	"github.com/peacewatch/peacewatch/internal/store"
	"github.com/peacewatch/peacewatch/pkg/utils"
)

// Fetcher retrieves and parses one feed
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Item, error)
}

// Matcher decides whether a feed item becomes an alert
type Matcher interface {
	Matches(item feed.Item) bool
}

// Scheduler owns the loop state. The running flag is the single-flight
// guard: Start while running is a no-op, never a second loop.
type Scheduler struct {
	store     store.AlertStore
	fetcher   Fetcher
	matcher   Matcher
	publisher realtime.Publisher
	cfg       config.SchedulerConfig
	sem       *semaphore.Weighted
	limiter   *rate.Limiter

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates a Scheduler in the STOPPED state
func New(alertStore store.AlertStore, fetcher Fetcher, m Matcher, publisher realtime.Publisher, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		store:     alertStore,
		fetcher:   fetcher,
		matcher:   m,
		publisher: publisher,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.WorkerCount)),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)),
	}
}

// Start transitions STOPPED -> RUNNING and launches the loop. Returns false
// without side effects when already running.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logger.Warn("scheduler start ignored; already running")
		return false
	}

	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(ctx, s.stop, s.done)
	logger.Info("scheduler started", "interval", s.cfg.Interval, "feeds", len(s.cfg.FeedURLs))
	return true
}

// Stop signals the loop to exit. The running flag clears once the loop
// observes the signal; an in-flight cycle completes first. Returns false
// when not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}

	close(s.stop)
	s.running = false
	logger.Info("scheduler stop requested")
	return true
}

// IsRunning reports the loop state
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until the loop goroutine has exited. Nil-safe before the
// first Start.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// run executes cycles until stopped. The stop signal is checked at the tick
// boundary: stopping mid-wait schedules no further cycle.
func (s *Scheduler) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	s.RunCycle(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			logger.Info("scheduler stopped")
			return
		case <-ctx.Done():
			logger.Info("scheduler context cancelled")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle performs one fetch-match-store pass over all configured feeds.
// Feed failures are isolated: a broken source only loses its own items.
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.RecordCycle(time.Since(start))
	}()

	var wg sync.WaitGroup
	for _, url := range s.cfg.FeedURLs {
		if ctx.Err() != nil {
			return
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}

		url := url
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.sem.Release(1)
			s.processFeed(ctx, url)
		}()
	}
	wg.Wait()

	logger.Debug("cycle complete", "duration_ms", time.Since(start).Milliseconds())
}

// processFeed fetches one feed and stores its keyword matches
func (s *Scheduler) processFeed(ctx context.Context, url string) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}

	items, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Error("feed fetch failed", "url", url, "error", err)
		metrics.RecordFeedFetch(url, "error")
		return
	}
	metrics.RecordFeedFetch(url, "success")

	stored := 0
	for _, item := range items {
		if !s.matcher.Matches(item) {
			continue
		}

		alert := models.Alert{
			ID:         utils.HashString(item.Title),
			Text:       item.Title,
			URL:        item.Link,
			Source:     url,
			DetectedAt: time.Now().UTC(),
		}

		created, err := s.store.InsertAlertIfNew(ctx, alert)
		if err != nil {
			logger.Error("store alert failed", "text", alert.Text, "error", err)
			metrics.RecordAlert("error")
			continue
		}
		if !created {
			metrics.RecordAlert("duplicate")
			continue
		}
		metrics.RecordAlert("created")
		stored++

		if err := s.publisher.PublishAlert(alert); err != nil {
			logger.Warn("realtime publish failed", "alert_id", alert.ID, "error", err)
		}
	}

	if stored > 0 {
		logger.Info("stored new alerts", "url", url, "count", stored)
	}
}
