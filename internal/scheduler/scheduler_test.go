package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/peacewatch/peacewatch/config"
	"github.com/peacewatch/peacewatch/internal/feed"
	"github.com/peacewatch/peacewatch/internal/matcher"
	"github.com/peacewatch/peacewatch/internal/models"
	"github.com/peacewatch/peacewatch/internal/realtime"
	"github.com/peacewatch/peacewatch/internal/store"
)

type fakeFetcher struct {
	mu      sync.Mutex
	items   map[string][]feed.Item
	err     map[string]error
	fetches int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]feed.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if err := f.err[url]; err != nil {
		return nil, err
	}
	return f.items[url], nil
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func testConfig(urls ...string) config.SchedulerConfig {
	return config.SchedulerConfig{
		Interval:    time.Hour, // ticks never fire during tests
		FeedURLs:    urls,
		Keywords:    []string{"attack", "kidnap"},
		WorkerCount: 4,
		RateLimit:   1000,
	}
}

func newTestScheduler(fetcher Fetcher, cfg config.SchedulerConfig) (*Scheduler, *store.InMemoryStore) {
	s := store.NewInMemoryStore()
	sched := New(s, fetcher, matcher.NewKeywordMatcher(cfg.Keywords), &realtime.NoopPublisher{}, cfg)
	return sched, s
}

func TestRunCycle_StoresMatches(t *testing.T) {
	fetcher := &fakeFetcher{
		items: map[string][]feed.Item{
			"feed-a": {
				{Title: "Gunmen attack village", Link: "https://x/1", Description: "..."},
				{Title: "Festival holds this weekend", Link: "https://x/2", Description: "..."},
			},
		},
	}
	sched, s := newTestScheduler(fetcher, testConfig("feed-a"))

	sched.RunCycle(context.Background())

	alerts, err := s.QueryAlerts(context.Background(), models.AlertQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Text != "Gunmen attack village" {
		t.Errorf("Expected matched title as alert text, got %q", alerts[0].Text)
	}
}

func TestRunCycle_Idempotent(t *testing.T) {
	fetcher := &fakeFetcher{
		items: map[string][]feed.Item{
			"feed-a": {{Title: "Gunmen attack village", Link: "https://x/1"}},
		},
	}
	sched, s := newTestScheduler(fetcher, testConfig("feed-a"))

	sched.RunCycle(context.Background())
	sched.RunCycle(context.Background())

	alerts, err := s.QueryAlerts(context.Background(), models.AlertQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 {
		t.Errorf("Expected second cycle over unchanged feed to add nothing, got %d alerts", len(alerts))
	}
}

func TestRunCycle_FeedFailureIsolated(t *testing.T) {
	fetcher := &fakeFetcher{
		items: map[string][]feed.Item{
			"feed-ok": {{Title: "Three kidnapped on highway", Link: "https://x/3"}},
		},
		err: map[string]error{
			"feed-broken": errors.New("connection refused"),
		},
	}
	sched, s := newTestScheduler(fetcher, testConfig("feed-broken", "feed-ok"))

	sched.RunCycle(context.Background())

	alerts, err := s.QueryAlerts(context.Background(), models.AlertQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 {
		t.Errorf("Expected healthy feed to contribute despite broken feed, got %d alerts", len(alerts))
	}
}

func TestStartTwiceIsNoOp(t *testing.T) {
	fetcher := &fakeFetcher{}
	sched, _ := newTestScheduler(fetcher, testConfig("feed-a"))
	ctx := context.Background()

	if !sched.Start(ctx) {
		t.Fatal("Expected first Start to succeed")
	}
	if sched.Start(ctx) {
		t.Error("Expected second Start to be a no-op")
	}
	if !sched.IsRunning() {
		t.Error("Expected scheduler to be running")
	}

	if !sched.Stop() {
		t.Error("Expected Stop to succeed")
	}
	sched.Wait()

	if sched.IsRunning() {
		t.Error("Expected scheduler to be stopped")
	}
	if sched.Stop() {
		t.Error("Expected second Stop to be a no-op")
	}
}

func TestStartRunsImmediateCycle(t *testing.T) {
	fetcher := &fakeFetcher{
		items: map[string][]feed.Item{
			"feed-a": {{Title: "Gunmen attack village", Link: "https://x/1"}},
		},
	}
	sched, s := newTestScheduler(fetcher, testConfig("feed-a"))

	sched.Start(context.Background())
	defer func() {
		sched.Stop()
		sched.Wait()
	}()

	deadline := time.After(2 * time.Second)
	for {
		alerts, err := s.QueryAlerts(context.Background(), models.AlertQuery{})
		if err != nil {
			t.Fatal(err)
		}
		if len(alerts) == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("Expected an immediate cycle after Start")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRestartAfterStop(t *testing.T) {
	fetcher := &fakeFetcher{}
	sched, _ := newTestScheduler(fetcher, testConfig("feed-a"))
	ctx := context.Background()

	sched.Start(ctx)
	sched.Stop()
	sched.Wait()
	first := fetcher.fetchCount()

	if !sched.Start(ctx) {
		t.Fatal("Expected restart after stop to succeed")
	}
	defer func() {
		sched.Stop()
		sched.Wait()
	}()

	deadline := time.After(2 * time.Second)
	for fetcher.fetchCount() <= first {
		select {
		case <-deadline:
			t.Fatal("Expected restarted scheduler to run a cycle")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
