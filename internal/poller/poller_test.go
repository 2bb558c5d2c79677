package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"newsagg/internal/aggregator"
)

type countingFetcher struct {
	calls   int32
	running int32
	overlap int32
	delay   time.Duration
}

func (f *countingFetcher) FetchAll(ctx context.Context) *aggregator.Summary {
	if atomic.AddInt32(&f.running, 1) > 1 {
		atomic.StoreInt32(&f.overlap, 1)
	}
	defer atomic.AddInt32(&f.running, -1)

	n := atomic.AddInt32(&f.calls, 1)
	time.Sleep(f.delay)
	return &aggregator.Summary{Providers: 3, Created: map[string]int{"Newsapi": int(n)}}
}

type recordingStorage struct {
	mu        sync.Mutex
	retention []time.Duration
	optimized int
}

func (s *recordingStorage) CleanupOldArticles(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retention = append(s.retention, retention)
	return nil
}

func (s *recordingStorage) OptimizeDatabase() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.optimized++
	return nil
}

func TestPoller_IsPolling(t *testing.T) {
	p := New(&countingFetcher{}, &recordingStorage{}, time.Minute, 0)

	if p.IsPolling() {
		t.Error("Expected poller to not be polling initially")
	}

	p.Start()
	if !p.IsPolling() {
		t.Error("Expected poller to be polling after start")
	}

	p.Stop()
	if p.IsPolling() {
		t.Error("Expected poller to not be polling after stop")
	}

	// Stopping twice is a no-op
	p.Stop()
}

func TestPoller_PollsOnStartAndInterval(t *testing.T) {
	fetcher := &countingFetcher{}
	p := New(fetcher, &recordingStorage{}, 20*time.Millisecond, 0)

	p.Start()
	time.Sleep(110 * time.Millisecond)
	p.Stop()

	if calls := atomic.LoadInt32(&fetcher.calls); calls < 3 {
		t.Errorf("Expected at least 3 cycles, got %d", calls)
	}
	if p.GetLastPolledTime().IsZero() {
		t.Error("Expected last polled time to be set")
	}
	if p.LastSummary() == nil {
		t.Error("Expected last summary to be recorded")
	}
}

func TestPoller_ForcePoll(t *testing.T) {
	fetcher := &countingFetcher{}
	store := &recordingStorage{}
	p := New(fetcher, store, time.Hour, 24*time.Hour)

	if p.LastSummary() != nil {
		t.Error("Expected no summary before the first cycle")
	}

	summary := p.ForcePoll(context.Background())
	if summary.Providers != 3 {
		t.Errorf("Expected summary with 3 providers, got %d", summary.Providers)
	}
	if p.LastSummary() != summary {
		t.Error("Expected forced summary to become the last summary")
	}
	if len(store.retention) != 1 || store.retention[0] != 24*time.Hour {
		t.Errorf("Expected one retention cleanup of 24h, got %v", store.retention)
	}
	if store.optimized != 1 {
		t.Errorf("Expected the database to be optimized after cleanup, got %d runs", store.optimized)
	}
}

func TestPoller_NoRetentionCleanupWhenDisabled(t *testing.T) {
	store := &recordingStorage{}
	p := New(&countingFetcher{}, store, time.Hour, 0)

	p.ForcePoll(context.Background())

	if len(store.retention) != 0 || store.optimized != 0 {
		t.Errorf("Expected no cleanup, got %v and %d optimize runs", store.retention, store.optimized)
	}
}

func TestPoller_CyclesDoNotOverlap(t *testing.T) {
	fetcher := &countingFetcher{delay: 20 * time.Millisecond}
	p := New(fetcher, &recordingStorage{}, time.Hour, 0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.ForcePoll(context.Background())
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&fetcher.overlap) != 0 {
		t.Error("Expected fetch cycles to run one at a time")
	}
	if calls := atomic.LoadInt32(&fetcher.calls); calls != 4 {
		t.Errorf("Expected 4 cycles, got %d", calls)
	}
}
