package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"newsagg/internal/aggregator"
)

// Fetcher runs one ingestion cycle
type Fetcher interface {
	FetchAll(ctx context.Context) *aggregator.Summary
}

// Maintainer prunes articles past the retention period and compacts the store
type Maintainer interface {
	CleanupOldArticles(retention time.Duration) error
	OptimizeDatabase() error
}

type Poller struct {
	fetcher      Fetcher
	storage      Maintainer
	pollInterval time.Duration
	retention    time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	cycleMu      sync.Mutex
	lastPolled   time.Time
	lastSummary  *aggregator.Summary
	isPolling    bool
}

// New creates a poller. A zero retention keeps articles forever.
func New(fetcher Fetcher, storage Maintainer, pollInterval, retention time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		fetcher:      fetcher,
		storage:      storage,
		pollInterval: pollInterval,
		retention:    retention,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	if p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = true
	p.mu.Unlock()

	log.Printf("Starting article poller with interval: %v", p.pollInterval)

	p.wg.Add(1)
	go p.pollLoop()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = false
	p.mu.Unlock()

	log.Println("Stopping article poller...")
	p.cancel()
	p.wg.Wait()
	log.Println("Article poller stopped")
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Poll immediately on start
	p.runCycle(p.ctx)

	for {
		select {
		case <-ticker.C:
			p.runCycle(p.ctx)
		case <-p.ctx.Done():
			return
		}
	}
}

// runCycle fetches all providers and applies retention; cycles never overlap
func (p *Poller) runCycle(ctx context.Context) *aggregator.Summary {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	log.Println("Starting article fetch cycle...")
	summary := p.fetcher.FetchAll(ctx)

	if p.retention > 0 {
		if err := p.storage.CleanupOldArticles(p.retention); err != nil {
			log.Printf("Warning: failed to cleanup old articles: %v", err)
		} else if err := p.storage.OptimizeDatabase(); err != nil {
			log.Printf("Warning: failed to optimize database: %v", err)
		}
	}

	p.mu.Lock()
	p.lastPolled = time.Now()
	p.lastSummary = summary
	p.mu.Unlock()

	return summary
}

// ForcePoll runs one cycle immediately, waiting for any cycle in progress
func (p *Poller) ForcePoll(ctx context.Context) *aggregator.Summary {
	log.Println("Force polling all providers")
	return p.runCycle(ctx)
}

func (p *Poller) GetLastPolledTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastPolled
}

// LastSummary returns the result of the most recent cycle, or nil
func (p *Poller) LastSummary() *aggregator.Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSummary
}

func (p *Poller) IsPolling() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isPolling
}
