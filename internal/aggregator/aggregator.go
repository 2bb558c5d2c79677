package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/ingest"
	"newsagg/internal/providers"
)

// maxResponseBytes bounds how much of a provider response is read
const maxResponseBytes = 10 << 20

// Aggregator fetches every enabled provider and hands the records to the ingestion writer
type Aggregator struct {
	registry *providers.Registry
	writer   *ingest.Writer
	client   *http.Client
}

func New(registry *providers.Registry, writer *ingest.Writer, timeout time.Duration) *Aggregator {
	return &Aggregator{
		registry: registry,
		writer:   writer,
		client:   &http.Client{Timeout: timeout},
	}
}

// Summary describes one ingestion cycle
type Summary struct {
	Providers       int               `json:"providers"`
	FailedProviders int               `json:"failed_providers"`
	Created         map[string]int    `json:"created"`
	Errors          map[string]string `json:"errors,omitempty"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
}

// TotalCreated returns the number of articles written across providers
func (s *Summary) TotalCreated() int {
	total := 0
	for _, n := range s.Created {
		total += n
	}
	return total
}

type FetchResult struct {
	Provider string
	Records  []json.RawMessage
	Error    error
}

// FetchAll runs one ingestion cycle. Provider failures are logged and
// recorded in the summary; they never abort the cycle.
func (a *Aggregator) FetchAll(ctx context.Context) *Summary {
	enabled := a.registry.Enabled()
	summary := &Summary{
		Providers: len(enabled),
		Created:   make(map[string]int, len(enabled)),
		Errors:    make(map[string]string),
		StartedAt: time.Now().UTC(),
	}

	for _, p := range a.registry.Providers() {
		if !p.IsEnabled() {
			log.Printf("Skipping provider %s: no API key configured", p.Name)
		}
	}

	for _, result := range a.fetchProvidersParallel(ctx, enabled) {
		if result.Error != nil {
			log.Printf("Error fetching provider %s: %v", result.Provider, result.Error)
			summary.FailedProviders++
			summary.Errors[result.Provider] = result.Error.Error()
		}

		created, err := a.writer.Ingest(ctx, result.Records, result.Provider)
		if err != nil {
			log.Printf("Error ingesting articles from %s: %v", result.Provider, err)
			if _, failed := summary.Errors[result.Provider]; !failed {
				summary.Errors[result.Provider] = err.Error()
			}
		}
		summary.Created[result.Provider] = created
	}

	summary.FinishedAt = time.Now().UTC()
	log.Printf("Fetch cycle finished: %d providers, %d failed, %d articles created",
		summary.Providers, summary.FailedProviders, summary.TotalCreated())
	return summary
}

// fetchProvidersParallel fetches all providers concurrently and returns their
// results in provider order
func (a *Aggregator) fetchProvidersParallel(ctx context.Context, enabled []config.ProviderConfig) []FetchResult {
	var wg sync.WaitGroup
	results := make(chan FetchResult, len(enabled))

	for _, p := range enabled {
		wg.Add(1)
		go func(provider config.ProviderConfig) {
			defer wg.Done()
			records, err := a.fetchProvider(ctx, provider)
			results <- FetchResult{
				Provider: provider.Name,
				Records:  records,
				Error:    err,
			}
		}(p)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byName := make(map[string]FetchResult, len(enabled))
	for result := range results {
		byName[result.Provider] = result
	}

	ordered := make([]FetchResult, 0, len(enabled))
	for _, p := range enabled {
		ordered = append(ordered, byName[p.Name])
	}
	return ordered
}

func (a *Aggregator) fetchProvider(ctx context.Context, p config.ProviderConfig) ([]json.RawMessage, error) {
	adapter, ok := a.registry.Adapter(p.Name)
	if !ok {
		return nil, fmt.Errorf("provider %q is not registered", p.Name)
	}

	requestURL, err := a.registry.RequestURL(p)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "newsagg/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &providers.UpstreamError{Provider: p.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &providers.UpstreamError{Provider: p.Name, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &providers.UpstreamError{Provider: p.Name, Err: err}
	}

	records, err := adapter.Records(body)
	if err != nil {
		return nil, &providers.UpstreamError{Provider: p.Name, Err: err}
	}

	if len(records) > ingest.MaxRecords {
		records = records[:ingest.MaxRecords]
	}
	return records, nil
}
