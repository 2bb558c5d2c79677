package providers

import (
	"fmt"
	"net/url"

	"newsagg/internal/config"
)

// Registry maps provider (source) names to their adapters
type Registry struct {
	providers []config.ProviderConfig
	adapters  map[string]Adapter
}

func NewRegistry(providers []config.ProviderConfig) (*Registry, error) {
	r := &Registry{
		providers: providers,
		adapters:  make(map[string]Adapter, len(providers)),
	}
	for _, p := range providers {
		adapter, err := ForKind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", p.Name, err)
		}
		if _, dup := r.adapters[p.Name]; dup {
			return nil, fmt.Errorf("duplicate provider %q", p.Name)
		}
		r.adapters[p.Name] = adapter
	}
	return r, nil
}

// Adapter returns the adapter registered for a source name
func (r *Registry) Adapter(sourceName string) (Adapter, bool) {
	a, ok := r.adapters[sourceName]
	return a, ok
}

// Providers returns every configured provider, enabled or not
func (r *Registry) Providers() []config.ProviderConfig {
	return r.providers
}

func (r *Registry) Enabled() []config.ProviderConfig {
	var enabled []config.ProviderConfig
	for _, p := range r.providers {
		if p.IsEnabled() {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// RequestURL builds the full GET URL for a provider
func (r *Registry) RequestURL(p config.ProviderConfig) (string, error) {
	adapter, ok := r.adapters[p.Name]
	if !ok {
		return "", fmt.Errorf("provider %q is not registered", p.Name)
	}

	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint for %q: %w", p.Name, err)
	}

	q := u.Query()
	for k, vs := range adapter.Query(p) {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
