package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider kinds understood by the adapters
const (
	KindNewsAPI  = "newsapi"
	KindGuardian = "guardian"
	KindNYTimes  = "nytimes"
)

// ProviderConfig describes one upstream news API. Name doubles as the
// source name that ingested articles are attached to.
type ProviderConfig struct {
	Name      string            `yaml:"name"`
	Kind      string            `yaml:"kind"`
	Endpoint  string            `yaml:"endpoint"`
	APIKey    string            `yaml:"api_key"`
	APIKeyEnv string            `yaml:"api_key_env"`
	Params    map[string]string `yaml:"params"`
	Enabled   *bool             `yaml:"enabled"`
}

// IsEnabled reports whether the provider takes part in ingestion cycles.
// Without an explicit flag a provider is enabled once it has an API key.
func (p ProviderConfig) IsEnabled() bool {
	if p.Enabled != nil {
		return *p.Enabled
	}
	return p.APIKey != ""
}

type providersFile struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// DefaultProviders returns the built-in catalog with keys taken from the environment
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Name:      "Newsapi",
			Kind:      KindNewsAPI,
			Endpoint:  "https://newsapi.org/v2/top-headlines",
			APIKeyEnv: "NEWS_API_KEY",
			APIKey:    os.Getenv("NEWS_API_KEY"),
			Params:    map[string]string{"country": "us", "pageSize": "3"},
		},
		{
			Name:      "The Guardian",
			Kind:      KindGuardian,
			Endpoint:  "https://content.guardianapis.com/search",
			APIKeyEnv: "THE_GUARDIAN_API_KEY",
			APIKey:    os.Getenv("THE_GUARDIAN_API_KEY"),
			Params:    map[string]string{"order-by": "newest", "show-fields": "bodyText"},
		},
		{
			Name:      "NY Times",
			Kind:      KindNYTimes,
			Endpoint:  "https://api.nytimes.com/svc/mostpopular/v2/shared/1/facebook.json",
			APIKeyEnv: "NY_API_KEY",
			APIKey:    os.Getenv("NY_API_KEY"),
		},
	}
}

// LoadProviders reads a YAML provider catalog
func LoadProviders(path string) ([]ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file providersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool)
	for i := range file.Providers {
		p := &file.Providers[i]
		p.Kind = strings.ToLower(strings.TrimSpace(p.Kind))

		if err := validateProvider(p); err != nil {
			return nil, fmt.Errorf("provider %d: %w", i, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate provider name %q", p.Name)
		}
		seen[p.Name] = true

		if p.APIKey == "" && p.APIKeyEnv != "" {
			p.APIKey = os.Getenv(p.APIKeyEnv)
		}
	}

	return file.Providers, nil
}

func validateProvider(p *ProviderConfig) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Endpoint == "" {
		return fmt.Errorf("endpoint is required for %q", p.Name)
	}
	switch p.Kind {
	case KindNewsAPI, KindGuardian, KindNYTimes:
		return nil
	default:
		return fmt.Errorf("unknown kind %q for %q", p.Kind, p.Name)
	}
}
