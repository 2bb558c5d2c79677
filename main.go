// Copyright (c) 2024 cblomart
// Licensed under the MIT License

package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"newsagg/internal/aggregator"
	"newsagg/internal/api"
	"newsagg/internal/auth"
	"newsagg/internal/cache"
	"newsagg/internal/config"
	"newsagg/internal/feed"
	"newsagg/internal/ingest"
	"newsagg/internal/poller"
	"newsagg/internal/providers"
	"newsagg/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type options struct {
	EnvFile         string `long:"env-file" default:".env" description:"Environment file loaded before configuration"`
	Fetch           bool   `long:"fetch" description:"Run one ingestion cycle and exit"`
	RegisterSources bool   `long:"register-sources" description:"Create a source row for every configured provider and exit"`
	Port            int    `long:"port" description:"HTTP server port (overrides PORT)"`
}

func main() {
	opts, ok := parseOptions()
	if !ok {
		return
	}

	// A missing env file is fine, the environment may already be set
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load %s: %v", opts.EnvFile, err)
	}

	// Load configuration
	cfg := config.Load()
	if opts.Port > 0 {
		cfg.Port = opts.Port
	}
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize persistent storage
	store, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}
	defer store.Close()

	if opts.RegisterSources {
		registerSources(store, cfg.Providers)
		return
	}

	registry, err := providers.NewRegistry(cfg.Providers)
	if err != nil {
		log.Fatal("Failed to load providers:", err)
	}
	writer := ingest.NewWriter(store, registry, cfg.FetchLimit)
	agg := aggregator.New(registry, writer, cfg.FetchTimeout)

	if opts.Fetch {
		summary := agg.FetchAll(context.Background())
		log.Printf("Fetch completed: %d articles from %d providers (%d failed)",
			summary.TotalCreated(), summary.Providers, summary.FailedProviders)
		return
	}

	// Initialize feed cache
	feedCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal("Failed to initialize cache:", err)
	}
	defer feedCache.Close()

	// Clean up old articles based on retention policy
	if cfg.ArticleRetention > 0 {
		log.Printf("Cleaning up articles older than %v", cfg.ArticleRetention)
		if err := store.CleanupOldArticles(cfg.ArticleRetention); err != nil {
			log.Printf("Warning: failed to cleanup old articles: %v", err)
		}
	}

	feedEngine := feed.NewEngine(store, feedCache, cfg.Cache.FeedTTL)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, store)

	// Initialize background poller
	backgroundPoller := poller.New(agg, store, cfg.PollInterval, cfg.ArticleRetention)
	if cfg.EnablePoller {
		backgroundPoller.Start()
	} else {
		log.Printf("Background polling disabled, use POST /api/fetch-articles or --fetch")
	}

	// Initialize API server
	server := api.NewServer(store, feedEngine, feedCache, tokens, backgroundPoller, cfg)

	log.Printf("Starting News Aggregator server on port %d", cfg.Port)
	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("Feed cache: %s (ttl %v)", cfg.Cache.Driver, cfg.Cache.FeedTTL)
	log.Printf("Article retention: %v", cfg.ArticleRetention)
	log.Printf("Background polling interval: %v", cfg.PollInterval)
	log.Printf("Enabled providers: %d of %d", len(registry.Enabled()), len(registry.Providers()))

	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Received shutdown signal, stopping services...")
		backgroundPoller.Stop()
	}()

	if err := server.StartWithContext(ctx); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func parseOptions() (*options, bool) {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, false
		}
		log.Fatalf("Failed to parse options: %v", err)
	}
	return &opts, true
}

// registerSources creates the source rows ingestion attaches articles to
func registerSources(store storage.Storage, catalog []config.ProviderConfig) {
	ctx := context.Background()
	for _, p := range catalog {
		_, err := store.CreateSource(ctx, p.Name)
		switch {
		case err == nil:
			log.Printf("Registered source: %s", p.Name)
		case errors.Is(err, storage.ErrDuplicate):
			log.Printf("Source already registered: %s", p.Name)
		default:
			log.Printf("Warning: failed to register source %s: %v", p.Name, err)
		}
	}
}
