// Command matching-notify runs one match-change sweep over all active
// profiles and projects, creating notifications for newly appeared
// matches. Intended to be run from cron.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/projectfinder/matching/internal/config"
	"github.com/projectfinder/matching/internal/embedding"
	"github.com/projectfinder/matching/internal/match"
	"github.com/projectfinder/matching/internal/notify"
	"github.com/projectfinder/matching/internal/storage"
	"github.com/projectfinder/matching/internal/storage/postgres"
	"github.com/projectfinder/matching/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall sweep timeout")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store storage.Store
	if cfg.Storage.Engine == "postgres" {
		store, err = postgres.NewStore(cfg.Storage.PostgresDSN)
	} else {
		store, err = sqlite.NewStore(cfg.Storage.DataPath + "/matching.db")
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gen, err := embedding.NewGenerator(embedding.Config{
		Provider: cfg.Embedding.Provider,
		BaseURL:  cfg.Embedding.OllamaURL,
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.Embedding.OpenAIAPIKey,
		Timeout:  cfg.Embedding.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to configure embedding provider: %v", err)
	}
	encoder, err := embedding.NewProvider(ctx, gen)
	if err != nil {
		log.Fatalf("Embedding provider unavailable: %v", err)
	}

	matcher := match.NewMatcherWithDefaults(store, store, encoder, match.Defaults{
		TopK:               cfg.Matching.TopK,
		MinScore:           cfg.Matching.MinScore,
		RecommendationTopK: cfg.Matching.RecommendationTopK,
	})
	notifier := notify.NewNotifierWithTTL(matcher, store, store, cfg.Notify.SnapshotTTL)

	start := time.Now()
	if err := notifier.Sweep(ctx, store, store); err != nil {
		log.Fatalf("Match sweep failed: %v", err)
	}
	log.Printf("Match sweep completed in %s", time.Since(start).Round(time.Millisecond))
}
