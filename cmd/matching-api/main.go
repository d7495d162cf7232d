// Command matching-api runs the matching HTTP API server with live
// notification push and a periodic in-process match sweep.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projectfinder/matching/internal/config"
	"github.com/projectfinder/matching/internal/embedding"
	"github.com/projectfinder/matching/internal/match"
	"github.com/projectfinder/matching/internal/notify"
	"github.com/projectfinder/matching/internal/server"
	"github.com/projectfinder/matching/internal/storage"
	"github.com/projectfinder/matching/internal/storage/postgres"
	"github.com/projectfinder/matching/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	encoder, err := buildEncoder(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}
	log.Printf("Embedding provider ready: model=%s dimension=%d", encoder.GetModel(), encoder.Dimension())

	matcher := match.NewMatcherWithDefaults(store, store, encoder, match.Defaults{
		TopK:               cfg.Matching.TopK,
		MinScore:           cfg.Matching.MinScore,
		RecommendationTopK: cfg.Matching.RecommendationTopK,
	})

	addr, wsHub, err := server.Start(ctx, cfg, store, matcher)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("Matching API listening on http://%s", addr)

	// The periodic sweep creates notifications for newly appeared matches
	// and pushes them to websocket clients as they are stored.
	sink := &server.BroadcastingSink{NotificationStore: store, Hub: wsHub}
	notifier := notify.NewNotifierWithTTL(matcher, store, sink, cfg.Notify.SnapshotTTL)
	go runSweepLoop(ctx, notifier, store, cfg.Notify.Interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfigFile(path)
	}
	return config.LoadConfig()
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Engine == "postgres" {
		return postgres.NewStore(cfg.Storage.PostgresDSN)
	}
	return sqlite.NewStore(cfg.Storage.DataPath + "/matching.db")
}

// buildEncoder constructs the configured embedding backend and probes
// its vector dimension. An unreachable backend is fatal at startup.
func buildEncoder(ctx context.Context, cfg *config.Config) (*embedding.Provider, error) {
	gen, err := embedding.NewGenerator(embedding.Config{
		Provider: cfg.Embedding.Provider,
		BaseURL:  cfg.Embedding.OllamaURL,
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.Embedding.OpenAIAPIKey,
		Timeout:  cfg.Embedding.Timeout,
	})
	if err != nil {
		return nil, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.Embedding.Timeout)
	defer cancel()
	return embedding.NewProvider(probeCtx, gen)
}

func runSweepLoop(ctx context.Context, notifier *notify.Notifier, store storage.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := notifier.Sweep(ctx, store, store); err != nil {
				log.Printf("warning: match sweep failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
