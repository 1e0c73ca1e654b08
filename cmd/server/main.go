package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/propwrite/propwrite/internal/brand"
	"github.com/propwrite/propwrite/internal/cache"
	"github.com/propwrite/propwrite/internal/compliance"
	"github.com/propwrite/propwrite/internal/config"
	"github.com/propwrite/propwrite/internal/enrich"
	"github.com/propwrite/propwrite/internal/generate"
	"github.com/propwrite/propwrite/internal/history"
	"github.com/propwrite/propwrite/internal/keywords"
	"github.com/propwrite/propwrite/internal/lengths"
	"github.com/propwrite/propwrite/internal/llm"
	"github.com/propwrite/propwrite/internal/server"
	"github.com/propwrite/propwrite/internal/session"
	"github.com/propwrite/propwrite/internal/vision"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	db, err := sql.Open("sqlite", cfg.HistoryDSN)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	// Enable foreign keys explicitly — required for SQLite.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		log.Fatalf("enabling foreign keys: %v", err)
	}

	runs := history.NewStore(db)
	if err := runs.Migrate(ctx); err != nil {
		log.Fatalf("running schema migration: %v", err)
	}

	client := llm.New(cfg.AnthropicAPIKey,
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRatePerMinute(cfg.LLMRatePerMin),
	)

	shared := cache.New(cfg.CacheMaxSize)

	geocoder := &enrich.Geocoder{BaseURL: cfg.GeocoderBaseURL}
	places := &enrich.Places{BaseURL: cfg.OverpassBaseURL, RadiusM: cfg.EnrichRadiusM}
	enricher := enrich.New(geocoder, places, shared)
	enricher.TTL = cfg.EnrichTTL
	enricher.CategoryDelay = cfg.CategoryDelay

	provider := vision.NewProvider(vision.FactoryConfig{
		Provider:      cfg.VisionProvider,
		CloudAPIKey:   cfg.CloudVisionKey,
		CloudEndpoint: cfg.CloudVisionURL,
		Model:         cfg.VisionModel,
		LLM:           client,
	})
	adapter := vision.NewAdapter(provider, shared)
	adapter.MaxImageBytes = cfg.MaxImageBytes
	adapter.AllowedExts = make(map[string]bool, len(cfg.AllowedImageExts))
	for _, ext := range cfg.AllowedImageExts {
		adapter.AllowedExts[ext] = true
	}

	brands, err := brand.Load(cfg.BrandDir)
	if err != nil {
		log.Fatalf("loading brand profiles: %v", err)
	}

	sessions, err := session.NewStore(cfg.SessionsRoot, cfg.SessionExpiry)
	if err != nil {
		log.Fatalf("opening session store: %v", err)
	}
	sessions.KeepInline = cfg.KeepInlinePhotos

	generator := generate.New(client, brands, cfg.TextModel)
	if cfg.MockLLM {
		generator.Mock = true
	}

	coverage := &keywords.Analyser{RequiredKeywords: cfg.RequiredKeywords}
	checker := compliance.NewChecker(coverage)
	shrinker := &lengths.Shrinker{Client: client, Model: cfg.TextModel, Enabled: cfg.ShrinkEnabled}

	go runCleanup(ctx, sessions, cfg.CleanupInterval)

	handler := &server.Handler{
		Generator: generator,
		Shrinker:  shrinker,
		Checker:   checker,
		Enricher:  enricher,
		Vision:    adapter,
		Sessions:  sessions,
		Brands:    brands,
		History:   runs,
	}

	if err := server.Run(ctx, server.Config{Port: cfg.Port, Handler: handler}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// runCleanup deletes expired sessions on a fixed interval until shutdown.
func runCleanup(ctx context.Context, sessions *session.Store, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.CleanupExpired()
			if err != nil {
				log.Printf("session cleanup: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("session cleanup: removed %d expired session(s)", removed)
			}
		}
	}
}
