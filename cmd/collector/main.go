package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newsfocus/collector/app/api"
	"github.com/newsfocus/collector/app/cfg"
	"github.com/newsfocus/collector/app/collector"
	"github.com/newsfocus/collector/app/database"
	"github.com/newsfocus/collector/app/feed"
	"github.com/newsfocus/collector/app/pipeline"
	"github.com/newsfocus/collector/app/rules"
	"github.com/newsfocus/collector/app/sources"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting news collector", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Database ready", "migration_version", migrationVersion, "dirty", dirty)

	itemRepo := database.NewItemRepository(db)
	ruleRepo := database.NewRuleRepository(db)

	if appCfg.Purge {
		if err := purge(itemRepo, ruleRepo); err != nil {
			slog.Error("Purge failed", "error", err)
			os.Exit(1)
		}
		slog.Info("All stored rules, items and relations removed")
		return
	}

	httpClient := &http.Client{}
	fetcher := sources.NewFetcher(httpClient, appCfg.UserAgent)

	registry, err := sources.NewLoader(fetcher).Load(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources", "file", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Sources loaded", "count", len(registry))

	ruleSet, err := rules.NewLoader().Load(appCfg.RulesFile)
	if err != nil {
		slog.Error("Failed to load rules", "file", appCfg.RulesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Rules loaded", "count", len(ruleSet))

	var extractor pipeline.Extractor
	if appCfg.ExtractContent {
		extractor = feed.NewExtractor(httpClient, appCfg.UserAgent)
	}

	runner := pipeline.NewRunner(
		asCollectorSources(registry),
		ruleSet,
		collector.New(feed.NewParser(), appCfg.WorkerCount, time.Duration(appCfg.CollectTimeout)*time.Second),
		rules.NewEngine(),
		pipeline.NewSequencer(database.NewStore(db)),
		extractor,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	total, matched, err := runner.Run(ctx)
	if err != nil {
		slog.Error("Collection run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Recorded matched news", "matched", matched, "total", total)

	if !appCfg.Serve {
		return
	}

	serveAPI(ctx, appCfg, itemRepo, ruleRepo)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// purge removes all data produced by previous collection runs. Items go
// first so no relation ever outlives its item.
func purge(itemRepo *database.ItemRepository, ruleRepo *database.RuleRepository) error {
	if err := itemRepo.RemoveAll(); err != nil {
		return err
	}
	return ruleRepo.RemoveAll()
}

func asCollectorSources(registry []*sources.Source) []collector.Source {
	result := make([]collector.Source, len(registry))
	for i, src := range registry {
		result[i] = src
	}
	return result
}

func serveAPI(ctx context.Context, appCfg *cfg.Cfg, itemRepo *database.ItemRepository, ruleRepo *database.RuleRepository) {
	handler := api.NewHandler(itemRepo, ruleRepo, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Serving JSON API", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
