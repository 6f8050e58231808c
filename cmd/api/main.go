package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rob-hayward/ProjectZer0-sub005/application/aggregation"
	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/infrastructure/config"
	"github.com/rob-hayward/ProjectZer0-sub005/infrastructure/neo4j"
	"github.com/rob-hayward/ProjectZer0-sub005/interfaces/http/rest"
	"github.com/rob-hayward/ProjectZer0-sub005/pkg/observability"
	"github.com/rob-hayward/ProjectZer0-sub005/repository"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Graph store with circuit breaker
	store, err := neo4j.NewStore(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, cfg.Neo4jDatabase, logger)
	if err != nil {
		logger.Fatal("Failed to connect to graph store", zap.Error(err))
	}
	defer store.Close(ctx)

	guarded := neo4j.NewBreakerStore(store, logger)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Content repositories, one per type over the same generic implementation
	repos := repository.NewAll(guarded, logger, metrics)
	sources := make([]ports.NodeSource, 0, len(repos))
	for _, repo := range repos {
		sources = append(sources, repo)
	}
	userState := repository.NewUserStateStore(guarded, logger)

	// Aggregation pipeline
	aggregator := aggregation.NewAggregator(
		aggregation.NewFetcher(sources, cfg.FetchTimeout, logger, metrics),
		aggregation.NewConsolidator(cfg.MinCategoryOverlap, logger),
		aggregation.NewEnricher(userState, cfg.EnrichTimeout, logger),
		userState,
		logger,
		metrics,
	)

	router := rest.NewRouter(cfg, aggregator, repos, userState, registry, logger)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
