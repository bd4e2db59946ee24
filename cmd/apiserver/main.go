// API server entry point for the appeal generation service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/config"
	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/infrastructure/database/postgres"
	"github.com/careloop/appealgen/internal/infrastructure/database/postgres/repositories"
	"github.com/careloop/appealgen/internal/infrastructure/database/redis"
	"github.com/careloop/appealgen/internal/infrastructure/messaging/kafka"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/prometheus"
	"github.com/careloop/appealgen/internal/infrastructure/ocr"
	"github.com/careloop/appealgen/internal/infrastructure/storage/minio"
	"github.com/careloop/appealgen/internal/intelligence/denial_extractor"
	"github.com/careloop/appealgen/internal/intelligence/lettergen"
	httpserver "github.com/careloop/appealgen/internal/interfaces/http"
	"github.com/careloop/appealgen/internal/interfaces/http/handlers"
	"github.com/careloop/appealgen/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = logger.Named("apiserver")
	logger.Info("starting", logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres: migrations first, then the pool.
	if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close()

	appealRepo := repositories.NewAppealRepository(conn.Pool(), logger)
	payerRepo := repositories.NewPayerRepository(conn.Pool(), logger)

	// Redis-backed payer cache in front of the postgres repository.
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
	payers := redis.NewCachedPayerRepository(payerRepo, cache, logger)

	if err := payers.Seed(ctx, payer.SeedPayers()); err != nil {
		return fmt.Errorf("failed to seed payer directory: %w", err)
	}
	payerList, err := payers.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load payer directory: %w", err)
	}

	// Kafka producer for appeal lifecycle events.
	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()
	events := kafka.NewEventPublisher(producer, cfg.Kafka)

	// Object storage for uploaded documents and rendered letters.
	objStore, err := minio.NewClient(cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}
	if err := objStore.EnsureBuckets(ctx); err != nil {
		return fmt.Errorf("failed to provision buckets: %w", err)
	}
	letters := minio.NewArchiveStore(objStore, logger)

	metrics := prometheus.NewMetrics()

	// The generation backend is optional; the composer falls back to the
	// template path when it is absent or failing.
	var generator lettergen.Generator
	if cfg.Generation.Enabled {
		generator, err = lettergen.NewGenerator(lettergen.Config{
			BaseURL:     cfg.Generation.BaseURL,
			APIKey:      cfg.Generation.APIKey,
			Model:       cfg.Generation.Model,
			Timeout:     cfg.Generation.Timeout,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
		}, logger, lettergen.WithObserver(metrics))
		if err != nil {
			logger.Warn("letter generation backend unavailable, using templates only", logging.Err(err))
			generator = nil
		}
	}

	svc := appeal.NewService(appeal.Config{MinInputLength: cfg.Pipeline.MinInputLength}, appeal.Dependencies{
		Extractor:  denial_extractor.NewExtractor(denial_extractor.NewClassifier(nil), payerList),
		Scorer:     denial_extractor.NewScorer(denial_extractor.ScoreWeights{}),
		Resolver:   appeal.NewRequirementsResolver(payerList),
		Composer:   appeal.NewComposer(generator, logger),
		Repository: appealRepo,
		Payers:     payers,
		Events:     events,
		Letters:    letters,
		Metrics:    metrics,
		Logger:     logger,
	})

	var converter ocr.Converter
	if cfg.OCR.BaseURL != "" {
		converter = ocr.NewHTTPConverter(cfg.OCR, logger)
	}

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig(cfg.Server.RateLimitRPS))
	defer limiter.Stop()

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AppealHandler: handlers.NewAppealHandler(svc, converter, cfg.Server.MaxUploadBytes).
			WithDocumentStore(letters, logger).
			WithLetterArchive(letters),
		PayerHandler:  handlers.NewPayerHandler(svc, payers),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.HealthChecker{
			"postgres": conn,
			"redis":    redisClient,
			"minio":    objStore,
		}),
		Logger:      logger,
		Metrics:     metrics,
		RateLimiter: limiter,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("stopped")
	return nil
}

// loadConfig reads the config file when present, otherwise falls back to
// environment variables and defaults.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	fmt.Fprintf(os.Stderr, "warning: config file %s not found, using environment and defaults\n", path)
	return config.LoadFromEnv()
}
