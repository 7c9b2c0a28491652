package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/winnow/internal/api"
	"github.com/RishiKendai/winnow/internal/config"
	"github.com/RishiKendai/winnow/internal/configs/env"
	"github.com/RishiKendai/winnow/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/winnow/internal/infra/redis"
	"github.com/RishiKendai/winnow/internal/logger"
	"github.com/RishiKendai/winnow/internal/metrics"
	"github.com/RishiKendai/winnow/internal/plagiarism"
	"github.com/RishiKendai/winnow/internal/preprocess"
	"github.com/RishiKendai/winnow/internal/repository"
	"github.com/RishiKendai/winnow/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info().
		Int("k", cfg.DefaultK).
		Int("t", cfg.DefaultT).
		Uint64("hash_size", cfg.HashSize).
		Msg("Starting winnow server")

	metrics.InitPrometheus()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := api.StartServer("metrics", metricsMux, cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	mongoRepo := repository.NewMongoRepository(mongoClient)
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure MongoDB indexes")
	}
	reportsRepo := repository.NewReportsRepository(mongoRepo)

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	statusTracker := plagiarism.NewStatusTracker(redisClient.Client)

	var cache plagiarism.Cache
	if cfg.CacheEnabled {
		lru, err := plagiarism.NewLRUCache(cfg.CacheSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create fingerprint cache")
		}
		cache = lru
	} else {
		log.Info().Msg("Fingerprint cache disabled")
	}

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.Workers)
	defer workerPool.Close()
	log.Info().Int("workers", workerPool.Size()).Msg("Worker pool started")

	engine := plagiarism.NewEngine(cache, workerPool)
	preprocessSvc := preprocess.NewService(cfg.MaxDocumentBytes)
	comparisonSvc := plagiarism.NewService(
		engine,
		preprocessSvc,
		reportsRepo,
		statusTracker,
		plagiarism.Params{K: cfg.DefaultK, T: cfg.DefaultT, HashSize: cfg.HashSize},
		cfg.MaxCompareDocuments,
	)

	producer := stream.NewProducer(redisClient.Client, cfg.RedisStreamKey)

	// Requests that fail validation go straight to the dead-letter stream.
	retryHandler := stream.NewRetryHandler(
		redisClient.Client,
		cfg.RedisDeadLetterKey,
		cfg.MaxRetries,
		func(err error) bool { return !plagiarism.IsValidationError(err) },
	)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		comparisonSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	router := api.SetupRoutes(ctx, cfg, api.Dependencies{
		Comparer: comparisonSvc,
		Reports:  reportsRepo,
		Queue:    producer,
		Status:   statusTracker,
	})
	srv := api.StartServer("api", router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}

	// Stop the consumer before its Redis client closes.
	cancel()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Timed out waiting for Redis consumer to stop")
	}

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
