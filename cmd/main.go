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

	"github.com/RishiKendai/verbatim/internal/api"
	"github.com/RishiKendai/verbatim/internal/config"
	"github.com/RishiKendai/verbatim/internal/configs/env"
	"github.com/RishiKendai/verbatim/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/verbatim/internal/infra/redis"
	"github.com/RishiKendai/verbatim/internal/logger"
	"github.com/RishiKendai/verbatim/internal/metrics"
	"github.com/RishiKendai/verbatim/internal/plagiarism"
	"github.com/RishiKendai/verbatim/internal/preprocess"
	"github.com/RishiKendai/verbatim/internal/repository"
	"github.com/RishiKendai/verbatim/internal/stream"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	log.Info().Msg("Starting verbatim server")

	metrics.InitPrometheus()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := api.StartServer("metrics", metricsMux, cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	documentsRepo := repository.NewDocumentsRepository(mongoRepo)
	resultsRepo := repository.NewResultsRepository(mongoRepo)
	if err := documentsRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure document indexes")
	}

	preprocessSvc := preprocess.NewService(documentsRepo, cfg.MaxDocumentBytes, cfg.NormalizeText)
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey, cfg.StreamMaxRetries)

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
		preprocessSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.WorkerPoolSize)
	defer workerPool.Close()
	log.Info().Int("workers", workerPool.Size()).Msg("Worker pool started")

	statusStore := plagiarism.NewStatusStore(redisClient.Client)
	comparer := plagiarism.NewComparer(documentsRepo, resultsRepo, statusStore, workerPool, cfg.SignificantSimilarity)

	router := api.SetupRoutes(cfg, documentsRepo, resultsRepo, statusStore, comparer)

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	srv := api.StartServer("api", router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")
	consumerCancel()

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}
	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
