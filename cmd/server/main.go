package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/cache"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/config"
	httpHandler "github.com/cypherlabdev/arbitrage-scanner-service/internal/handler/http"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/messaging"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/oddsapi"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/poller"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/service"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

func main() {
	// API_KEY and friends may live in a local .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Err(err).Msg("failed to load .env file")
	}

	configPath := "config/config.yaml"
	if p := os.Getenv("ARB_SCANNER_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting arbitrage-scanner-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create Redis cache
	redisCache := cache.NewRedisCache(
		cache.RedisCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		},
		logger,
	)
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	scanner := arbitrage.NewScanner(cfg.Scanner.ToScanParams(), logger)
	logger.Info().
		Int("workers", cfg.Scanner.Workers).
		Float64("min_profit_percent", cfg.Scanner.MinProfitPercent).
		Msg("scanner initialized")

	// Publishing is only possible with Kafka enabled
	var publisher service.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := messaging.NewKafkaPublisher(
			messaging.KafkaPublisherConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.OpportunityTopic,
			},
			logger,
		)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	scannerService := service.NewScannerService(scanner, redisCache, publisher, cfg.Scanner.DefaultStakeDecimal(), logger)
	logger.Info().Msg("scanner service initialized")

	var wg sync.WaitGroup

	if cfg.Kafka.Enabled {
		consumer := messaging.NewKafkaConsumer(
			messaging.KafkaConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
			},
			scannerService,
			logger,
		)
		defer consumer.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka consumer failed")
			}
		}()
	}

	if cfg.OddsAPI.Enabled {
		client := oddsapi.NewClient(
			oddsapi.Config{
				BaseURL: cfg.OddsAPI.BaseURL,
				APIKey:  cfg.OddsAPI.APIKey,
				Sport:   cfg.OddsAPI.Sport,
				Regions: cfg.OddsAPI.Regions,
				Markets: cfg.OddsAPI.Markets,
				Timeout: cfg.OddsAPI.Timeout,
			},
			logger,
		)
		oddsPoller := poller.NewPoller(cfg.OddsAPI.PollSchedule, client, scannerService, logger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := oddsPoller.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("odds poller failed")
			}
		}()
	}

	scanHandler := httpHandler.NewScanHandler(scannerService, logger)

	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, redisCache)
	})
	mux.Handle("/metrics", promhttp.Handler())

	scanHandler.RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop consumer and poller
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	wg.Wait()

	logger.Info().Msg("shutdown complete")
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "arbitrage-scanner").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, cache service.Cache) {
	if err := cache.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Redis unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
