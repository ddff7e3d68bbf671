package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/database"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/health"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/httpclient"
	pkgkafka "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/kafka"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/config"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/dispatch"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/event"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/geocode"
	handler "github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/handler/http"
	mockmailer "github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/mailer/mock"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/openstates"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/regionconfig"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/resolver"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/service"
)

// App wires together all dependencies and runs the statelegemail service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	redis      *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Redis holds the durable region config cache.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	// Kafka producer for signature processing events.
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Shared hardened HTTP client; each external API gets its own breaker so
	// a broken geocoder cannot trip the directory circuit.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	directoryClient := httpclient.NewCircuitBreakerClient(
		baseClient, httpclient.DefaultCircuitBreakerConfig("openstates"), logger)
	geocoderClient := httpclient.NewCircuitBreakerClient(
		baseClient, httpclient.DefaultCircuitBreakerConfig("geocoder"), logger)

	osClient := openstates.New(cfg.OpenStatesBaseURL, cfg.OpenStatesAPIKey, directoryClient, logger)

	var geocoder geocode.Geocoder
	if cfg.GeocoderBaseURL != "" {
		geocoder = geocode.NewNominatimGeocoder(
			cfg.GeocoderBaseURL, cfg.Country, cfg.GeocoderEmail, geocoderClient, logger)
	} else {
		logger.Warn("no geocoder base URL configured, resolutions will return no recipients")
	}

	// Build the dependency graph.
	regionStore := regionconfig.NewRedisStore(redisClient, cfg.RegionConfigTTL)
	regionCache := regionconfig.NewCache(regionStore, osClient, logger)
	recipientResolver := resolver.New(osClient, geocoder, regionCache, logger)
	dispatcher := dispatch.New(mockmailer.NewMockMailer(logger), cfg.DispatchWorkers, logger)
	eventProducer := event.NewProducer(kafkaProducer, logger)

	petitionService := service.NewPetitionService(
		recipientResolver, dispatcher, regionCache, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return kafkaProducer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(petitionService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		redis:      redisClient,
		producer:   kafkaProducer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
