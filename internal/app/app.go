package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	catalogpkg "github.com/diamondcartel/wishlist/internal/catalog"
	cataloghttp "github.com/diamondcartel/wishlist/internal/catalog/httpapi"
	catalogpg "github.com/diamondcartel/wishlist/internal/catalog/postgres"
	"github.com/diamondcartel/wishlist/internal/config"
	"github.com/diamondcartel/wishlist/internal/event"
	handler "github.com/diamondcartel/wishlist/internal/handler/http"
	"github.com/diamondcartel/wishlist/internal/mailer"
	mailermock "github.com/diamondcartel/wishlist/internal/mailer/mock"
	redisrepo "github.com/diamondcartel/wishlist/internal/repository/redis"
	"github.com/diamondcartel/wishlist/internal/service"
	"github.com/diamondcartel/wishlist/pkg/database"
	"github.com/diamondcartel/wishlist/pkg/health"
	pkgkafka "github.com/diamondcartel/wishlist/pkg/kafka"
	"github.com/diamondcartel/wishlist/pkg/tracing"
)

// App wires together all dependencies and runs the wishlist service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	pgPool          *pgxpool.Pool
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Tracing (no-op when disabled).
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "wishlist-service",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Redis document store.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Addr = cfg.RedisAddr
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, &redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Catalog backend.
	var (
		cat    catalogpkg.Catalog
		pgPool *pgxpool.Pool
	)
	switch cfg.CatalogBackend {
	case config.CatalogBackendPostgres:
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.Host = cfg.PostgresHost
		pgCfg.Port = cfg.PostgresPort
		pgCfg.User = cfg.PostgresUser
		pgCfg.Password = cfg.PostgresPass
		pgCfg.DBName = cfg.PostgresDB

		pgPool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		cat = catalogpg.NewCatalog(pgPool)
		logger.Info("catalog backend: postgres",
			slog.String("host", cfg.PostgresHost),
			slog.String("db", cfg.PostgresDB),
		)
	default:
		cat = cataloghttp.NewClient(cfg.CatalogBaseURL, logger)
		logger.Info("catalog backend: http",
			slog.String("base_url", cfg.CatalogBaseURL),
		)
	}

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Mailer: SendGrid when a key is configured, logging mock otherwise.
	var m mailer.Mailer
	if cfg.SendGridAPIKey != "" {
		m = mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromEmail, logger)
	} else {
		m = mailermock.NewMockMailer(logger)
		logger.Warn("SENDGRID_API_KEY not set, using mock mailer")
	}

	// Build the dependency graph.
	repo := redisrepo.NewWishlistRepository(rdb)
	eventProducer := event.NewProducer(producer, logger)
	wishlistService := service.NewWishlistService(repo, cat, m, eventProducer, logger, service.Config{
		OwnerEmail:  cfg.OwnerEmail,
		FrontendURL: cfg.FrontendURL,
	})

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)
	if pgPool != nil {
		healthHandler.Register("postgres", pgPool.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(wishlistService, healthHandler, logger, cfg.PprofCIDRs)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		pgPool:          pgPool,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if a.pgPool != nil {
		a.pgPool.Close()
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
