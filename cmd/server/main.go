package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/nomadhomes/bookingledger/internal/adapter/http"
	"github.com/nomadhomes/bookingledger/internal/adapter/http/handler"
	"github.com/nomadhomes/bookingledger/internal/adapter/http/middleware"
	postgresRepo "github.com/nomadhomes/bookingledger/internal/adapter/repository/postgres"
	redisRepo "github.com/nomadhomes/bookingledger/internal/adapter/repository/redis"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/auth"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/config"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/eventpublisher"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/logger"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/redis"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

const (
	streamMaxLen         = 100_000
	limiterCleanupPeriod = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.MigrationsEnabled {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return errors.Wrap(err, "run migrations")
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return errors.Wrap(err, "connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	listingRepo := postgresRepo.NewListingRepository(pool)
	availabilityRepo := postgresRepo.NewAvailabilityRepository(pool)
	bookingRepo := postgresRepo.NewBookingRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log,
		postgresRepo.WithMaxRetries(cfg.LedgerMaxRetries),
		postgresRepo.WithRetryMetrics(m),
	)
	cache := redisRepo.NewCache(redisClient, m)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, entryRepo, outboxRepo, idGen, m).
		WithRetrier(retrier)
	listingUC := usecase.NewListingUseCase(txManager, accountRepo, listingRepo, availabilityRepo, outboxRepo, idGen, cache, m).
		WithCacheTTL(cfg.ListingCacheTTL)
	bookingUC := usecase.NewBookingUseCase(txManager, accountRepo, listingRepo, availabilityRepo, bookingRepo, entryRepo, outboxRepo, idGen, m).
		WithRetrier(retrier).
		WithTransactionTimeout(cfg.LedgerTxTimeout)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, m)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		ListingHandler:   handler.NewListingHandler(listingUC),
		BookingHandler:   handler.NewBookingHandler(bookingUC, listingUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("authentication enabled")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
		routerCfg.RateLimiter = limiter
	}

	publisher, closePublisher, err := newPublisher(cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closePublisher(); err != nil {
			log.Warn().Err(err).Msg("failed to close event sink")
		}
	}()

	eventPublisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		if err := eventPublisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(limiterCleanupPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					limiter.CleanupLimiters()
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server forced to shutdown")
		}
		return nil
	})

	return g.Wait()
}

// newPublisher builds the outbox sink selected by EVENT_SINK. The returned
// close func releases broker resources.
func newPublisher(cfg *config.Config, client goredis.UniversalClient, log zerolog.Logger) (eventpublisher.Publisher, func() error, error) {
	noop := func() error { return nil }

	switch cfg.EventSink {
	case config.EventSinkRedis:
		log.Info().Str("stream", cfg.EventStream).Msg("publishing events to redis stream")
		return eventpublisher.NewRedisStreamPublisher(client, cfg.EventStream, streamMaxLen), noop, nil
	case config.EventSinkAMQP:
		p, err := eventpublisher.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect event broker")
		}
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing events to amqp")
		return p, p.Close, nil
	default:
		return eventpublisher.NewLogPublisher(log), noop, nil
	}
}
