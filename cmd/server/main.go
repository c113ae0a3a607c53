package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/fundme/internal/adapter/http"
	"github.com/iho/fundme/internal/adapter/http/handler"
	"github.com/iho/fundme/internal/adapter/http/middleware"
	"github.com/iho/fundme/internal/adapter/oracle"
	"github.com/iho/fundme/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/fundme/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fundme/internal/adapter/repository/redis"
	"github.com/iho/fundme/internal/infrastructure/auth"
	"github.com/iho/fundme/internal/infrastructure/config"
	"github.com/iho/fundme/internal/infrastructure/eventpublisher"
	"github.com/iho/fundme/internal/infrastructure/idgen"
	"github.com/iho/fundme/internal/infrastructure/logger"
	"github.com/iho/fundme/internal/infrastructure/metrics"
	"github.com/iho/fundme/internal/infrastructure/postgres"
	"github.com/iho/fundme/internal/infrastructure/redis"
	"github.com/iho/fundme/internal/usecase"
)

// rateLimiterIdle is how long an idle client keeps its limiter.
const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// app is the wired service.
type app struct {
	router      http.Handler
	fundingUC   *usecase.FundingUseCase
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage is one persistence backend behind the use case interfaces.
type storage struct {
	txManager        usecase.TransactionManager
	ledgerRepo       usecase.LedgerRepository
	funderRepo       usecase.FunderRepository
	contributionRepo usecase.ContributionRepository
	withdrawalRepo   usecase.WithdrawalRepository
	outboxRepo       usecase.OutboxRepository
	retrier          usecase.Retrier
	check            handler.HealthCheck
	close            func()
}

func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		log.Warn().Msg("using in-memory storage, state is lost on restart")
		return &storage{
			txManager:        store,
			ledgerRepo:       memory.NewLedgerRepository(store),
			funderRepo:       memory.NewFunderRepository(store),
			contributionRepo: memory.NewContributionRepository(store),
			withdrawalRepo:   memory.NewWithdrawalRepository(store),
			outboxRepo:       memory.NewOutboxRepository(store),
			check:            handler.HealthCheck{Name: "memory", Ping: store.Ping},
			close:            func() {},
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		txManager:        postgresRepo.NewTxManager(pool),
		ledgerRepo:       postgresRepo.NewLedgerRepository(pool),
		funderRepo:       postgresRepo.NewFunderRepository(pool),
		contributionRepo: postgresRepo.NewContributionRepository(pool),
		withdrawalRepo:   postgresRepo.NewWithdrawalRepository(pool),
		outboxRepo:       postgresRepo.NewOutboxRepository(pool),
		retrier:          postgresRepo.NewRetrier(log),
		check:            handler.HealthCheck{Name: "postgres", Ping: pool.Ping},
		close:            pool.Close,
	}, nil
}

func newOracle(cfg *config.Config) usecase.PriceOracle {
	if cfg.PriceFeedURL != "" {
		return oracle.NewHTTPFeed(cfg.PriceFeedURL, cfg.PriceFeedTimeout)
	}
	return oracle.NewStaticAggregator(cfg.PriceFeedAddress, cfg.OracleStaticAnswer, cfg.OracleDecimals)
}

// newApp wires configuration into a ready router and initializes the ledger.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}

	store, err := newStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	checks := []handler.HealthCheck{store.check}

	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		sink             eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{URL: cfg.RedisURL}, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })

		cache = redisRepo.NewCache(client)
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		sink = redisRepo.NewEventPublisher(client, cfg.EventChannel)
		checks = append(checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	fundingUC := usecase.NewFundingUseCase(usecase.FundingUseCaseConfig{
		TxManager:        store.txManager,
		LedgerRepo:       store.ledgerRepo,
		FunderRepo:       store.funderRepo,
		ContributionRepo: store.contributionRepo,
		WithdrawalRepo:   store.withdrawalRepo,
		OutboxRepo:       store.outboxRepo,
		Oracle:           newOracle(cfg),
		IDGen:            idgen.NewULIDGenerator(),
		Retrier:          store.retrier,
		Cache:            cache,
		Recorder:         recorder,
		Logger:           &log,
		QuoteCacheTTL:    cfg.QuoteCacheTTL,
	})

	ledger, err := fundingUC.Initialize(ctx, usecase.InitializeInput{
		Owner:      cfg.LedgerOwner,
		PriceFeed:  cfg.PriceFeedAddress,
		MinimumUSD: cfg.MinimumUSD,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	recorder.BalanceChanged(ledger.Balance)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
			OnReject(recorder.RateLimitHits.Inc)
	}

	a.fundingUC = fundingUC
	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outboxRepo,
		Publisher:  sink,
		Logger:     &log,
		Interval:   cfg.EventPublishInterval,
		Retention:  cfg.EventRetention,
	})
	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		FundingHandler:   handler.NewFundingHandler(fundingUC),
		LedgerHandler:    handler.NewLedgerHandler(usecase.NewLedgerUseCase(store.txManager, store.ledgerRepo, store.funderRepo)),
		HealthHandler:    handler.NewHealthHandler(checks...),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.rateLimiter,
		HTTPMetrics:      middleware.NewHTTPMetrics(reg),
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		JWTManager:       jwtManager,
		Logger:           log,
	})

	log.Info().
		Str("ledger_id", ledger.ID).
		Str("owner", ledger.Owner.String()).
		Str("storage", cfg.StorageDriver).
		Bool("redis", cfg.RedisURL != "").
		Bool("auth", cfg.AuthEnabled).
		Msg("fundme ready")

	return a, nil
}

// run serves HTTP and relays outbox events until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := a.publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if a.rateLimiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(rateLimiterIdle)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					a.rateLimiter.CleanupLimiters(rateLimiterIdle)
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
