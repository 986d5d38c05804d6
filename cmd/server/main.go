package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/adapter/gateway"
	httpadapter "github.com/ecopay/ecoledger/internal/adapter/http"
	"github.com/ecopay/ecoledger/internal/adapter/http/handler"
	pgrepo "github.com/ecopay/ecoledger/internal/adapter/repository/postgres"
	redisrepo "github.com/ecopay/ecoledger/internal/adapter/repository/redis"
	"github.com/ecopay/ecoledger/internal/infrastructure/auth"
	"github.com/ecopay/ecoledger/internal/infrastructure/config"
	"github.com/ecopay/ecoledger/internal/infrastructure/eventpublisher"
	"github.com/ecopay/ecoledger/internal/infrastructure/logger"
	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
	"github.com/ecopay/ecoledger/internal/infrastructure/postgres"
	"github.com/ecopay/ecoledger/internal/infrastructure/redis"
	"github.com/ecopay/ecoledger/internal/infrastructure/scheduler"
	"github.com/ecopay/ecoledger/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	pointsPerToken, err := decimal.NewFromString(cfg.PointsPerToken)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.PointsPerToken).Msg("invalid POINTS_PER_TOKEN")
	}

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := pgrepo.NewTxManager(pool)
	accountRepo := pgrepo.NewAccountRepository(pool)
	entryRepo := pgrepo.NewEntryRepository(pool)
	pointRepo := pgrepo.NewPointRepository(pool)
	listingRepo := pgrepo.NewListingRepository(pool)
	orderRepo := pgrepo.NewOrderRepository(pool)
	conversionRepo := pgrepo.NewConversionRepository(pool)
	outboxRepo := pgrepo.NewOutboxRepository(pool)
	idGen := pgrepo.NewULIDGenerator()
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)
	cache := redisrepo.NewCache(redisClient)

	// Outbound collaborators
	paymentClient := gateway.NewPaymentClient(gateway.PaymentClientConfig{
		BaseURL: cfg.GatewayBaseURL,
		APIKey:  cfg.GatewayAPIKey,
		Timeout: cfg.GatewayTimeout,
		Metrics: m,
		Logger:  log,
	})
	chainClient := gateway.NewChainClient(gateway.ChainClientConfig{
		BaseURL: cfg.ChainRelayBaseURL,
		APIKey:  cfg.ChainRelayAPIKey,
		Timeout: cfg.ChainRelayTimeout,
		Metrics: m,
		Logger:  log,
	})

	// Services
	accountSvc := usecase.NewAccountService(accountRepo, idGen)
	ledgerSvc := usecase.NewLedgerService(usecase.LedgerServiceConfig{
		TxManager:      txManager,
		Accounts:       accountSvc,
		AccountRepo:    accountRepo,
		EntryRepo:      entryRepo,
		PointRepo:      pointRepo,
		Gateway:        paymentClient,
		IDGen:          idGen,
		Metrics:        m,
		GatewayTimeout: cfg.GatewayTimeout,
	})
	transferSvc := usecase.NewTransferService(txManager, accountSvc, accountRepo, entryRepo, outboxRepo, idGen, m)
	marketplaceSvc := usecase.NewMarketplaceService(txManager, accountRepo, listingRepo, outboxRepo, idGen, m)
	settlementSvc := usecase.NewSettlementService(usecase.SettlementServiceConfig{
		TxManager:       txManager,
		AccountRepo:     accountRepo,
		EntryRepo:       entryRepo,
		PointRepo:       pointRepo,
		ListingRepo:     listingRepo,
		OrderRepo:       orderRepo,
		OutboxRepo:      outboxRepo,
		Gateway:         paymentClient,
		IDGen:           idGen,
		Metrics:         m,
		GatewayTimeout:  cfg.GatewayTimeout,
		ReservationTTL:  cfg.ReservationTTL,
		PointsPerCredit: cfg.PointsPerCredit,
	})
	conversionSvc := usecase.NewConversionService(usecase.ConversionServiceConfig{
		TxManager:      txManager,
		ConversionRepo: conversionRepo,
		AccountRepo:    accountRepo,
		PointRepo:      pointRepo,
		OutboxRepo:     outboxRepo,
		Minter:         chainClient,
		IDGen:          idGen,
		Metrics:        m,
		Threshold:      cfg.ConversionThreshold,
		PointsPerToken: pointsPerToken,
		MintTimeout:    cfg.ChainRelayTimeout,
	})
	reconciliationSvc := usecase.NewReconciliationService(accountRepo, entryRepo, pointRepo, m, log)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	router := httpadapter.NewRouter(httpadapter.RouterConfig{
		WalletHandler:     handler.NewWalletHandler(ledgerSvc, transferSvc),
		ListingHandler:    handler.NewListingHandler(marketplaceSvc, accountSvc, cache),
		OrderHandler:      handler.NewOrderHandler(settlementSvc, accountSvc),
		ConversionHandler: handler.NewConversionHandler(conversionSvc, ledgerSvc, accountSvc),
		AdminHandler:      handler.NewAdminHandler(marketplaceSvc, accountSvc, settlementSvc, reconciliationSvc),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		JWTManager:        jwtManager,
		IdempotencyStore:  idempotencyStore,
		Metrics:           m,
		Logger:            log,
		RateLimit:         cfg.RateLimit,
		RateBurst:         cfg.RateBurst,
	})

	// Background workers
	sched, err := scheduler.New(scheduler.Config{
		SettlementSvc:       settlementSvc,
		ReconciliationSvc:   reconciliationSvc,
		Logger:              log,
		SweepSchedule:       cfg.SweepSchedule,
		ConsistencySchedule: cfg.ConsistencySchedule,
		SweepBatchSize:      cfg.SweepBatchSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	sched.Start()
	defer sched.Stop()

	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		Metrics:    m,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher exited")
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
