package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/validation"
	"github.com/mamadbah2/stockledger/internal/idempotency"
	"github.com/mamadbah2/stockledger/internal/repository"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	"github.com/mamadbah2/stockledger/internal/repository/sheets"
	"github.com/mamadbah2/stockledger/internal/scheduler"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/server/middleware"
	"github.com/mamadbah2/stockledger/internal/server/router"
	authsvc "github.com/mamadbah2/stockledger/internal/service/auth"
	catalogsvc "github.com/mamadbah2/stockledger/internal/service/catalog"
	inventorysvc "github.com/mamadbah2/stockledger/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/stockledger/internal/service/reporting"
	"github.com/mamadbah2/stockledger/pkg/clients/webhook"
	"github.com/mamadbah2/stockledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var (
		stocks     repository.StockRepository
		categories repository.CategoryRepository
		users      repository.UserRepository
		store      handlers.Pinger
	)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		baseLogger.Warn("using in-memory store, data is lost on restart")
		stocks = memory.NewStockRepository()
		categories = memory.NewCategoryRepository()
		users = memory.NewUserRepository()
	default:
		mongoClient, err := mongodb.NewClient(context.Background(), cfg.MongoDB, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoClient.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		stocks = mongoClient.Stocks()
		categories = mongoClient.Categories()
		users = mongoClient.Users()
		store = mongoClient
	}

	var keys idempotency.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to reach redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		keys = idempotency.NewRedisStore(rdb, cfg.Redis.IdempotencyTTL)
		baseLogger.Info("idempotency keys stored in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		keys = idempotency.NewMemoryStore(cfg.Redis.IdempotencyTTL)
	}

	thresholds := cfg.Inventory.Thresholds()
	validator := validation.New(cfg.Inventory.Locations)

	inventorySvc := inventorysvc.NewService(stocks, categories, validator, keys, inventorysvc.Options{
		Thresholds:      thresholds,
		DefaultPageSize: cfg.Inventory.DefaultPageSize,
		MaxPageSize:     cfg.Inventory.MaxPageSize,
	}, baseLogger.Named("svc.inventory"))
	reportingSvc := reportingsvc.NewService(stocks, thresholds, baseLogger.Named("svc.reporting"))
	catalogSvc := catalogsvc.NewService(categories, stocks, validator, baseLogger.Named("svc.catalog"))
	authSvc := authsvc.NewService(users, validator, authsvc.Options{
		Secret:     []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.Issuer,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, baseLogger.Named("svc.auth"))

	engine := router.New(router.Deps{
		Stocks:      handlers.NewStockHandler(inventorySvc, reportingSvc, baseLogger.Named("handlers.stocks")),
		Categories:  handlers.NewCategoryHandler(catalogSvc, baseLogger.Named("handlers.categories")),
		Auth:        handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Tokens:      authSvc,
		RateLimiter: middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		Store:       store,
	}, baseLogger.Named("router"))

	if cfg.Reporting.Enabled {
		var hook webhook.Client
		if cfg.Webhook.URL != "" {
			hook = webhook.NewClient(cfg.Webhook)
			baseLogger.Info("digest webhook enabled")
		}

		var exporter sheets.Exporter
		if cfg.Sheets.Enabled() {
			sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
			if err != nil {
				baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
			}
			exporter = sheetsRepo
			baseLogger.Info("digest sheets export enabled")
		}

		sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, hook, exporter, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
