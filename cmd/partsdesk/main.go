package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/partsdesk/partsdesk/internal/app"
	"github.com/partsdesk/partsdesk/internal/auth"
	"github.com/partsdesk/partsdesk/internal/billing"
	"github.com/partsdesk/partsdesk/internal/catalog"
	"github.com/partsdesk/partsdesk/internal/documents"
	"github.com/partsdesk/partsdesk/internal/invoicepdf"
	"github.com/partsdesk/partsdesk/internal/platform/db"
	"github.com/partsdesk/partsdesk/internal/sales/orders"
	"github.com/partsdesk/partsdesk/internal/sales/quotations"
	"github.com/partsdesk/partsdesk/internal/scanning"
	"github.com/partsdesk/partsdesk/internal/shared"
	"github.com/partsdesk/partsdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.Connect(ctx, db.Config{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "partsdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	numbers := shared.NewSequenceNumberSource(dbpool)
	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	renderer := invoicepdf.NewRenderer(invoicepdf.CompanyProfile{
		Name:        cfg.CompanyName,
		Address:     cfg.CompanyAddress,
		GSTIN:       cfg.CompanyGSTIN,
		Phone:       cfg.CompanyPhone,
		BankDetails: cfg.BankDetails,
		Terms:       cfg.InvoiceTerms,
	})
	docStore := documents.NewFSStore(cfg.DocumentStorageDir)

	billingRepo := billing.NewRepository(dbpool)
	billingService := billing.NewService(billingRepo, numbers, auditLogger, jobsClient, renderer, docStore, logger, cfg.DefaultCGSTRate, cfg.DefaultSGSTRate)
	billingHandler := billing.NewHandler(logger, billingService)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo, auditLogger, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	scanHistory := scanning.NewHistoryRepository(dbpool)
	scanningService := scanning.NewService(catalogRepo, scanHistory, logger)
	scanningHandler := scanning.NewHandler(logger, scanningService)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, numbers, auditLogger, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	quotationsRepo := quotations.NewRepository(dbpool)
	quotationsService := quotations.NewService(quotationsRepo, numbers, auditLogger, ordersService, logger)
	quotationsHandler := quotations.NewHandler(logger, quotationsService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthService:       authService,
		AuthHandler:       authHandler,
		BillingHandler:    billingHandler,
		CatalogHandler:    catalogHandler,
		ScanningHandler:   scanningHandler,
		QuotationsHandler: quotationsHandler,
		OrdersHandler:     ordersHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
