package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/partsdesk/partsdesk/internal/app"
	"github.com/partsdesk/partsdesk/internal/billing"
	"github.com/partsdesk/partsdesk/internal/documents"
	"github.com/partsdesk/partsdesk/internal/invoicepdf"
	"github.com/partsdesk/partsdesk/internal/platform/db"
	"github.com/partsdesk/partsdesk/internal/shared"
	"github.com/partsdesk/partsdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.Connect(ctx, db.Config{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	numbers := shared.NewSequenceNumberSource(pool)
	auditLogger := shared.NewAuditLogger(pool)

	renderer := invoicepdf.NewRenderer(invoicepdf.CompanyProfile{
		Name:        cfg.CompanyName,
		Address:     cfg.CompanyAddress,
		GSTIN:       cfg.CompanyGSTIN,
		Phone:       cfg.CompanyPhone,
		BankDetails: cfg.BankDetails,
		Terms:       cfg.InvoiceTerms,
	})
	docStore := documents.NewFSStore(cfg.DocumentStorageDir)

	billingRepo := billing.NewRepository(pool)
	// The worker never enqueues follow-up jobs, so no jobs client is wired in.
	billingService := billing.NewService(billingRepo, numbers, auditLogger, nil, renderer, docStore, logger, cfg.DefaultCGSTRate, cfg.DefaultSGSTRate)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeInvoiceDocument, Handler: jobs.NewInvoiceDocumentHandler(billingService, logger)},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
