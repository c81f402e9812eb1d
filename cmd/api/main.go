package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tableserve/pos-backend/api/routes"
	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/internal/checkout"
	"github.com/tableserve/pos-backend/internal/holds"
	"github.com/tableserve/pos-backend/internal/ledger"
	"github.com/tableserve/pos-backend/internal/register"
	"github.com/tableserve/pos-backend/internal/stock"
	"github.com/tableserve/pos-backend/pkg/config"
	"github.com/tableserve/pos-backend/pkg/instance"
	"github.com/tableserve/pos-backend/pkg/logger"
	"github.com/tableserve/pos-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registerMetrics := metrics.NewRegisterMetrics(prometheus.DefaultRegisterer)

	loader, err := catalog.NewLoader(cfg.Data.ProductsPath(), cfg.Data.AddonsPath(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build catalog loader", err)
		os.Exit(1)
	}

	cat, report, err := loader.Load(context.Background())
	if err != nil {
		logg.Error(context.Background(), "failed to load catalog", err)
		os.Exit(1)
	}
	if len(report.Issues) > 0 {
		ctx := logg.WithField(context.Background(), "issues", len(report.Issues))
		logg.Warn(ctx, "catalog loaded with skipped records")
	}

	stockSvc, err := stock.NewService(cfg.Data.ProductsPath(), cfg.Data.AddonsPath(), logg, registerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	ledgerSvc, err := ledger.NewService(cfg.Data.LedgerPath(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	checkoutSvc, err := checkout.NewService(stockSvc, ledgerSvc, cfg.Sales.TaxRateFraction(), logg, registerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	registerSvc, err := register.NewService(register.Params{
		Loader:   loader,
		Catalog:  cat,
		Stock:    stockSvc,
		Checkout: checkoutSvc,
		Ledger:   ledgerSvc,
		Holds:    holds.NewQueue(),
		TaxRate:  cfg.Sales.TaxRateFraction(),
		Logger:   logg,
		Metrics:  registerMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"terminal": instance.GetID(),
		"products": report.Products,
		"addons":   report.Addons,
	})
	logg.Info(ctx, "starting register api")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registerSvc),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "register api stopped unexpectedly", err)
		os.Exit(1)
	}
}
