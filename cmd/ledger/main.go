package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ledger/internal/backend"
	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/metrics"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(boot.Logger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	var collector metrics.Collector = metrics.NoOpCollector{}
	registry := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		pc := metrics.NewPrometheusCollector("ledger")
		if err := pc.Register(registry); err != nil {
			logger.Error("Failed to register metrics", "error", err)
			os.Exit(1)
		}
		collector = pc
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startCancel()

	factory := backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend), collector)
	res, err := factory.CreateBackend(startCtx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	reportCache := cache.NewLRUCache[any](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager(logger.Logger.With(log.FieldComponent, log.ComponentCache))
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)

	opts := services.Options{
		Metrics:          collector,
		Logger:           logger.WithComponent(log.ComponentLedger),
		ReportCache:      reportCache,
		NearLimitPercent: cfg.NearLimitPercent,
	}
	if res.Events != nil {
		opts.Publisher = res.Events
	}

	svc, err := services.NewLedgerService(startCtx, res.Store, opts)
	if err != nil {
		logger.Error("Failed to load ledger", "error", err)
		_ = res.Close()
		os.Exit(1)
	}

	logOverview(logger, svc)

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		srv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "error", err, "addr", cfg.MetricsAddr)
			}
		}()
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(shutdownCtx context.Context) {
		if srv != nil {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Metrics server shutdown error", "error", err)
			}
		}
		cacheManager.Stop()
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close ledger service", "error", err)
		}
	})

	logger.Info("Ledger ready",
		"backend", cfg.DataBackend,
		"version", svc.Snapshot().Version,
		"events_enabled", res.Events != nil,
		"metrics_enabled", srv != nil)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Ledger stopped gracefully")
}

// logOverview logs this month's summary, the budget alerts and the
// year-to-date financial health.
func logOverview(logger *log.Logger, svc *services.LedgerService) {
	today := core.Today()

	month := svc.MonthlySummary(today.Year(), today.Month())
	logger.Info("Monthly summary",
		"period", month.Label,
		"income", month.Income.String(),
		"expense", month.Expense.String(),
		"net", month.Net.String(),
		"transactions", month.Count)

	for _, alert := range svc.Alerts() {
		logger.Warn("Budget alert", "alert", alert)
	}

	yearStart, _ := core.YearBounds(today.Year())
	health := svc.FinancialHealth(yearStart, today)
	logger.Info("Financial health",
		"score", health.Score,
		"level", health.Level,
		"recommendation", health.Recommendation)
}
