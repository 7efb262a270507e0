package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cap-dashboard/internal/config"
	"cap-dashboard/internal/middleware"
	"cap-dashboard/internal/observability"
	"cap-dashboard/internal/server"
	"cap-dashboard/internal/services"
	"cap-dashboard/internal/ui/templates"
)

const (
	version        = "1.0.0"
	pageTitle      = "Cap Sales Dashboard"
	renderTimeout  = 10 * time.Second
	datasetTimeout = 30 * time.Second
)

// handleDashboard renders the page with every option selected, which is
// what the filters show on first load.
func handleDashboard(dashboard *services.Dashboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		criteria := dashboard.DefaultCriteria()
		result, err := dashboard.Query(ctx, criteria)
		if err != nil {
			logger.Error("initial dashboard query failed", "error", err, "request_id", observability.GetRequestID(ctx))
			http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
			return
		}

		view := templates.PageView{
			Title:    pageTitle,
			Options:  dashboard.Options(),
			Criteria: criteria,
			Result:   result,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := templates.Dashboard(view).Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newHandler(cfg *config.Config, dashboard *services.Dashboard, logger *slog.Logger) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard(dashboard, logger),
	}
	srv := server.NewServer(dashboard, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)
	return chain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"addr", cfg.Address(),
		"dataset_variant", cfg.Dataset.Variant,
		"dataset_csv", cfg.Dataset.CSVFile,
	)

	ctx, cancel := context.WithTimeout(context.Background(), datasetTimeout)
	start := time.Now()
	dashboard, err := services.NewDashboardFromConfig(ctx, cfg.Dataset, logger)
	cancel()
	if err != nil {
		logger.Error("failed to prepare dataset", "error", err)
		os.Exit(1)
	}
	stats := dashboard.Stats()
	logger.Info("dataset ready",
		"source", stats["source"],
		"records", stats["record_count"],
		"duration", time.Since(start),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("dashboard stopped", "queries_served", dashboard.Stats()["query_count"])
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
