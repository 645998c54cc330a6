package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/nonfiler/internal/config"
	"github.com/JonMunkholm/nonfiler/internal/core"
	"github.com/JonMunkholm/nonfiler/internal/logging"
	"github.com/JonMunkholm/nonfiler/internal/metrics"
	"github.com/JonMunkholm/nonfiler/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dataset_url", cfg.Dataset.URL,
		"session_ttl", cfg.Session.TTL,
		"load_max_concurrent", cfg.Load.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	policy, err := core.ParseGenderPolicy(cfg.Summary.GenderPolicy)
	if err != nil {
		slog.Error("invalid gender policy", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := core.NewService(core.NewLoader(cfg.Dataset, &http.Client{}), core.ServiceOptions{
		Sessions:     core.NewSessionStore(cfg.Session.TTL, cfg.Session.MaxSessions),
		Limiter:      core.NewLoadLimiter(cfg.Load.MaxConcurrent, cfg.Load.MaxWaitTime),
		Metrics:      metrics.NewWithRegistry(reg),
		GenderPolicy: policy,
	})

	server := web.NewServer(service, cfg, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		return service.RunJanitor(gctx, cfg.Session.SweepInterval)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LoadStatus(); status.Active > 0 {
			slog.Info("waiting for loads to complete", "active", status.Active)
			if err := service.WaitForLoads(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			} else {
				slog.Info("all loads completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
