package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/formlens/insight-engine/internal/api"
	"github.com/formlens/insight-engine/internal/cache"
	"github.com/formlens/insight-engine/internal/config"
	"github.com/formlens/insight-engine/internal/engine"
	"github.com/formlens/insight-engine/internal/metrics"
	"github.com/formlens/insight-engine/internal/plans"
	"github.com/formlens/insight-engine/internal/store"
	"github.com/formlens/insight-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting insight-engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	kv := openStore(cfg, logger)
	defer kv.Close()

	resultCache := cache.NewResultCache(kv, cfg.Engine.ResultTTL, logger)
	planStore := plans.NewStore(kv, logger)

	extraRules, err := engine.LoadRulePack(cfg.Rules.Path)
	if err != nil {
		logger.Error("failed to load rule pack", slog.String("path", cfg.Rules.Path), slog.Any("error", err))
		os.Exit(1)
	}

	eng := engine.New(logger, resultCache)
	planner := engine.NewPlanner(logger, planStore, cfg.Engine.MinInterval, extraRules)
	handlers := api.NewHandlers(logger, eng, planner, planStore)
	router := api.NewRouter(handlers, cfg.Server.AllowedOrigins)
	server := api.NewServer(logger, cfg.Server.Address, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("insight-engine stopped")
}

// openStore builds the configured key-value backend. Backend failures fall
// back to the in-memory store so the engine still serves, uncached.
func openStore(cfg *config.Config, logger *slog.Logger) store.KV {
	switch cfg.Storage.Backend {
	case "sqlite":
		kv, err := store.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Warn("sqlite store unavailable, falling back to memory",
				slog.String("path", cfg.Storage.SQLitePath), slog.Any("error", err))
			return store.NewMemory()
		}
		logger.Info("using sqlite store", slog.String("path", cfg.Storage.SQLitePath))
		return kv
	case "valkey":
		kv, err := store.NewValkey(store.ValkeyConfig{
			Addr:         cfg.Storage.Valkey.Addr,
			Username:     cfg.Storage.Valkey.Username,
			Password:     cfg.Storage.Valkey.Password,
			DB:           cfg.Storage.Valkey.DB,
			DialTimeout:  cfg.Storage.Valkey.DialTimeout,
			ReadTimeout:  cfg.Storage.Valkey.ReadTimeout,
			WriteTimeout: cfg.Storage.Valkey.WriteTimeout,
			MaxRetries:   cfg.Storage.Valkey.MaxRetries,
			TLS:          cfg.Storage.Valkey.TLS,
		})
		if err != nil {
			logger.Warn("valkey store unavailable, falling back to memory",
				slog.String("addr", cfg.Storage.Valkey.Addr), slog.Any("error", err))
			return store.NewMemory()
		}
		logger.Info("using valkey store", slog.String("addr", cfg.Storage.Valkey.Addr))
		return kv
	default:
		return store.NewMemory()
	}
}
