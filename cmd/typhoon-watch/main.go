package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/bayanihan-labs/typhoon-watch/internal/adapter/alertkafka"
	httpadapter "github.com/bayanihan-labs/typhoon-watch/internal/adapter/http"
	"github.com/bayanihan-labs/typhoon-watch/internal/adapter/lognotifier"
	"github.com/bayanihan-labs/typhoon-watch/internal/adapter/memstore"
	"github.com/bayanihan-labs/typhoon-watch/internal/adapter/openweather"
	"github.com/bayanihan-labs/typhoon-watch/internal/adapter/redisstore"
	"github.com/bayanihan-labs/typhoon-watch/internal/config"
	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/engine"
	"github.com/bayanihan-labs/typhoon-watch/internal/ledger"
	"github.com/bayanihan-labs/typhoon-watch/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence: Redis when configured, otherwise in-memory.
	var store ledger.Store
	if cfg.RedisAddr != "" {
		rs, err := redisstore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
		if err != nil {
			logger.Error("redis connection failed", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer rs.Close()
		store = rs
		logger.Info("redis persistence enabled", "addr", cfg.RedisAddr)
	} else {
		store = memstore.New()
		logger.Info("using in-memory persistence, alert history will not survive restarts")
	}

	// Notifications: Kafka when brokers are configured, otherwise the log.
	var notifier ledger.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		kn := alertkafka.NewNotifier(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		defer func() {
			if err := kn.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = kn
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		notifier = lognotifier.New(logger)
	}

	led := ledger.New(store, notifier, logger, metrics, ledger.Options{
		DedupWindow:  cfg.AlertDedupWindow,
		HistoryLimit: cfg.AlertHistoryLimit,
	})
	defer led.Close()

	if err := led.Load(ctx); err != nil {
		logger.Warn("alert history load failed, starting empty", "error", err)
	}
	settings, err := led.LoadSettings(ctx)
	if err != nil {
		logger.Warn("settings load failed, using defaults", "error", err)
	}

	owClient := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout, logger)
	fallback := domain.Location{Lat: cfg.DefaultLat, Lon: cfg.DefaultLon, Label: cfg.DefaultLabel}
	locator := openweather.NewLocator(owClient, fallback, logger)

	eng := engine.New(owClient, locator, led, logger, metrics, settings, fallback, engine.Config{
		ProviderTimeout: cfg.ProviderTimeout,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, led, logger)

	// Periodic refresh. A tick that lands during an in-flight cycle is
	// skipped; the engine's own trigger coalescing handles the rest.
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.RefreshInterval), eng.TriggerRefresh); err != nil {
		logger.Error("failed to schedule refresh", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := eng.Run(ctx); err != nil {
			logger.Error("engine error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
