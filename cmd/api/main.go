package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neosoob/clash-test/internal/config"
	"github.com/neosoob/clash-test/internal/httpapi"
	"github.com/neosoob/clash-test/internal/logging"
	"github.com/neosoob/clash-test/internal/logstore"
	"github.com/neosoob/clash-test/internal/logstore/file"
	"github.com/neosoob/clash-test/internal/logstore/memory"
	"github.com/neosoob/clash-test/internal/logstore/postgres"
	"github.com/neosoob/clash-test/internal/metrics"
	"github.com/neosoob/clash-test/internal/notify"
	"github.com/neosoob/clash-test/internal/probe"
	"github.com/neosoob/clash-test/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.AppLogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_init_failed", zap.Error(err))
	}
	defer closeStore()

	checker := probe.NewHTTPChecker(cfg.ProbeTimeout)
	sched := scheduler.New(logger, checker, store, cfg.TargetURL, cfg.DefaultIntervalSeconds)

	api := httpapi.NewServer(logger, store, sched, httpapi.Options{
		ReadOnly:               cfg.ReadOnly,
		ExposeRawLog:           cfg.ExposeRawLog,
		DefaultIntervalSeconds: cfg.DefaultIntervalSeconds,
		RateLimitPerMin:        cfg.RateLimitPerMin,
		RateLimitBurst:         cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api_listen",
			zap.String("addr", cfg.Addr),
			zap.String("target", cfg.TargetURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sched.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if notifier := buildNotifier(cfg); notifier != nil {
		alerter := scheduler.NewAlerter(logger, store, notifier, scheduler.AlerterConfig{
			Target:          cfg.TargetURL,
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
			PollInterval:    cfg.AlertPollInterval,
		})
		g.Go(func() error {
			if err := alerter.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("server_exit", zap.Error(err))
	}
	logger.Info("server_stopped")
}

// openStore picks the log backend: postgres when a DSN is configured,
// otherwise the tab-separated file, otherwise memory.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (logstore.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		logger.Info("store_postgres")
		return pg, pg.Close, nil
	}
	if cfg.LogFile != "" {
		logger.Info("store_file", zap.String("path", cfg.LogFile))
		return file.New(cfg.LogFile), func() {}, nil
	}
	logger.Info("store_memory")
	return memory.New(), func() {}, nil
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	var m notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		m = append(m, s)
	}
	if w := notify.NewWebhook(cfg.NotifyWebhookURL); w != nil {
		m = append(m, w)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
