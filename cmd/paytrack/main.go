package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"paytrack/internal/amqp"
	"paytrack/internal/backend"
	"paytrack/internal/cli"
	"paytrack/internal/config"
	apphttp "paytrack/internal/http"
	"paytrack/internal/ledger"
	"paytrack/internal/log"
	"paytrack/internal/middleware/ratelimit"
	"paytrack/internal/services"
	"paytrack/internal/view"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		// logger not ready yet; fall back to the default one
		log.New(log.DefaultConfig()).Warn("Ignoring .env file", log.FieldError, err)
	}

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err, log.FieldOperation, log.OpStartup)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateStore(ctx, backendCfg)
	if err != nil {
		return err
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	store := ledger.NewStore(res.Store,
		ledger.WithKeys(cfg.StorageKey, cfg.LegacyStorageKey),
		ledger.WithLogger(logger))

	opts := []services.Option{services.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// change notifications are optional; keep serving without them
			logger.Warn("AMQP unavailable, change notifications disabled",
				log.NewFields().WithError(err).WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
		} else {
			defer client.Close()
			opts = append(opts, services.WithNotifier(client))
			logger.Info("AMQP change notifications enabled",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	svc := services.NewLedgerService(ctx, store, opts...)

	tag := view.ParseLocale(cfg.Locale)
	renderer := view.NewRenderer(
		view.NewLocaleFormatter(tag, cfg.CurrencySymbol),
		view.MonthNamesFor(tag),
		cfg.MonthStripRadius,
	)

	var srvOpts []apphttp.Option
	if cfg.RateLimitPerMinute > 0 {
		srvOpts = append(srvOpts, apphttp.WithRateLimiter(
			ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})))
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, renderer, logger, srvOpts...)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting paytrack server",
			"port", cfg.Port, "backend", cfg.DataBackend, "locale", strings.ToLower(cfg.Locale),
			log.FieldMonth, svc.SelectedMonth())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
