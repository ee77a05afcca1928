package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-auth/internal/api/http"
	"github.com/spec-kit/commerce-auth/internal/auth"
	"github.com/spec-kit/commerce-auth/internal/config"
	"github.com/spec-kit/commerce-auth/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if !cfg.Security.Enabled {
		logger.Warn("bearer authentication disabled; all requests are anonymous")
	} else if cfg.Security.Secret == config.DefaultSecret {
		logger.Warn("using the built-in development signing secret")
	} else if cfg.Security.WeakSecret() {
		logger.Warn("signing secret is shorter than 256 bits")
	}

	metrics := observability.NewMetrics()
	codec := auth.NewTokenCodec(cfg.Security)
	app := httptransport.NewApp(cfg, codec, logger, metrics)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
