package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/openroute/cmd"
	"github.com/nulzo/openroute/internal/app"
	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/platform/logger"
	"github.com/nulzo/openroute/internal/platform/otel"
	"github.com/nulzo/openroute/internal/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: logger.DefaultConfig().EnableColor,
	})
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cmd.CheckForUpdates(ctx, log)

	shutdownTracer, err := otel.InitTracer(cfg.Tracing, cmd.AppVersion, log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	a, err := app.New(ctx, cfg, log, app.Options{Persist: true})
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}

	srv := server.New(cfg, log, a.Service, a.Analytics, cmd.AppVersion)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	a.Close()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
}
