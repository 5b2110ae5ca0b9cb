package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/app"
	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, cfg, baseLogger); err != nil {
		baseLogger.Fatal("server stopped", zap.Error(err))
	}
	baseLogger.Info("server stopped")
}
