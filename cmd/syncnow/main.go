// Command syncnow pulls Odoo once, synchronizes every active InSales
// configuration and exits. It exits non-zero when any step failed.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xelth-com/insalessync/internal/app"
	"github.com/xelth-com/insalessync/internal/config"
	"github.com/xelth-com/insalessync/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 2
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return 2
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil, logger)
	if err != nil {
		logger.Error("Failed to initialize", zap.Error(err))
		return 2
	}
	defer a.Close()

	if err := a.Odoo.RunOnce(ctx); err != nil {
		logger.Error("❌ Sync finished with errors", zap.Error(err))
		return 1
	}
	logger.Info("✅ Sync completed")
	return 0
}
