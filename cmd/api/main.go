package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/insalessync/internal/app"
	"github.com/xelth-com/insalessync/internal/config"
	"github.com/xelth-com/insalessync/internal/handlers"
	"github.com/xelth-com/insalessync/internal/logging"
	"github.com/xelth-com/insalessync/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Live event feed
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// 3. Database, schema, engine (Detects Embedded vs External automatically)
	a, err := app.New(ctx, cfg, hub, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}

	// 4. Set up HTTP router
	router := handlers.NewRouter(handlers.Options{
		Store:     a.Store,
		Engine:    a.Engine,
		Clients:   a.Clients,
		Hub:       hub,
		JWTSecret: cfg.JWTSecret,
		EncKey:    cfg.EncKey,
		Logger:    logger,
	})

	// 5. Odoo pull followed by the InSales run (Background)
	a.Odoo.Start(ctx)

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logger.Info("🚀 Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sig := <-shutdown
	logger.Warn("⚠️  Shutting down gracefully...", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	a.Odoo.Stop()
	cancel()

	// Close database (this also stops embedded PostgreSQL)
	logger.Info("🛑 Closing database connection...")
	if err := a.Close(); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	logger.Info("✅ Shutdown complete")
}
