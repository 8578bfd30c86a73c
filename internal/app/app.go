// Package app wires the service components together.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/insalessync/internal/config"
	"github.com/xelth-com/insalessync/internal/database"
	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/lock"
	"github.com/xelth-com/insalessync/internal/reconcile"
	"github.com/xelth-com/insalessync/internal/services/odoo"
	"github.com/xelth-com/insalessync/internal/store"
	"github.com/xelth-com/insalessync/internal/websocket"
)

// App holds the long lived components of the service
type App struct {
	DB      *database.DB
	Store   *store.Store
	Engine  *reconcile.Engine
	Clients reconcile.ClientFactory
	Odoo    *odoo.SyncService
	Hub     *websocket.Hub
	Locker  reconcile.Locker

	closers []func() error
}

// NewLocker picks the Redis lock when an address is configured
func NewLocker(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (reconcile.Locker, func() error, error) {
	if cfg.Addr == "" {
		logger.Info("🔒 Run lock: in-process")
		return lock.NewLocal(), func() error { return nil }, nil
	}
	l, err := lock.NewRedis(ctx, cfg.Addr, cfg.Password, cfg.DB, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("🔒 Run lock: Redis", zap.String("addr", cfg.Addr))
	return l, l.Close, nil
}

// New connects the database, migrates the schema and builds the engine.
// A nil hub disables the live event feed.
func New(ctx context.Context, cfg *config.Config, hub *websocket.Hub, logger *zap.Logger) (*App, error) {
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a := &App{DB: db, Hub: hub, closers: []func() error{db.Close}}

	logger.Info("🚀 Synchronizing database schema...")
	if err := db.AutoMigrate(store.Models()...); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	locker, closeLock, err := NewLocker(ctx, cfg.Redis, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Locker = locker
	a.closers = append([]func() error{closeLock}, a.closers...)

	a.Store = store.New(db.DB)
	odooClient := odoo.NewClient(cfg.Odoo.URL, cfg.Odoo.Database, cfg.Odoo.Username, cfg.Odoo.Password)
	a.Clients = reconcile.NewClientFactory(cfg.EncKey, insales.Options{
		Timeout: cfg.InSales.Timeout,
		PerPage: cfg.InSales.PerPage,
	})

	deps := reconcile.Deps{
		Catalog:    a.Store,
		Pricing:    odoo.NewPricing(odooClient),
		Precision:  odoo.NewPrecision(odooClient, cfg.Sync.PrecisionCacheTTL),
		Stock:      a.Store,
		Configs:    a.Store,
		Categories: a.Store,
		Clients:    a.Clients,
		History:    a.Store,
		Locker:     locker,
	}
	if hub != nil {
		deps.Notifier = hub
	}
	a.Engine = reconcile.NewEngine(deps, logger)
	a.Engine.LockTTL = cfg.Sync.LockTTL

	a.Odoo = odoo.NewSyncService(db.DB, odooClient, odoo.Config{
		URL:           cfg.Odoo.URL,
		Database:      cfg.Odoo.Database,
		Username:      cfg.Odoo.Username,
		Password:      cfg.Odoo.Password,
		SyncInterval:  cfg.Sync.Interval,
		SyncOnStartup: cfg.Sync.OnStartup,
	}, logger)
	a.Odoo.AfterPull(a.Engine.RunAll)

	return a, nil
}

// Close releases the lock backend and the database, in that order
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
