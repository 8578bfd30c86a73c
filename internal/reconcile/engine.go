package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Named decimal precisions
const (
	PrecisionWeight = "Stock Weight"
	PrecisionPrice  = "Product Price"
)

// Deps are the collaborators of an Engine. Locker, History and Notifier are optional.
type Deps struct {
	Catalog    Catalog
	Pricing    Pricing
	Precision  Precision
	Stock      Stock
	Configs    Configs
	Categories CategoryRefresher
	Clients    ClientFactory
	History    History
	Locker     Locker
	Notifier   Notifier
}

// Engine synchronizes InSales variants with the local catalog
type Engine struct {
	catalog    Catalog
	pricing    Pricing
	precision  Precision
	stock      Stock
	configs    Configs
	categories CategoryRefresher
	clients    ClientFactory
	history    History
	locker     Locker
	notifier   Notifier

	LockTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewEngine creates an engine
func NewEngine(d Deps, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:    d.Catalog,
		pricing:    d.Pricing,
		precision:  d.Precision,
		stock:      d.Stock,
		configs:    d.Configs,
		categories: d.Categories,
		clients:    d.Clients,
		history:    d.History,
		locker:     d.Locker,
		notifier:   d.Notifier,
		LockTTL:    time.Hour,
		logger:     logger,
		now:        time.Now,
	}
}

// digits resolves a named precision, falling back to DefaultDigits
func (e *Engine) digits(ctx context.Context, name string) int {
	d, err := e.precision.Digits(ctx, name)
	if err != nil {
		e.logger.Warn("Failed to resolve decimal precision, using default",
			zap.String("precision", name), zap.Int("digits", DefaultDigits), zap.Error(err))
		return DefaultDigits
	}
	if d <= 0 {
		return DefaultDigits
	}
	return d
}

func (e *Engine) notify(ev Event) {
	if e.notifier != nil {
		e.notifier.Notify(ev)
	}
}
