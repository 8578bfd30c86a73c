package odoo

import (
	"context"
	"time"

	"github.com/xelth-com/insalessync/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pageSize = 1000

// SyncService mirrors the Odoo catalog into the local database and then runs the
// InSales synchronization, on a fixed interval
type SyncService struct {
	client    *Client
	db        *gorm.DB
	cfg       Config
	logger    *zap.Logger
	afterPull func(ctx context.Context) error
	stop      chan struct{}
}

// Config holds Odoo connection settings
type Config struct {
	URL           string
	Database      string
	Username      string
	Password      string
	SyncInterval  int // in minutes
	SyncOnStartup bool
}

// NewSyncService creates a new synchronization service
func NewSyncService(db *gorm.DB, client *Client, cfg Config, logger *zap.Logger) *SyncService {
	return &SyncService{
		client: client,
		db:     db,
		cfg:    cfg,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// AfterPull registers the step run after every pull, even a failed one
func (s *SyncService) AfterPull(fn func(ctx context.Context) error) {
	s.afterPull = fn
}

// Start begins the background synchronization loop
func (s *SyncService) Start(ctx context.Context) {
	go func() {
		s.logger.Info("📡 Sync scheduler started", zap.Int("interval_minutes", s.cfg.SyncInterval))

		if s.cfg.SyncOnStartup {
			// Initial sync delay
			select {
			case <-time.After(5 * time.Second):
				s.RunOnce(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}

		interval := time.Duration(s.cfg.SyncInterval) * time.Minute
		if s.cfg.SyncInterval <= 0 {
			interval = 15 * time.Minute
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-s.stop:
				s.logger.Info("🛑 Sync scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("🛑 Sync scheduler stopped")
				return
			}
		}
	}()
}

// Stop halts the service
func (s *SyncService) Stop() {
	close(s.stop)
}

// RunOnce pulls Odoo and runs the registered follow-up step.
// Returns the first error of either step.
func (s *SyncService) RunOnce(ctx context.Context) error {
	pullErr := s.Pull(ctx)
	if pullErr != nil {
		s.logger.Error("❌ Odoo: Pull failed, continuing with local mirror", zap.Error(pullErr))
	}
	if s.afterPull == nil {
		return pullErr
	}
	if err := s.afterPull(ctx); err != nil {
		s.logger.Error("❌ InSales: Synchronization finished with errors", zap.Error(err))
		if pullErr == nil {
			return err
		}
	}
	return pullErr
}

// Pull mirrors locations, products and quants.
// Disabled when no Odoo URL is configured.
func (s *SyncService) Pull(ctx context.Context) error {
	if s.cfg.URL == "" {
		s.logger.Debug("Odoo pull disabled: ODOO_URL not configured")
		return nil
	}

	s.logger.Info("🔄 Odoo: Starting pull...")

	// Order matters: locations first (for hierarchy), then products, then quants
	if err := s.syncLocations(ctx); err != nil {
		return err
	}
	if err := s.syncProducts(ctx); err != nil {
		return err
	}
	if err := s.syncQuants(ctx); err != nil {
		return err
	}

	s.logger.Info("✅ Odoo: Pull completed")
	return nil
}

// searchReadAll pages through search_read; each page is handed to fn
func searchReadAll[T any](ctx context.Context, c *Client, model string, domain []interface{}, fields []string, opts SearchReadOptions, fn func([]T) error) error {
	opts.Limit = pageSize
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts.Offset = offset

		var page []T
		if err := c.SearchRead(model, domain, fields, opts, &page); err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		if len(page) < pageSize {
			return nil
		}
	}
}

// syncProducts pulls products changed since the newest local write_date into 'product_product'.
// Archived products are included so their active flag is mirrored.
func (s *SyncService) syncProducts(ctx context.Context) error {
	log := s.logger.With(zap.String("model", "product.product"))
	log.Info("📦 Odoo: Syncing Products...")

	// 1. Get last write_date from local DB
	var lastProduct models.ProductProduct
	lastWriteDate := "2000-01-01 00:00:00"

	result := s.db.WithContext(ctx).Order("write_date DESC").Limit(1).Find(&lastProduct)
	if result.Error == nil && result.RowsAffected > 0 && lastProduct.WriteDate != "" {
		lastWriteDate = lastProduct.WriteDate.String()
	}

	// 2. Prepare Domain
	domain := []interface{}{
		[]interface{}{"write_date", ">", lastWriteDate},
	}
	opts := SearchReadOptions{
		Order:   "write_date, id",
		Context: map[string]interface{}{"active_test": false},
	}
	fields := []string{
		"product_tmpl_id", "default_code", "barcode", "name", "type", "list_price", "weight", "write_date", "active",
	}

	// 3. Fetch from Odoo and save page by page
	count := 0
	err := searchReadAll(ctx, s.client, "product.product", domain, fields, opts, func(products []models.ProductProduct) error {
		if len(products) == 0 {
			return nil
		}
		now := time.Now()
		for i := range products {
			products[i].LastSyncedAt = now
		}

		// Upsert logic based on ID (Primary Key is Odoo ID)
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(products, 200).Error; err != nil {
			return err
		}
		count += len(products)
		return nil
	})
	if err != nil {
		log.Error("❌ Odoo Sync Error (Products)", zap.Error(err))
		return err
	}

	log.Info("✅ Odoo: Updated products", zap.Int("count", count))
	return nil
}

// syncLocations pulls internal and view locations into 'stock_location'
func (s *SyncService) syncLocations(ctx context.Context) error {
	log := s.logger.With(zap.String("model", "stock.location"))
	log.Info("📍 Odoo: Syncing Locations...")

	domain := []interface{}{
		[]interface{}{"usage", "in", []interface{}{"internal", "view"}},
	}
	opts := SearchReadOptions{
		Order:   "id",
		Context: map[string]interface{}{"active_test": false},
	}
	fields := []string{"name", "complete_name", "barcode", "usage", "location_id", "active"}

	count := 0
	err := searchReadAll(ctx, s.client, "stock.location", domain, fields, opts, func(locations []models.StockLocation) error {
		if len(locations) == 0 {
			return nil
		}
		now := time.Now()
		for i := range locations {
			locations[i].LastSyncedAt = now
		}
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(locations, 200).Error; err != nil {
			return err
		}
		count += len(locations)
		return nil
	})
	if err != nil {
		log.Error("❌ Odoo Sync Error (Locations)", zap.Error(err))
		return err
	}

	log.Info("✅ Odoo: Updated locations", zap.Int("count", count))
	return nil
}

// syncQuants replaces 'stock_quant' with the quants of internal locations.
// Quants disappear in Odoo when emptied, so the table is rebuilt instead of upserted.
func (s *SyncService) syncQuants(ctx context.Context) error {
	log := s.logger.With(zap.String("model", "stock.quant"))
	log.Info("📊 Odoo: Syncing Quants...")

	domain := []interface{}{
		[]interface{}{"location_id.usage", "=", "internal"},
	}
	fields := []string{"product_id", "location_id", "quantity", "reserved_quantity"}

	var quants []models.StockQuant
	err := searchReadAll(ctx, s.client, "stock.quant", domain, fields, SearchReadOptions{Order: "id"}, func(page []models.StockQuant) error {
		quants = append(quants, page...)
		return nil
	})
	if err != nil {
		log.Error("❌ Odoo Sync Error (Quants)", zap.Error(err))
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StockQuant{}).Error; err != nil {
			return err
		}
		if len(quants) == 0 {
			return nil
		}
		return tx.CreateInBatches(quants, 500).Error
	})
	if err != nil {
		log.Error("❌ Odoo Sync Error (Quants)", zap.Error(err))
		return err
	}

	log.Info("✅ Odoo: Replaced quants", zap.Int("count", len(quants)))
	return nil
}
