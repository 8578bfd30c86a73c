package store

import (
	"context"

	"github.com/xelth-com/insalessync/internal/models"
	"github.com/xelth-com/insalessync/internal/reconcile"
	"gorm.io/gorm"
)

// Active returns every active configuration with its quantity fields
func (s *Store) Active(ctx context.Context) ([]models.InSalesConfig, error) {
	var configs []models.InSalesConfig
	err := s.db.WithContext(ctx).
		Preload("QuantityFields").
		Where("active = ?", true).
		Order("host, api_key").
		Find(&configs).Error
	return configs, err
}

// Get returns a configuration with its quantity fields
func (s *Store) Get(ctx context.Context, id uint) (*models.InSalesConfig, error) {
	var cfg models.InSalesConfig
	if err := s.db.WithContext(ctx).Preload("QuantityFields").First(&cfg, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

// List returns all configurations
func (s *Store) List(ctx context.Context) ([]models.InSalesConfig, error) {
	var configs []models.InSalesConfig
	err := s.db.WithContext(ctx).Preload("QuantityFields").Order("host, api_key").Find(&configs).Error
	return configs, err
}

// SyncCategoryIDs returns the remote ids of every category flagged for sync
func (s *Store) SyncCategoryIDs(ctx context.Context, configID uint) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&models.InSalesCategory{}).
		Where("config_id = ? AND sync = ?", configID, true).
		Order("parent_path, remote_id").
		Pluck("remote_id", &ids).Error
	return ids, err
}

// CreateConfig inserts a configuration. The API password must already be sealed.
func (s *Store) CreateConfig(ctx context.Context, cfg *models.InSalesConfig) error {
	return s.db.WithContext(ctx).Omit("Categories", "QuantityFields").Create(cfg).Error
}

// UpdateConfig saves the editable fields of a configuration
func (s *Store) UpdateConfig(ctx context.Context, cfg *models.InSalesConfig) error {
	res := s.db.WithContext(ctx).Model(&models.InSalesConfig{ID: cfg.ID}).
		Select("name", "host", "api_key", "api_password", "active", "prod_environment",
			"pricelist_id", "old_pricelist_id", "sync_weight", "sync_weight_skip_zero").
		Updates(cfg)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return reconcile.ErrLocalNotFound
	}
	return nil
}

// ToggleEnvironment switches a configuration between test and production
func (s *Store) ToggleEnvironment(ctx context.Context, id uint) (*models.InSalesConfig, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.InSalesConfig
		if err := tx.First(&cfg, id).Error; err != nil {
			return notFound(err)
		}
		return tx.Model(&cfg).Update("prod_environment", !cfg.ProdEnvironment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// AddQuantityField stores a quantity mapping. Additional fields must already be resolved.
func (s *Store) AddQuantityField(ctx context.Context, field *models.InSalesQuantityField) error {
	return s.db.WithContext(ctx).Create(field).Error
}

// DeleteQuantityField removes a quantity mapping
func (s *Store) DeleteQuantityField(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.InSalesQuantityField{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return reconcile.ErrLocalNotFound
	}
	return nil
}
