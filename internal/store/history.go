package store

import (
	"context"

	"github.com/xelth-com/insalessync/internal/models"
)

// Record stores a run record
func (s *Store) Record(ctx context.Context, h *models.SyncHistory) error {
	return s.db.WithContext(ctx).Create(h).Error
}

// History returns the latest run records, optionally of one configuration
func (s *Store) History(ctx context.Context, configID *uint, limit int) ([]models.SyncHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if configID != nil {
		q = q.Where("config_id = ?", *configID)
	}
	var records []models.SyncHistory
	err := q.Find(&records).Error
	return records, err
}
