// Package store keeps the local side of the synchronization in PostgreSQL via gorm.
package store

import (
	"errors"

	"github.com/xelth-com/insalessync/internal/models"
	"github.com/xelth-com/insalessync/internal/reconcile"
	"gorm.io/gorm"
)

// Store implements the persistence ports of the reconcile engine
type Store struct {
	db *gorm.DB
}

// New creates a store on top of an open connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Models lists every table owned by the service, for AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&models.ProductProduct{},
		&models.StockLocation{},
		&models.StockQuant{},
		&models.InSalesConfig{},
		&models.InSalesCategory{},
		&models.InSalesQuantityField{},
		&models.InSalesTemplateLink{},
		&models.InSalesVariantLink{},
		&models.SyncHistory{},
	}
}

// notFound maps gorm's missing record error to the engine's
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reconcile.ErrLocalNotFound
	}
	return err
}
