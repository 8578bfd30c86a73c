package models

import (
	"time"
)

// StockLocation mirrors 'stock.location'.
type StockLocation struct {
	ID           int64      `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	Name         string     `json:"name" xmlrpc:"name"`
	CompleteName string     `gorm:"index" json:"complete_name" xmlrpc:"complete_name"` // "WH/Stock/Shelf 1"
	Barcode      OdooString `json:"barcode" xmlrpc:"barcode"`
	Usage        string     `json:"usage" xmlrpc:"usage"` // internal, supplier, customer...
	LocationID   OdooID     `json:"location_id" xmlrpc:"location_id"` // Parent Location
	Active       bool       `gorm:"not null" json:"active" xmlrpc:"active"`

	LastSyncedAt time.Time `json:"last_synced_at"`
}

func (StockLocation) TableName() string {
	return "stock_location"
}

// StockQuant mirrors 'stock.quant'.
// "Product X is at Location Y, Qty N, of which R reserved"
type StockQuant struct {
	ID               int64   `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	ProductID        OdooID  `gorm:"index:idx_quant_product_location" json:"product_id" xmlrpc:"product_id"`
	LocationID       OdooID  `gorm:"index:idx_quant_product_location" json:"location_id" xmlrpc:"location_id"`
	Quantity         float64 `json:"quantity" xmlrpc:"quantity"`
	ReservedQuantity float64 `json:"reserved_quantity" xmlrpc:"reserved_quantity"`
}

func (StockQuant) TableName() string {
	return "stock_quant"
}
