package models

import (
	"time"
)

// InSalesConfig is one connection to an InSales shop
type InSalesConfig struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;default:'New Configuration'" json:"name"`
	Host        string `gorm:"not null;index:idx_insales_host_key" json:"host"` // shop prefix, <host>.myinsales.ru
	APIKey      string `gorm:"not null;index:idx_insales_host_key" json:"api_key"`
	APIPassword string `gorm:"not null" json:"-"` // sealed, see utils.SealSecret

	// Configuration may be temporary disabled
	Active bool `gorm:"not null;default:false;index" json:"active"`
	// Only insignificant information is synchronized in test environment,
	// important data is only written to the log.
	ProdEnvironment bool `gorm:"not null;default:false" json:"prod_environment"`

	PricelistID    *int64 `json:"pricelist_id"`
	OldPricelistID *int64 `json:"old_pricelist_id"`

	SyncWeight         bool `gorm:"default:false" json:"sync_weight"`
	// No column default: gorm would replace an explicit false with it on insert.
	// New configurations get true from the API layer.
	SyncWeightSkipZero bool `gorm:"not null" json:"sync_weight_skip_zero"`

	Categories     []InSalesCategory      `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	QuantityFields []InSalesQuantityField `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE" json:"quantity_fields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InSalesConfig) TableName() string { return "insales_config" }

// InSalesCategory mirrors one node of the shop's category tree
type InSalesCategory struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ConfigID   uint   `gorm:"not null;uniqueIndex:idx_insales_category_remote" json:"config_id"`
	Title      string `json:"title"`
	RemoteID   int64  `gorm:"not null;uniqueIndex:idx_insales_category_remote" json:"remote_id"`
	ParentPath string `gorm:"default:'';index" json:"parent_path"` // "1/5/7", ancestor remote ids
	PathNamed  string `gorm:"default:''" json:"path_named"`       // "Root / Shoes / Boots"
	Sync       bool   `gorm:"default:false;index" json:"sync"`
}

func (InSalesCategory) TableName() string { return "insales_config_category" }

// SelfPath returns the materialized path including the category itself
func (c InSalesCategory) SelfPath() string {
	return JoinPath(c.ParentPath, c.RemoteID)
}

// InSalesQuantityField maps an Odoo stock location to an InSales variant field
type InSalesQuantityField struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ConfigID     uint   `gorm:"not null;index" json:"config_id"`
	LocationID   int64  `gorm:"not null" json:"location_id"`
	IsAdditional bool   `gorm:"default:false" json:"is_additional"`
	RemoteField  string `gorm:"not null" json:"remote_field"`
	// Resolved InSales variant field id, only set for additional fields
	RemoteFieldID *int64 `json:"remote_field_id"`
}

func (InSalesQuantityField) TableName() string { return "insales_config_quantity" }
