package reconcile

import (
	"context"
	"iter"
	"time"

	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
)

// Variant is a local product variant together with its InSales bookkeeping
type Variant struct {
	ID              int64
	TemplateID      int64
	Code            string // Odoo default_code, matched against the InSales SKU
	Weight          float64
	ConfigID        *uint
	RemoteProductID int64
	RemoteVariantID int64
	SkipPrice       bool
	SkipQty         bool
	SkipWeight      bool
}

// Catalog is the local product store
type Catalog interface {
	// VariantsByCode returns every active variant whose code equals code
	VariantsByCode(ctx context.Context, code string) ([]Variant, error)
	// Variant returns ErrLocalNotFound when the variant does not exist
	Variant(ctx context.Context, id int64) (*Variant, error)
	// TemplateLink returns ErrLocalNotFound when the template was never linked
	TemplateLink(ctx context.Context, templateID int64) (*models.InSalesTemplateLink, error)
	LinkTemplate(ctx context.Context, link models.InSalesTemplateLink) error
	MarkSynced(ctx context.Context, productID, remoteVariantID int64, at time.Time) error
}

// Pricing computes the price of a product in a pricelist
type Pricing interface {
	PriceFor(ctx context.Context, pricelistID, productID int64, qty float64) (float64, error)
}

// Precision resolves named decimal precisions
type Precision interface {
	Digits(ctx context.Context, name string) (int, error)
}

// Stock returns on-hand minus reserved quantity of a product at a location
type Stock interface {
	Available(ctx context.Context, productID, locationID int64) (float64, error)
}

// RemoteAPI is the subset of the InSales API used by the synchronization
type RemoteAPI interface {
	GetProduct(ctx context.Context, id int64) (*insales.Product, error)
	GetProductVariant(ctx context.Context, productID, variantID int64) (*insales.Variant, error)
	UpdateProductVariant(ctx context.Context, productID, variantID int64, payload map[string]interface{}) error
	Products(ctx context.Context, categoryID int64) iter.Seq2[*insales.Product, error]
	GetCategories(ctx context.Context) ([]insales.Category, error)
	GetVariantField(ctx context.Context, name string) (*insales.VariantField, error)
}

// ClientFactory builds an API client for one configuration
type ClientFactory func(cfg *models.InSalesConfig) (RemoteAPI, error)

// Configs reads InSales configurations. Returned configurations carry their quantity fields.
type Configs interface {
	Active(ctx context.Context) ([]models.InSalesConfig, error)
	// Get returns ErrLocalNotFound when the configuration does not exist
	Get(ctx context.Context, id uint) (*models.InSalesConfig, error)
	SyncCategoryIDs(ctx context.Context, configID uint) ([]int64, error)
}

// CategoryRefresher replaces the local category mirror of a configuration
type CategoryRefresher interface {
	Refresh(ctx context.Context, configID uint, remote []insales.Category) error
}

// History stores configuration run records
type History interface {
	Record(ctx context.Context, h *models.SyncHistory) error
}

// Locker provides mutual exclusion between runs. ok is false when key is held elsewhere.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// Event is published after a variant was reconciled with changes
type Event struct {
	Type            string    `json:"type"`
	ConfigID        uint      `json:"config_id"`
	SKU             string    `json:"sku"`
	RemoteProductID int64     `json:"remote_product_id"`
	RemoteVariantID int64     `json:"remote_variant_id"`
	Changes         []Diff    `json:"changes"`
	DryRun          bool      `json:"dry_run"`
	At              time.Time `json:"at"`
}

// Notifier receives reconciliation events
type Notifier interface {
	Notify(e Event)
}
