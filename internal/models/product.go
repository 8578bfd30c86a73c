package models

import (
	"strconv"
	"time"
)

// ProductProduct mirrors Odoo 'product.product'
type ProductProduct struct {
	ID            int64      `gorm:"primaryKey;autoIncrement:false" json:"id" xmlrpc:"id"`
	ProductTmplID OdooID     `gorm:"index" json:"product_tmpl_id" xmlrpc:"product_tmpl_id"`
	DefaultCode   OdooString `gorm:"index" json:"default_code" xmlrpc:"default_code"` // SKU
	Barcode       OdooString `gorm:"index" json:"barcode" xmlrpc:"barcode"`
	Name          string     `json:"name" xmlrpc:"name"`
	Active        bool       `gorm:"not null" json:"active" xmlrpc:"active"`
	Type          string     `json:"type" xmlrpc:"type"`
	ListPrice     float64    `json:"list_price" xmlrpc:"list_price"`
	Weight        float64    `json:"weight" xmlrpc:"weight"`
	WriteDate     OdooString `gorm:"index" json:"write_date" xmlrpc:"write_date"` // "2006-01-02 15:04:05", sortable

	LastSyncedAt time.Time `json:"last_synced_at"`
}

func (ProductProduct) TableName() string { return "product_product" }

// InSalesTemplateLink holds InSales bookkeeping for an Odoo 'product.template'
type InSalesTemplateLink struct {
	TemplateID      int64     `gorm:"primaryKey;autoIncrement:false" json:"template_id"`
	ConfigID        *uint     `gorm:"index" json:"config_id"`
	RemoteProductID int64     `gorm:"index" json:"remote_product_id"`
	Permalink       string    `json:"permalink"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (InSalesTemplateLink) TableName() string { return "insales_template_link" }

// InSalesVariantLink holds InSales bookkeeping for an Odoo 'product.product'
type InSalesVariantLink struct {
	ProductID       int64      `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	RemoteVariantID int64      `json:"remote_variant_id"`
	SyncedAt        *time.Time `gorm:"index" json:"synced_at"`
	SkipPrice       bool       `gorm:"default:false" json:"skip_price"`
	SkipQty         bool       `gorm:"default:false" json:"skip_qty"`
	SkipWeight      bool       `gorm:"default:false" json:"skip_weight"`
}

func (InSalesVariantLink) TableName() string { return "insales_variant_link" }

// VariantFlags is the editable per-variant part of a link
type VariantFlags struct {
	SkipPrice  bool `json:"skip_price"`
	SkipQty    bool `json:"skip_qty"`
	SkipWeight bool `json:"skip_weight"`
}

// TemplateView is a product template as shown to operators.
// Per-variant fields are only filled in when the template has exactly one variant.
type TemplateView struct {
	TemplateID      int64      `json:"template_id"`
	ConfigID        *uint      `json:"config_id"`
	RemoteProductID int64      `json:"remote_product_id"`
	Permalink       string     `json:"permalink"`
	VariantCount    int        `json:"variant_count"`
	RemoteVariantID int64      `json:"remote_variant_id"`
	SyncedAt        *time.Time `json:"synced_at"`
	VariantFlags
	PublicURL string `json:"public_url,omitempty"`
	AdminURL  string `json:"admin_url,omitempty"`
}

// ProjectTemplate builds the template view from its link and the links of its variants.
// variants must hold one entry per variant of the template (zero value when unlinked).
func ProjectTemplate(link InSalesTemplateLink, variants []InSalesVariantLink, host string) TemplateView {
	view := TemplateView{
		TemplateID:      link.TemplateID,
		ConfigID:        link.ConfigID,
		RemoteProductID: link.RemoteProductID,
		Permalink:       link.Permalink,
		VariantCount:    len(variants),
	}

	if len(variants) == 1 {
		v := variants[0]
		view.RemoteVariantID = v.RemoteVariantID
		view.SyncedAt = v.SyncedAt
		view.VariantFlags = VariantFlags{
			SkipPrice:  v.SkipPrice,
			SkipQty:    v.SkipQty,
			SkipWeight: v.SkipWeight,
		}
	}

	if host != "" && link.ConfigID != nil {
		if link.Permalink != "" {
			view.PublicURL = "https://" + host + ".myinsales.ru/product/" + link.Permalink
		}
		if link.RemoteProductID != 0 {
			view.AdminURL = "https://" + host + ".myinsales.ru/admin2/products/" + strconv.FormatInt(link.RemoteProductID, 10)
		}
	}

	return view
}
