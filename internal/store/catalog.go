package store

import (
	"context"
	"errors"
	"time"

	"github.com/xelth-com/insalessync/internal/models"
	"github.com/xelth-com/insalessync/internal/reconcile"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// variantRow is the join of a mirrored product with its InSales links
type variantRow struct {
	ID              int64
	ProductTmplID   int64
	DefaultCode     string
	Weight          float64
	ConfigID        *uint
	RemoteProductID *int64
	RemoteVariantID *int64
	SkipPrice       *bool
	SkipQty         *bool
	SkipWeight      *bool
}

func (r variantRow) variant() reconcile.Variant {
	v := reconcile.Variant{
		ID:         r.ID,
		TemplateID: r.ProductTmplID,
		Code:       r.DefaultCode,
		Weight:     r.Weight,
		ConfigID:   r.ConfigID,
	}
	if r.RemoteProductID != nil {
		v.RemoteProductID = *r.RemoteProductID
	}
	if r.RemoteVariantID != nil {
		v.RemoteVariantID = *r.RemoteVariantID
	}
	v.SkipPrice = r.SkipPrice != nil && *r.SkipPrice
	v.SkipQty = r.SkipQty != nil && *r.SkipQty
	v.SkipWeight = r.SkipWeight != nil && *r.SkipWeight
	return v
}

const variantSelect = `p.id, p.product_tmpl_id, p.default_code, p.weight,
	t.config_id, t.remote_product_id,
	l.remote_variant_id, l.skip_price, l.skip_qty, l.skip_weight`

func (s *Store) variantQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("product_product AS p").
		Select(variantSelect).
		Joins("LEFT JOIN insales_template_link AS t ON t.template_id = p.product_tmpl_id").
		Joins("LEFT JOIN insales_variant_link AS l ON l.product_id = p.id")
}

// VariantsByCode returns active variants with the given default code
func (s *Store) VariantsByCode(ctx context.Context, code string) ([]reconcile.Variant, error) {
	var rows []variantRow
	err := s.variantQuery(ctx).
		Where("p.default_code = ? AND p.active = ?", code, true).
		Order("p.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.Variant, len(rows))
	for i, r := range rows {
		out[i] = r.variant()
	}
	return out, nil
}

// Variant returns one variant by Odoo id
func (s *Store) Variant(ctx context.Context, id int64) (*reconcile.Variant, error) {
	var rows []variantRow
	if err := s.variantQuery(ctx).Where("p.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, reconcile.ErrLocalNotFound
	}
	v := rows[0].variant()
	return &v, nil
}

// TemplateLink returns the InSales link of a product template
func (s *Store) TemplateLink(ctx context.Context, templateID int64) (*models.InSalesTemplateLink, error) {
	var link models.InSalesTemplateLink
	if err := s.db.WithContext(ctx).First(&link, "template_id = ?", templateID).Error; err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// LinkTemplate rewrites the InSales link of a product template
func (s *Store) LinkTemplate(ctx context.Context, link models.InSalesTemplateLink) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "template_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"config_id", "remote_product_id", "permalink", "updated_at"}),
	}).Create(&link).Error
}

// MarkSynced stores the remote variant id and the time of the last check
func (s *Store) MarkSynced(ctx context.Context, productID, remoteVariantID int64, at time.Time) error {
	link := models.InSalesVariantLink{ProductID: productID, RemoteVariantID: remoteVariantID, SyncedAt: &at}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"remote_variant_id", "synced_at"}),
	}).Create(&link).Error
}

// TemplateVariantIDs lists the Odoo variant ids of a template
func (s *Store) TemplateVariantIDs(ctx context.Context, templateID int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&models.ProductProduct{}).
		Where("product_tmpl_id = ?", templateID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// TemplateView projects the InSales state of a template for operators
func (s *Store) TemplateView(ctx context.Context, templateID int64) (*models.TemplateView, error) {
	ids, err := s.TemplateVariantIDs(ctx, templateID)
	if err != nil {
		return nil, err
	}

	link, err := s.TemplateLink(ctx, templateID)
	if errors.Is(err, reconcile.ErrLocalNotFound) {
		if len(ids) == 0 {
			return nil, reconcile.ErrLocalNotFound
		}
		link = &models.InSalesTemplateLink{TemplateID: templateID}
	} else if err != nil {
		return nil, err
	}

	var stored []models.InSalesVariantLink
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&stored).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[int64]models.InSalesVariantLink, len(stored))
	for _, l := range stored {
		byID[l.ProductID] = l
	}
	variants := make([]models.InSalesVariantLink, len(ids))
	for i, id := range ids {
		l, ok := byID[id]
		if !ok {
			l = models.InSalesVariantLink{ProductID: id}
		}
		variants[i] = l
	}

	host := ""
	if link.ConfigID != nil {
		var cfg models.InSalesConfig
		if err := s.db.WithContext(ctx).Select("id", "host").First(&cfg, *link.ConfigID).Error; err == nil {
			host = cfg.Host
		}
	}

	view := models.ProjectTemplate(*link, variants, host)
	return &view, nil
}

// SetVariantFlags stores the skip flags of one variant
func (s *Store) SetVariantFlags(ctx context.Context, productID int64, flags models.VariantFlags) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ProductProduct{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return reconcile.ErrLocalNotFound
	}

	link := models.InSalesVariantLink{
		ProductID:  productID,
		SkipPrice:  flags.SkipPrice,
		SkipQty:    flags.SkipQty,
		SkipWeight: flags.SkipWeight,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"skip_price", "skip_qty", "skip_weight"}),
	}).Create(&link).Error
}

// SetTemplateFlags applies the flags to the only variant of a template.
// Templates with several variants are left untouched; applied reports which case happened.
func (s *Store) SetTemplateFlags(ctx context.Context, templateID int64, flags models.VariantFlags) (applied bool, err error) {
	ids, err := s.TemplateVariantIDs(ctx, templateID)
	if err != nil {
		return false, err
	}
	switch len(ids) {
	case 0:
		return false, reconcile.ErrLocalNotFound
	case 1:
		return true, s.SetVariantFlags(ctx, ids[0], flags)
	default:
		return false, nil
	}
}
