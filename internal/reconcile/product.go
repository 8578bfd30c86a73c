package reconcile

import (
	"context"
	"errors"
	"strconv"

	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
	"go.uber.org/zap"
)

// ProductResult counts variant outcomes of processed products
type ProductResult struct {
	Products  int
	Variants  int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
	Errors    []error
}

func (r *ProductResult) add(o ProductResult) {
	r.Products += o.Products
	r.Variants += o.Variants
	r.Updated += o.Updated
	r.Unchanged += o.Unchanged
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Errors = append(r.Errors, o.Errors...)
}

func (r *ProductResult) count(outcome string) {
	variantsProcessed.WithLabelValues(outcome).Inc()
	switch outcome {
	case OutcomeUpdated, OutcomeDryRun:
		r.Updated++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// matchVariant finds the single local variant for a remote one
func (e *Engine) matchVariant(ctx context.Context, remote insales.Variant) (*Variant, error) {
	sku, ok := remote.SKU()
	if !ok {
		return nil, &VariantSkuMissingError{ProductID: remote.ProductID(), VariantID: remote.ID()}
	}

	found, err := e.catalog.VariantsByCode(ctx, sku)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, &ProductNotFoundError{Ref: sku}
	case 1:
		return &found[0], nil
	default:
		return nil, &MultipleProductError{SKU: sku}
	}
}

// Process reconciles every variant of a remote product.
// A failing variant is logged and counted; the remaining variants are still processed.
func (e *Engine) Process(ctx context.Context, cfg *models.InSalesConfig, api RemoteAPI, product *insales.Product) ProductResult {
	result := ProductResult{Products: 1}
	e.logger.Debug("Process product", zap.String("permalink", product.Permalink), zap.Int64("remote_product_id", product.ID))

	for _, remote := range product.Variants {
		result.Variants++
		outcome, err := e.processVariant(ctx, cfg, api, product, remote)
		result.count(outcome)
		if err == nil {
			continue
		}

		result.Errors = append(result.Errors, err)
		fields := []zap.Field{
			zap.Uint("config", cfg.ID),
			zap.Int64("remote_product_id", product.ID),
			zap.Int64("remote_variant_id", remote.ID()),
		}
		if IsRecordLevel(err) {
			e.logger.Error(err.Error(), fields...)
		} else {
			e.logger.Error("Failed to process InSales variant", append(fields, zap.Error(err))...)
		}
	}
	return result
}

func (e *Engine) processVariant(ctx context.Context, cfg *models.InSalesConfig, api RemoteAPI, product *insales.Product, remote insales.Variant) (string, error) {
	local, err := e.matchVariant(ctx, remote)
	if err != nil {
		if IsRecordLevel(err) {
			return OutcomeSkipped, err
		}
		return OutcomeFailed, err
	}

	configID := cfg.ID
	link := models.InSalesTemplateLink{
		TemplateID:      local.TemplateID,
		ConfigID:        &configID,
		RemoteProductID: product.ID,
		Permalink:       product.Permalink,
	}
	if err := e.catalog.LinkTemplate(ctx, link); err != nil {
		return OutcomeFailed, err
	}
	local.ConfigID = &configID
	local.RemoteProductID = product.ID

	res, err := e.Reconcile(ctx, cfg, api, *local, remote)
	if err != nil {
		var unknown *UnknownRemoteFieldError
		if errors.As(err, &unknown) {
			return OutcomeSkipped, err
		}
		return OutcomeFailed, err
	}
	return res.Outcome, nil
}

// SyncProduct reconciles one linked product template with its remote product.
// Unlinked templates and inactive configurations are ignored.
func (e *Engine) SyncProduct(ctx context.Context, templateID int64) (ProductResult, error) {
	link, err := e.catalog.TemplateLink(ctx, templateID)
	if errors.Is(err, ErrLocalNotFound) {
		return ProductResult{}, nil
	}
	if err != nil {
		return ProductResult{}, err
	}
	if link.RemoteProductID == 0 {
		return ProductResult{}, nil
	}

	cfg, err := e.activeConfig(ctx, link.ConfigID)
	if err != nil || cfg == nil {
		return ProductResult{}, err
	}

	api, err := e.clients(cfg)
	if err != nil {
		return ProductResult{}, err
	}

	product, err := api.GetProduct(ctx, link.RemoteProductID)
	if err != nil {
		return ProductResult{}, &ProductNotFoundError{Ref: strconv.FormatInt(link.RemoteProductID, 10), Err: err}
	}

	return e.Process(ctx, cfg, api, product), nil
}
