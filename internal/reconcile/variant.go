package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
	"go.uber.org/zap"
)

// VariantResult describes one reconciled variant
type VariantResult struct {
	Modifiers []Modifier
	Outcome   string
}

// Modifiers computes all pending changes of a variant: weight, price, then quantity
func (e *Engine) Modifiers(ctx context.Context, cfg *models.InSalesConfig, local Variant, remote insales.Variant) ([]Modifier, error) {
	log := e.logger.With(zap.Uint("config", cfg.ID), zap.String("sku", local.Code))

	var mods []Modifier

	weight, err := e.weightModifiers(ctx, cfg, local, remote, log)
	if err != nil {
		return nil, err
	}
	mods = append(mods, weight...)

	price, err := e.priceModifiers(ctx, cfg, local, remote)
	if err != nil {
		return nil, err
	}
	mods = append(mods, price...)

	qty, err := e.quantityModifiers(ctx, cfg, local, remote, log)
	if err != nil {
		return nil, err
	}
	mods = append(mods, qty...)

	return mods, nil
}

func (e *Engine) weightModifiers(ctx context.Context, cfg *models.InSalesConfig, local Variant, remote insales.Variant, log *zap.Logger) ([]Modifier, error) {
	if !cfg.SyncWeight || local.SkipWeight {
		return nil, nil
	}
	remoteWeight, err := remote.Weight()
	if err != nil {
		return nil, fmt.Errorf("remote variant %d: %w", remote.ID(), err)
	}

	mod, zeroSkipped := WeightModifier(local.Weight, remoteWeight, e.digits(ctx, PrecisionWeight), cfg.SyncWeightSkipZero)
	if zeroSkipped {
		log.Warn("Skip zero weight sync of InSales variant")
	}
	if mod == nil {
		return nil, nil
	}
	return []Modifier{*mod}, nil
}

func (e *Engine) priceModifiers(ctx context.Context, cfg *models.InSalesConfig, local Variant, remote insales.Variant) ([]Modifier, error) {
	if cfg.PricelistID == nil || local.SkipPrice {
		return nil, nil
	}

	price, err := e.pricing.PriceFor(ctx, *cfg.PricelistID, local.ID, 1)
	if err != nil {
		return nil, fmt.Errorf("price of product %d: %w", local.ID, err)
	}

	var oldPrice *float64
	if cfg.OldPricelistID != nil {
		old, err := e.pricing.PriceFor(ctx, *cfg.OldPricelistID, local.ID, 1)
		if err != nil {
			return nil, fmt.Errorf("old price of product %d: %w", local.ID, err)
		}
		oldPrice = &old
	}

	remotePrice, err := remote.Price()
	if err != nil {
		return nil, fmt.Errorf("remote variant %d: %w", remote.ID(), err)
	}
	remoteOld, err := remote.OldPrice()
	if err != nil {
		return nil, fmt.Errorf("remote variant %d: %w", remote.ID(), err)
	}

	return PriceModifiers(price, oldPrice, e.digits(ctx, PrecisionPrice), remotePrice, remoteOld), nil
}

func (e *Engine) quantityModifiers(ctx context.Context, cfg *models.InSalesConfig, local Variant, remote insales.Variant, log *zap.Logger) ([]Modifier, error) {
	if local.SkipQty {
		return nil, nil
	}

	var mods []Modifier
	for _, field := range cfg.QuantityFields {
		available, err := e.stock.Available(ctx, local.ID, field.LocationID)
		if err != nil {
			return nil, fmt.Errorf("stock of product %d at location %d: %w", local.ID, field.LocationID, err)
		}

		mod, err := QuantityModifier(field, available, remote)
		var unknown *UnknownRemoteFieldError
		if errors.As(err, &unknown) {
			log.Error(unknown.Error(), zap.Int64("location", field.LocationID))
			continue
		}
		if err != nil {
			return nil, err
		}
		if mod != nil {
			mods = append(mods, *mod)
		}
	}
	return mods, nil
}

// Reconcile pushes local changes of one variant to InSales and records the check locally.
// In the test environment changes are only logged.
func (e *Engine) Reconcile(ctx context.Context, cfg *models.InSalesConfig, api RemoteAPI, local Variant, remote insales.Variant) (VariantResult, error) {
	productID := remote.ProductID()
	if productID == 0 {
		productID = local.RemoteProductID
	}
	variantID := remote.ID()

	mods, err := e.Modifiers(ctx, cfg, local, remote)
	if err != nil {
		return VariantResult{Outcome: OutcomeFailed}, err
	}

	result := VariantResult{Modifiers: mods, Outcome: OutcomeUnchanged}
	if len(mods) > 0 {
		for _, m := range mods {
			modifiersEmitted.WithLabelValues(m.Diff.Name).Inc()
		}

		e.logger.Info(fmt.Sprintf("Updating InSales variant %s: %s", local.Code, diffString(mods)),
			zap.Uint("config", cfg.ID),
			zap.Int64("remote_product_id", productID),
			zap.Int64("remote_variant_id", variantID),
			zap.Bool("dry_run", !cfg.ProdEnvironment))

		if cfg.ProdEnvironment {
			if err := api.UpdateProductVariant(ctx, productID, variantID, BuildPayload(mods)); err != nil {
				return VariantResult{Modifiers: mods, Outcome: OutcomeFailed}, fmt.Errorf("update variant %d: %w", variantID, err)
			}
			remoteUpdates.WithLabelValues("prod").Inc()
			result.Outcome = OutcomeUpdated
		} else {
			remoteUpdates.WithLabelValues("test").Inc()
			result.Outcome = OutcomeDryRun
		}

		e.notify(Event{
			Type:            "variant_updated",
			ConfigID:        cfg.ID,
			SKU:             local.Code,
			RemoteProductID: productID,
			RemoteVariantID: variantID,
			Changes:         diffs(mods),
			DryRun:          !cfg.ProdEnvironment,
			At:              e.now(),
		})
	}

	if err := e.catalog.MarkSynced(ctx, local.ID, variantID, e.now()); err != nil {
		return VariantResult{Modifiers: mods, Outcome: OutcomeFailed}, fmt.Errorf("write back variant %d: %w", local.ID, err)
	}

	return result, nil
}

// activeConfig returns nil when the configuration is missing or disabled
func (e *Engine) activeConfig(ctx context.Context, id *uint) (*models.InSalesConfig, error) {
	if id == nil {
		return nil, nil
	}
	cfg, err := e.configs.Get(ctx, *id)
	if errors.Is(err, ErrLocalNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !cfg.Active {
		return nil, nil
	}
	return cfg, nil
}

// SyncVariant reconciles one local variant with its linked remote variant.
// Unlinked variants and inactive configurations are ignored.
func (e *Engine) SyncVariant(ctx context.Context, productID int64) (VariantResult, error) {
	local, err := e.catalog.Variant(ctx, productID)
	if err != nil {
		return VariantResult{}, err
	}
	if local.RemoteProductID == 0 || local.RemoteVariantID == 0 {
		return VariantResult{Outcome: OutcomeSkipped}, nil
	}

	cfg, err := e.activeConfig(ctx, local.ConfigID)
	if err != nil || cfg == nil {
		return VariantResult{Outcome: OutcomeSkipped}, err
	}

	api, err := e.clients(cfg)
	if err != nil {
		return VariantResult{}, err
	}

	remote, err := api.GetProductVariant(ctx, local.RemoteProductID, local.RemoteVariantID)
	if err != nil {
		return VariantResult{}, &VariantNotFoundError{VariantID: local.RemoteVariantID, Err: err}
	}

	result, err := e.Reconcile(ctx, cfg, api, *local, *remote)
	variantsProcessed.WithLabelValues(result.Outcome).Inc()
	return result, err
}
