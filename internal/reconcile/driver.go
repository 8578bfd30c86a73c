package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xelth-com/insalessync/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// HistoryProvider is the provider name of configuration runs in the sync history
const HistoryProvider = "insales"

// RunResult is the outcome of one configuration run
type RunResult struct {
	RunID    string
	ConfigID uint
	ProductResult
	Categories int
	Duration   time.Duration
}

// LockKey is the run lock of a configuration
func LockKey(configID uint) string {
	return fmt.Sprintf("insales:config:%d", configID)
}

// RefreshCategories reloads the category mirror of a configuration from the shop
func (e *Engine) RefreshCategories(ctx context.Context, cfg *models.InSalesConfig, api RemoteAPI) error {
	remote, err := api.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	if err := e.categories.Refresh(ctx, cfg.ID, remote); err != nil {
		return fmt.Errorf("refresh categories: %w", err)
	}
	e.logger.Info("InSales categories refreshed", zap.Uint("config", cfg.ID), zap.Int("count", len(remote)))
	return nil
}

// SyncConfiguration refreshes categories and reconciles every product of the synced categories.
// Inactive configurations are ignored. Returns ErrRunInProgress when another run holds the configuration.
func (e *Engine) SyncConfiguration(ctx context.Context, cfg *models.InSalesConfig) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString(), ConfigID: cfg.ID}
	if !cfg.Active {
		return result, nil
	}

	if e.locker != nil {
		release, ok, err := e.locker.TryLock(ctx, LockKey(cfg.ID), e.LockTTL)
		if err != nil {
			return result, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return result, ErrRunInProgress
		}
		defer release()
	}

	log := e.logger.With(zap.String("run_id", result.RunID), zap.Uint("config", cfg.ID), zap.String("host", cfg.Host))
	log.Info("🔄 InSales: Starting configuration sync")

	started := e.now()
	err := e.runConfiguration(ctx, cfg, &result, log)
	result.Duration = e.now().Sub(started)

	status := runStatus(result, err)
	configRunDuration.WithLabelValues(status).Observe(result.Duration.Seconds())
	e.recordHistory(ctx, cfg, result, started, status, err, log)

	if err != nil {
		log.Error("❌ InSales: Configuration sync failed", zap.Error(err))
		return result, err
	}
	log.Info("✅ InSales: Configuration sync completed",
		zap.Int("products", result.Products),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (e *Engine) runConfiguration(ctx context.Context, cfg *models.InSalesConfig, result *RunResult, log *zap.Logger) error {
	api, err := e.clients(cfg)
	if err != nil {
		return err
	}

	// new child categories inherit the sync flag here
	if err := e.RefreshCategories(ctx, cfg, api); err != nil {
		return err
	}

	categoryIDs, err := e.configs.SyncCategoryIDs(ctx, cfg.ID)
	if err != nil {
		return fmt.Errorf("load synced categories: %w", err)
	}
	result.Categories = len(categoryIDs)

	// one category per listing, the combined filter is unreliable on the shop side
	var listErrs []error
	for _, categoryID := range categoryIDs {
		for product, err := range api.Products(ctx, categoryID) {
			if err != nil {
				log.Error("Failed to list InSales products", zap.Int64("category", categoryID), zap.Error(err))
				listErrs = append(listErrs, fmt.Errorf("category %d: %w", categoryID, err))
				break
			}
			result.add(e.Process(ctx, cfg, api, product))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return errors.Join(listErrs...)
}

func runStatus(result RunResult, err error) string {
	switch {
	case err != nil:
		return models.SyncStatusError
	case result.Failed > 0 || result.Skipped > 0:
		return models.SyncStatusPartial
	default:
		return models.SyncStatusSuccess
	}
}

func (e *Engine) recordHistory(ctx context.Context, cfg *models.InSalesConfig, result RunResult, started time.Time, status string, runErr error, log *zap.Logger) {
	if e.history == nil {
		return
	}

	configID := cfg.ID
	completed := started.Add(result.Duration)
	h := &models.SyncHistory{
		RunID:       result.RunID,
		Provider:    HistoryProvider,
		ConfigID:    &configID,
		Status:      status,
		StartedAt:   started,
		CompletedAt: &completed,
		Duration:    int(result.Duration.Milliseconds()),
		Products:    result.Products,
		Updated:     result.Updated,
		Unchanged:   result.Unchanged,
		Skipped:     result.Skipped,
		Errors:      result.Failed,
	}

	var details []string
	if runErr != nil {
		details = append(details, runErr.Error())
	}
	for _, err := range result.Errors {
		details = append(details, err.Error())
	}
	h.ErrorDetail = strings.Join(details, "\n")

	debug, _ := json.Marshal(map[string]interface{}{
		"host":             cfg.Host,
		"prod_environment": cfg.ProdEnvironment,
		"categories":       result.Categories,
		"variants":         result.Variants,
	})
	h.DebugInfo = datatypes.JSON(debug)

	if err := e.history.Record(ctx, h); err != nil {
		log.Warn("Failed to record sync history", zap.Error(err))
	}
}

// RunAll synchronizes every active configuration. A failing configuration does not stop
// the others; all failures are returned joined.
func (e *Engine) RunAll(ctx context.Context) error {
	configs, err := e.configs.Active(ctx)
	if err != nil {
		return fmt.Errorf("load active configurations: %w", err)
	}

	var errs []error
	for i := range configs {
		cfg := &configs[i]
		if _, err := e.SyncConfiguration(ctx, cfg); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				e.logger.Warn("⏳ InSales: Configuration sync already running, skipping", zap.Uint("config", cfg.ID))
				continue
			}
			errs = append(errs, fmt.Errorf("config %d (%s): %w", cfg.ID, cfg.Name, err))
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return errors.Join(errs...)
}
