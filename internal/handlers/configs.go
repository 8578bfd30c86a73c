package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xelth-com/insalessync/internal/models"
	"github.com/xelth-com/insalessync/internal/reconcile"
	"github.com/xelth-com/insalessync/internal/utils"
)

// ConfigRequest is the editable part of a configuration.
// An empty api_password on update keeps the stored one.
type ConfigRequest struct {
	Name               string `json:"name"`
	Host               string `json:"host"`
	APIKey             string `json:"api_key"`
	APIPassword        string `json:"api_password"`
	Active             bool   `json:"active"`
	ProdEnvironment    bool   `json:"prod_environment"`
	PricelistID        *int64 `json:"pricelist_id"`
	OldPricelistID     *int64 `json:"old_pricelist_id"`
	SyncWeight         bool   `json:"sync_weight"`
	SyncWeightSkipZero *bool  `json:"sync_weight_skip_zero"`
}

// QuantityFieldRequest maps a stock location to an InSales variant field
type QuantityFieldRequest struct {
	LocationID   int64  `json:"location_id"`
	IsAdditional bool   `json:"is_additional"`
	RemoteField  string `json:"remote_field"`
}

// CategorySyncRequest toggles a category
type CategorySyncRequest struct {
	Sync bool `json:"sync"`
}

func (c ConfigRequest) apply(cfg *models.InSalesConfig) {
	cfg.Name = c.Name
	if cfg.Name == "" {
		cfg.Name = "New Configuration"
	}
	cfg.Host = strings.TrimSpace(c.Host)
	cfg.APIKey = strings.TrimSpace(c.APIKey)
	cfg.Active = c.Active
	cfg.ProdEnvironment = c.ProdEnvironment
	cfg.PricelistID = c.PricelistID
	cfg.OldPricelistID = c.OldPricelistID
	cfg.SyncWeight = c.SyncWeight
	cfg.SyncWeightSkipZero = true
	if c.SyncWeightSkipZero != nil {
		cfg.SyncWeightSkipZero = *c.SyncWeightSkipZero
	}
}

// listConfigs returns all configurations
func (r *Router) listConfigs(w http.ResponseWriter, req *http.Request) {
	configs, err := r.store.List(req.Context())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

func (r *Router) getConfig(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := r.store.Get(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// createConfig creates a configuration, sealing its API password
func (r *Router) createConfig(w http.ResponseWriter, req *http.Request) {
	var body ConfigRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(body.Host) == "" || strings.TrimSpace(body.APIKey) == "" || body.APIPassword == "" {
		respondError(w, http.StatusBadRequest, "host, api_key and api_password are required")
		return
	}

	var cfg models.InSalesConfig
	body.apply(&cfg)
	sealed, err := utils.SealSecret(body.APIPassword, r.encKey)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	cfg.APIPassword = sealed

	if err := r.store.CreateConfig(req.Context(), &cfg); err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, cfg)
}

func (r *Router) updateConfig(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body ConfigRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(body.Host) == "" || strings.TrimSpace(body.APIKey) == "" {
		respondError(w, http.StatusBadRequest, "host and api_key are required")
		return
	}

	cfg, err := r.store.Get(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	body.apply(cfg)
	if body.APIPassword != "" {
		if cfg.APIPassword, err = utils.SealSecret(body.APIPassword, r.encKey); err != nil {
			r.fail(w, req, err)
			return
		}
	}

	if err := r.store.UpdateConfig(req.Context(), cfg); err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// toggleEnvironment switches between test and production
func (r *Router) toggleEnvironment(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := r.store.ToggleEnvironment(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (r *Router) listCategories(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	categories, err := r.store.Categories(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// refreshCategories reloads the category tree from the shop without syncing products
func (r *Router) refreshCategories(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := r.store.Get(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	api, err := r.clients(cfg)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.engine.RefreshCategories(req.Context(), cfg, api); err != nil {
		r.fail(w, req, err)
		return
	}

	categories, err := r.store.Categories(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (r *Router) setCategorySync(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body CategorySyncRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	category, err := r.store.SetCategorySync(req.Context(), id, body.Sync)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// addQuantityField saves a quantity mapping.
// Additional fields get their InSales id resolved first; failure is a 422.
func (r *Router) addQuantityField(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body QuantityFieldRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if body.LocationID <= 0 || strings.TrimSpace(body.RemoteField) == "" {
		respondError(w, http.StatusBadRequest, "location_id and remote_field are required")
		return
	}

	cfg, err := r.store.Get(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}

	field := models.InSalesQuantityField{
		ConfigID:     cfg.ID,
		LocationID:   body.LocationID,
		IsAdditional: body.IsAdditional,
		RemoteField:  strings.TrimSpace(body.RemoteField),
	}
	if field.IsAdditional {
		api, err := r.clients(cfg)
		if err != nil {
			r.fail(w, req, err)
			return
		}
		if err := reconcile.ResolveQuantityField(req.Context(), api, &field); err != nil {
			r.fail(w, req, err)
			return
		}
	}

	if err := r.store.AddQuantityField(req.Context(), &field); err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, field)
}

func (r *Router) deleteQuantityField(w http.ResponseWriter, req *http.Request) {
	id, err := pathUint(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := r.store.DeleteQuantityField(req.Context(), id); err != nil {
		r.fail(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
