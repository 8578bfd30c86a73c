package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/xelth-com/insalessync/internal/models"
	"github.com/xelth-com/insalessync/internal/reconcile"
)

// ModifierResponse is one applied or pending change
type ModifierResponse struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
	Diff  string      `json:"diff"`
}

// VariantSyncResponse is the outcome of a variant sync
type VariantSyncResponse struct {
	Outcome   string             `json:"outcome"`
	Modifiers []ModifierResponse `json:"modifiers"`
}

// ProductSyncResponse summarizes a product or configuration sync
type ProductSyncResponse struct {
	RunID      string   `json:"run_id,omitempty"`
	Categories int      `json:"categories,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	Products   int      `json:"products"`
	Variants   int      `json:"variants"`
	Updated    int      `json:"updated"`
	Unchanged  int      `json:"unchanged"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}

func variantResponse(res reconcile.VariantResult) VariantSyncResponse {
	out := VariantSyncResponse{Outcome: res.Outcome, Modifiers: []ModifierResponse{}}
	for _, m := range res.Modifiers {
		field := m.Key
		if m.Append {
			field = m.Diff.Name
		}
		out.Modifiers = append(out.Modifiers, ModifierResponse{Field: field, Value: m.Value, Diff: m.Diff.String()})
	}
	return out
}

func productResponse(res reconcile.ProductResult) ProductSyncResponse {
	out := ProductSyncResponse{
		Products:  res.Products,
		Variants:  res.Variants,
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
		Skipped:   res.Skipped,
		Failed:    res.Failed,
		Errors:    []string{},
	}
	for _, err := range res.Errors {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

func (r *Router) syncVariant(w http.ResponseWriter, req *http.Request) {
	id, err := pathInt64(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := r.engine.SyncVariant(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, variantResponse(res))
}

func (r *Router) syncProduct(w http.ResponseWriter, req *http.Request) {
	id, err := pathInt64(req, "templateId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := r.engine.SyncProduct(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse(res))
}

// syncConfig runs a full configuration sync in the foreground
func (r *Router) syncConfig(w http.ResponseWriter, req *http.Request) {
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
	res, err := r.engine.SyncConfiguration(req.Context(), cfg)
	if err != nil {
		r.fail(w, req, err)
		return
	}

	out := productResponse(res.ProductResult)
	out.RunID = res.RunID
	out.Categories = res.Categories
	out.Duration = res.Duration.String()
	respondJSON(w, http.StatusOK, out)
}

// runAll is the manual counterpart of the scheduled run
func (r *Router) runAll(w http.ResponseWriter, req *http.Request) {
	if err := r.engine.RunAll(req.Context()); err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	id, err := pathInt64(req, "templateId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := r.store.TemplateView(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// setProductFlags edits skip flags through the template, only for single variant templates
func (r *Router) setProductFlags(w http.ResponseWriter, req *http.Request) {
	id, err := pathInt64(req, "templateId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var flags models.VariantFlags
	if err := json.NewDecoder(req.Body).Decode(&flags); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	applied, err := r.store.SetTemplateFlags(req.Context(), id, flags)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

func (r *Router) setVariantFlags(w http.ResponseWriter, req *http.Request) {
	id, err := pathInt64(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var flags models.VariantFlags
	if err := json.NewDecoder(req.Body).Decode(&flags); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := r.store.SetVariantFlags(req.Context(), id, flags); err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, flags)
}

// listHistory returns recent runs, optionally filtered by ?config_id
func (r *Router) listHistory(w http.ResponseWriter, req *http.Request) {
	var configID *uint
	if raw := req.URL.Query().Get("config_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid config_id")
			return
		}
		id := uint(v)
		configID = &id
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	records, err := r.store.History(req.Context(), configID, limit)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}
