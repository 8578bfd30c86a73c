package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xelth-com/insalessync/internal/buildinfo"
	"github.com/xelth-com/insalessync/internal/middleware"
	"github.com/xelth-com/insalessync/internal/models"
	"github.com/xelth-com/insalessync/internal/reconcile"
	"github.com/xelth-com/insalessync/internal/websocket"
)

// Store is the persistence used by the admin API
type Store interface {
	List(ctx context.Context) ([]models.InSalesConfig, error)
	Get(ctx context.Context, id uint) (*models.InSalesConfig, error)
	CreateConfig(ctx context.Context, cfg *models.InSalesConfig) error
	UpdateConfig(ctx context.Context, cfg *models.InSalesConfig) error
	ToggleEnvironment(ctx context.Context, id uint) (*models.InSalesConfig, error)
	Categories(ctx context.Context, configID uint) ([]models.InSalesCategory, error)
	SetCategorySync(ctx context.Context, id uint, sync bool) (*models.InSalesCategory, error)
	AddQuantityField(ctx context.Context, field *models.InSalesQuantityField) error
	DeleteQuantityField(ctx context.Context, id uint) error
	TemplateView(ctx context.Context, templateID int64) (*models.TemplateView, error)
	SetTemplateFlags(ctx context.Context, templateID int64, flags models.VariantFlags) (bool, error)
	SetVariantFlags(ctx context.Context, productID int64, flags models.VariantFlags) error
	History(ctx context.Context, configID *uint, limit int) ([]models.SyncHistory, error)
}

// Syncer runs the synchronization actions
type Syncer interface {
	SyncVariant(ctx context.Context, productID int64) (reconcile.VariantResult, error)
	SyncProduct(ctx context.Context, templateID int64) (reconcile.ProductResult, error)
	SyncConfiguration(ctx context.Context, cfg *models.InSalesConfig) (reconcile.RunResult, error)
	RunAll(ctx context.Context) error
	RefreshCategories(ctx context.Context, cfg *models.InSalesConfig, api reconcile.RemoteAPI) error
}

// Options wires the router. Hub is optional.
type Options struct {
	Store     Store
	Engine    Syncer
	Clients   reconcile.ClientFactory
	Hub       *websocket.Hub
	JWTSecret string
	EncKey    string
	Logger    *zap.Logger
}

// Router wraps the mux router and its collaborators
type Router struct {
	*mux.Router
	store   Store
	engine  Syncer
	clients reconcile.ClientFactory
	encKey  string
	log     *zap.Logger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Router{
		Router:  mux.NewRouter(),
		store:   opts.Store,
		engine:  opts.Engine,
		clients: opts.Clients,
		encKey:  opts.EncKey,
		log:     opts.Logger,
	}
	r.Use(middleware.RequestID, middleware.Recoverer(opts.Logger))

	// Public
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if opts.Hub != nil {
		hub := opts.Hub
		r.HandleFunc("/ws/sync", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(hub, w, req)
		})
	}

	// Admin API (protected)
	api := r.PathPrefix("/api/insales").Subrouter()
	api.Use(middleware.Logger(opts.Logger), middleware.AuthMiddleware(opts.JWTSecret))

	api.HandleFunc("/configs", r.listConfigs).Methods("GET")
	api.HandleFunc("/configs", r.createConfig).Methods("POST")
	api.HandleFunc("/configs/{id}", r.getConfig).Methods("GET")
	api.HandleFunc("/configs/{id}", r.updateConfig).Methods("PUT")
	api.HandleFunc("/configs/{id}/toggle-environment", r.toggleEnvironment).Methods("POST")
	api.HandleFunc("/configs/{id}/categories", r.listCategories).Methods("GET")
	api.HandleFunc("/configs/{id}/categories/refresh", r.refreshCategories).Methods("POST")
	api.HandleFunc("/categories/{id}/sync", r.setCategorySync).Methods("PUT")
	api.HandleFunc("/configs/{id}/quantity-fields", r.addQuantityField).Methods("POST")
	api.HandleFunc("/quantity-fields/{id}", r.deleteQuantityField).Methods("DELETE")

	api.HandleFunc("/configs/{id}/sync", r.syncConfig).Methods("POST")
	api.HandleFunc("/run", r.runAll).Methods("POST")
	api.HandleFunc("/products/{templateId}", r.getProduct).Methods("GET")
	api.HandleFunc("/products/{templateId}/flags", r.setProductFlags).Methods("PUT")
	api.HandleFunc("/products/{templateId}/sync", r.syncProduct).Methods("POST")
	api.HandleFunc("/variants/{id}/flags", r.setVariantFlags).Methods("PUT")
	api.HandleFunc("/variants/{id}/sync", r.syncVariant).Methods("POST")
	api.HandleFunc("/history", r.listHistory).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Current(time.Now())})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps synchronization errors to HTTP status codes
func statusFor(err error) int {
	var (
		productErr *reconcile.ProductNotFoundError
		variantErr *reconcile.VariantNotFoundError
		fieldErr   *reconcile.AdditionalFieldIDError
	)
	switch {
	case errors.Is(err, reconcile.ErrLocalNotFound),
		errors.As(err, &productErr),
		errors.As(err, &variantErr):
		return http.StatusNotFound
	case errors.As(err, &fieldErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reconcile.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server side failures and writes the mapped error
func (r *Router) fail(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		r.log.Error("❌ Request failed", zap.String("path", req.URL.Path), zap.Error(err))
	}
	respondError(w, status, err.Error())
}
