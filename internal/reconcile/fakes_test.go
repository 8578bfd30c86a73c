package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
)

type markCall struct {
	ProductID       int64
	RemoteVariantID int64
	At              time.Time
}

type fakeCatalog struct {
	variants []Variant
	links    map[int64]models.InSalesTemplateLink
	marked   []markCall
}

func (c *fakeCatalog) VariantsByCode(ctx context.Context, code string) ([]Variant, error) {
	var out []Variant
	for _, v := range c.variants {
		if v.Code == code {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Variant(ctx context.Context, id int64) (*Variant, error) {
	for _, v := range c.variants {
		if v.ID == id {
			v := v
			return &v, nil
		}
	}
	return nil, ErrLocalNotFound
}

func (c *fakeCatalog) TemplateLink(ctx context.Context, templateID int64) (*models.InSalesTemplateLink, error) {
	link, ok := c.links[templateID]
	if !ok {
		return nil, ErrLocalNotFound
	}
	return &link, nil
}

func (c *fakeCatalog) LinkTemplate(ctx context.Context, link models.InSalesTemplateLink) error {
	if c.links == nil {
		c.links = make(map[int64]models.InSalesTemplateLink)
	}
	c.links[link.TemplateID] = link
	return nil
}

func (c *fakeCatalog) MarkSynced(ctx context.Context, productID, remoteVariantID int64, at time.Time) error {
	c.marked = append(c.marked, markCall{productID, remoteVariantID, at})
	return nil
}

type fakePricing map[int64]map[int64]float64

func (p fakePricing) PriceFor(ctx context.Context, pricelistID, productID int64, qty float64) (float64, error) {
	prices, ok := p[pricelistID]
	if !ok {
		return 0, fmt.Errorf("unknown pricelist %d", pricelistID)
	}
	return prices[productID], nil
}

type fakePrecision map[string]int

func (p fakePrecision) Digits(ctx context.Context, name string) (int, error) {
	return p[name], nil
}

type stockKey struct{ product, location int64 }

type fakeStock map[stockKey]float64

func (s fakeStock) Available(ctx context.Context, productID, locationID int64) (float64, error) {
	return s[stockKey{productID, locationID}], nil
}

type updateCall struct {
	ProductID int64
	VariantID int64
	Payload   map[string]interface{}
}

type variantKey struct{ product, variant int64 }

// fakeAPI keeps variant payloads and applies plain updates to them
type fakeAPI struct {
	t          *testing.T
	calls      int
	products   map[int64]*insales.Product
	variants   map[variantKey]map[string]interface{}
	byCategory map[int64][]*insales.Product
	categories []insales.Category
	listErr    map[int64]error
	updates    []updateCall
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{
		t:          t,
		products:   make(map[int64]*insales.Product),
		variants:   make(map[variantKey]map[string]interface{}),
		byCategory: make(map[int64][]*insales.Product),
		listErr:    make(map[int64]error),
	}
}

func (a *fakeAPI) GetProduct(ctx context.Context, id int64) (*insales.Product, error) {
	a.calls++
	p, ok := a.products[id]
	if !ok {
		return nil, &insales.APIError{Method: "GET", Path: "/admin/products", StatusCode: 404}
	}
	return p, nil
}

func (a *fakeAPI) GetProductVariant(ctx context.Context, productID, variantID int64) (*insales.Variant, error) {
	a.calls++
	payload, ok := a.variants[variantKey{productID, variantID}]
	if !ok {
		return nil, &insales.APIError{Method: "GET", Path: "/admin/products/variants", StatusCode: 404}
	}
	v := mustVariant(a.t, payload)
	return &v, nil
}

func (a *fakeAPI) UpdateProductVariant(ctx context.Context, productID, variantID int64, payload map[string]interface{}) error {
	a.calls++
	a.updates = append(a.updates, updateCall{productID, variantID, payload})
	if stored, ok := a.variants[variantKey{productID, variantID}]; ok {
		for k, v := range payload {
			if k != AdditionalFieldsKey {
				stored[k] = v
			}
		}
	}
	return nil
}

func (a *fakeAPI) Products(ctx context.Context, categoryID int64) iter.Seq2[*insales.Product, error] {
	return func(yield func(*insales.Product, error) bool) {
		a.calls++
		if err := a.listErr[categoryID]; err != nil {
			yield(nil, err)
			return
		}
		for _, p := range a.byCategory[categoryID] {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (a *fakeAPI) GetCategories(ctx context.Context) ([]insales.Category, error) {
	a.calls++
	return a.categories, nil
}

func (a *fakeAPI) GetVariantField(ctx context.Context, name string) (*insales.VariantField, error) {
	a.calls++
	if name == "custom_stock" {
		return &insales.VariantField{ID: 42, Handle: name}, nil
	}
	return nil, &insales.APIError{Method: "GET", Path: "/admin/variant_fields.json", StatusCode: 404}
}

type fakeConfigs struct {
	configs      []models.InSalesConfig
	syncCategory map[uint][]int64
}

func (c *fakeConfigs) Active(ctx context.Context) ([]models.InSalesConfig, error) {
	var out []models.InSalesConfig
	for _, cfg := range c.configs {
		if cfg.Active {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (c *fakeConfigs) Get(ctx context.Context, id uint) (*models.InSalesConfig, error) {
	for _, cfg := range c.configs {
		if cfg.ID == id {
			cfg := cfg
			return &cfg, nil
		}
	}
	return nil, ErrLocalNotFound
}

func (c *fakeConfigs) SyncCategoryIDs(ctx context.Context, configID uint) ([]int64, error) {
	return c.syncCategory[configID], nil
}

type fakeRefresher struct {
	refreshed map[uint]int
}

func (r *fakeRefresher) Refresh(ctx context.Context, configID uint, remote []insales.Category) error {
	if r.refreshed == nil {
		r.refreshed = make(map[uint]int)
	}
	r.refreshed[configID] = len(remote)
	return nil
}

type fakeHistory struct {
	records []*models.SyncHistory
}

func (h *fakeHistory) Record(ctx context.Context, rec *models.SyncHistory) error {
	h.records = append(h.records, rec)
	return nil
}

type fakeLocker struct {
	held     map[string]bool
	released int
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() {
		delete(l.held, key)
		l.released++
	}, true, nil
}

type fakeNotifier struct {
	events []Event
}

func (n *fakeNotifier) Notify(e Event) { n.events = append(n.events, e) }

func mustVariant(t *testing.T, payload map[string]interface{}) insales.Variant {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to encode variant: %v", err)
	}
	var v insales.Variant
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("Failed to build variant: %v", err)
	}
	return v
}

func int64Ptr(v int64) *int64 { return &v }
func uintPtr(v uint) *uint    { return &v }

// testEnv wires an engine to fakes
type testEnv struct {
	engine   *Engine
	catalog  *fakeCatalog
	api      *fakeAPI
	configs  *fakeConfigs
	history  *fakeHistory
	locker   *fakeLocker
	notifier *fakeNotifier
	refresh  *fakeRefresher
	pricing  fakePricing
	stock    fakeStock
	clients  int
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		catalog:  &fakeCatalog{},
		api:      newFakeAPI(t),
		configs:  &fakeConfigs{syncCategory: make(map[uint][]int64)},
		history:  &fakeHistory{},
		locker:   &fakeLocker{},
		notifier: &fakeNotifier{},
		refresh:  &fakeRefresher{},
		pricing:  fakePricing{},
		stock:    fakeStock{},
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.engine = NewEngine(Deps{
		Catalog:    env.catalog,
		Pricing:    env.pricing,
		Precision:  fakePrecision{PrecisionWeight: 3, PrecisionPrice: 2},
		Stock:      env.stock,
		Configs:    env.configs,
		Categories: env.refresh,
		Clients: func(cfg *models.InSalesConfig) (RemoteAPI, error) {
			env.clients++
			if cfg.APIKey == "broken" {
				return nil, errors.New("cannot build client")
			}
			return env.api, nil
		},
		History:  env.history,
		Locker:   env.locker,
		Notifier: env.notifier,
	}, nil)
	env.engine.now = func() time.Time {
		env.now = env.now.Add(time.Second)
		return env.now
	}
	return env
}
