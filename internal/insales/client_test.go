package insales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestBaseURL(t *testing.T) {
	if got := BaseURL("myshop"); got != "https://myshop.myinsales.ru" {
		t.Errorf("Unexpected base url: %s", got)
	}
	if got := BaseURL("http://127.0.0.1:8080/"); got != "http://127.0.0.1:8080" {
		t.Errorf("Full urls should be kept, got %s", got)
	}
}

func TestGetProductVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/admin/products/10/variants/20.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"id":20,"product_id":10,"sku":"A-1","weight":"3.000","price":100,"old_price":null,
			"variant_field_values":[{"id":1,"variant_field_id":42,"value":"5"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", Options{})
	v, err := c.GetProductVariant(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("Failed to fetch variant: %v", err)
	}

	if v.ID() != 20 || v.ProductID() != 10 {
		t.Errorf("Unexpected ids: %d/%d", v.ProductID(), v.ID())
	}
	if sku, ok := v.SKU(); !ok || sku != "A-1" {
		t.Errorf("Unexpected sku: %q %v", sku, ok)
	}
	w, err := v.Weight()
	if err != nil || !w.Valid || w.Decimal.String() != "3" {
		t.Errorf("Unexpected weight: %v %v", w, err)
	}
	p, _ := v.Price()
	if !p.Valid || p.Decimal.IntPart() != 100 {
		t.Errorf("Unexpected price: %v", p)
	}
	old, _ := v.OldPrice()
	if old.Valid {
		t.Error("Null old_price should be invalid")
	}
	if !v.Has("old_price") {
		t.Error("Null keys should still be present")
	}
	values := v.FieldValues()
	if len(values) != 1 || values[0].VariantFieldID != 42 || values[0].Value.Int() != 5 {
		t.Errorf("Unexpected field values: %+v", values)
	}
}

func TestGetProductVariant_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", Options{})
	_, err := c.GetProductVariant(context.Background(), 1, 2)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if !apiErr.IsNotFound() {
		t.Errorf("Expected 404, got %d", apiErr.StatusCode)
	}
}

func TestUpdateProductVariant(t *testing.T) {
	var body map[string]map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", Options{})
	err := c.UpdateProductVariant(context.Background(), 1, 2, map[string]interface{}{
		"weight":    "2.500",
		"old_price": nil,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	variant, ok := body["variant"]
	if !ok {
		t.Fatal("Payload should be wrapped in a variant key")
	}
	if variant["weight"] != "2.500" {
		t.Errorf("Unexpected weight: %v", variant["weight"])
	}
	if v, ok := variant["old_price"]; !ok || v != nil {
		t.Errorf("old_price should be an explicit null, got %v", v)
	}
}

func TestProducts_Pagination(t *testing.T) {
	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category_id") != "7" {
			t.Errorf("Unexpected category: %s", r.URL.Query().Get("category_id"))
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, page)
		switch page {
		case 1:
			fmt.Fprint(w, `[{"id":1,"variants":[]},{"id":2,"variants":[]}]`)
		case 2:
			fmt.Fprint(w, `[{"id":3,"variants":[]}]`)
		default:
			t.Errorf("Unexpected page %d", page)
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", Options{PerPage: 2})

	var ids []int64
	for product, err := range c.Products(context.Background(), 7) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		ids = append(ids, product.ID)
	}

	if len(ids) != 3 || ids[2] != 3 {
		t.Errorf("Unexpected products: %v", ids)
	}
	if len(pages) != 2 {
		t.Errorf("Expected 2 page requests, got %v", pages)
	}
}

func TestProducts_StopEarly(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `[{"id":1},{"id":2}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", Options{PerPage: 2})
	for range c.Products(context.Background(), 1) {
		break
	}
	if requests != 1 {
		t.Errorf("Breaking out of the loop should stop paging, got %d requests", requests)
	}
}

func TestGetVariantField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":41,"title":"Color","handle":"color"},{"id":42,"title":"Warehouse stock","handle":"stock_wh"}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", Options{})

	field, err := c.GetVariantField(context.Background(), "stock_wh")
	if err != nil || field.ID != 42 {
		t.Errorf("Lookup by handle failed: %+v %v", field, err)
	}
	field, err = c.GetVariantField(context.Background(), "Color")
	if err != nil || field.ID != 41 {
		t.Errorf("Lookup by title failed: %+v %v", field, err)
	}

	_, err = c.GetVariantField(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.IsNotFound() {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestScalar(t *testing.T) {
	var values []Scalar
	if err := json.Unmarshal([]byte(`["12.7", 3, null, true, "abc"]`), &values); err != nil {
		t.Fatalf("Failed to decode scalars: %v", err)
	}
	if values[0].Int() != 12 {
		t.Errorf("Expected truncation to 12, got %d", values[0].Int())
	}
	if values[1].Int() != 3 {
		t.Errorf("Expected 3, got %d", values[1].Int())
	}
	if values[2] != "" {
		t.Errorf("null should decode to empty, got %q", values[2])
	}
	if values[4].Int() != 0 {
		t.Error("Unparsable values should be 0")
	}
	if _, err := values[4].Decimal(); err == nil {
		t.Error("Expected decimal parse error")
	}
}
