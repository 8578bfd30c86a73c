package odoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xelth-com/insalessync/internal/models"
)

const uidResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><int>2</int></value></param></params></methodResponse>`

func recordsResponse(members ...string) string {
	return `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
<value><struct>` + strings.Join(members, "") + `</struct></value>
</data></array></value></param></params></methodResponse>`
}

func member(name, value string) string {
	return fmt.Sprintf("<member><name>%s</name><value>%s</value></member>", name, value)
}

// fakeOdoo answers authenticate and hands every execute_kw body to onCall
func fakeOdoo(t *testing.T, onCall func(body string) string) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml")
		switch r.URL.Path {
		case "/xmlrpc/2/common":
			fmt.Fprint(w, uidResponse)
		case "/xmlrpc/2/object":
			atomic.AddInt32(&calls, 1)
			fmt.Fprint(w, onCall(string(body)))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	return srv, &calls
}

func TestPrecision_Cached(t *testing.T) {
	srv, calls := fakeOdoo(t, func(body string) string {
		if !strings.Contains(body, "decimal.precision") {
			t.Errorf("Unexpected call: %s", body)
		}
		return recordsResponse(member("name", "<string>Stock Weight</string>"), member("digits", "<int>3</int>"))
	})
	defer srv.Close()

	p := NewPrecision(NewClient(srv.URL, "db", "user", "pass"), time.Minute)

	for i := 0; i < 3; i++ {
		digits, err := p.Digits(context.Background(), "Stock Weight")
		if err != nil {
			t.Fatalf("Digits failed: %v", err)
		}
		if digits != 3 {
			t.Errorf("Expected 3 digits, got %d", digits)
		}
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("Expected one Odoo call, got %d", *calls)
	}
}

func TestPricing_PriceFor(t *testing.T) {
	srv, _ := fakeOdoo(t, func(body string) string {
		if !strings.Contains(body, "<name>pricelist</name>") {
			t.Errorf("Pricelist should be passed in the context: %s", body)
		}
		return recordsResponse(member("id", "<int>5</int>"), member("price", "<double>149.9</double>"))
	})
	defer srv.Close()

	price, err := NewPricing(NewClient(srv.URL, "db", "user", "pass")).PriceFor(context.Background(), 1, 5, 1)
	if err != nil {
		t.Fatalf("PriceFor failed: %v", err)
	}
	if price != 149.9 {
		t.Errorf("Expected 149.9, got %v", price)
	}
}

func TestSearchRead_Many2One(t *testing.T) {
	srv, _ := fakeOdoo(t, func(body string) string {
		return recordsResponse(
			member("id", "<int>11</int>"),
			member("product_id", "<array><data><value><int>5</int></value><value><string>Boots</string></value></data></array>"),
			member("location_id", "<array><data><value><int>8</int></value><value><string>WH/Stock</string></value></data></array>"),
			member("quantity", "<double>7</double>"),
			member("reserved_quantity", "<double>2</double>"),
		)
	})
	defer srv.Close()

	var quants []models.StockQuant
	err := NewClient(srv.URL, "db", "user", "pass").SearchRead("stock.quant", []interface{}{}, []string{"product_id"}, SearchReadOptions{Limit: 1}, &quants)
	if err != nil {
		t.Fatalf("SearchRead failed: %v", err)
	}
	if len(quants) != 1 {
		t.Fatalf("Expected one quant, got %d", len(quants))
	}
	q := quants[0]
	if q.ProductID.Int64() != 5 || q.LocationID.Int64() != 8 || q.Quantity-q.ReservedQuantity != 5 {
		t.Errorf("Unexpected quant: %+v", q)
	}
}
