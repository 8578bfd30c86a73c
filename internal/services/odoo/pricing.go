package odoo

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Pricing reads pricelist prices from Odoo
type Pricing struct {
	client *Client
}

// NewPricing creates a pricelist price reader
func NewPricing(client *Client) *Pricing {
	return &Pricing{client: client}
}

// PriceFor returns the price of a product in a pricelist for qty units
func (p *Pricing) PriceFor(ctx context.Context, pricelistID, productID int64, qty float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var rows []struct {
		ID    int64   `json:"id"`
		Price float64 `json:"price"`
	}
	evalCtx := map[string]interface{}{
		"pricelist": pricelistID,
		"quantity":  qty,
	}
	if err := p.client.Read("product.product", []int64{productID}, []string{"price"}, evalCtx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("product %d not found in Odoo", productID)
	}
	return rows[0].Price, nil
}

// Precision resolves decimal.precision records by name and caches the digits
type Precision struct {
	client *Client
	cache  *cache.Cache
}

// NewPrecision creates a precision resolver caching results for ttl
func NewPrecision(client *Client, ttl time.Duration) *Precision {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Precision{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Digits returns the digits of a named precision, 0 when it does not exist
func (p *Precision) Digits(ctx context.Context, name string) (int, error) {
	if v, ok := p.cache.Get(name); ok {
		return v.(int), nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var rows []struct {
		Name   string `json:"name"`
		Digits int    `json:"digits"`
	}
	domain := []interface{}{
		[]interface{}{"name", "=", name},
	}
	if err := p.client.SearchRead("decimal.precision", domain, []string{"name", "digits"}, SearchReadOptions{Limit: 1}, &rows); err != nil {
		return 0, err
	}

	digits := 0
	if len(rows) > 0 {
		digits = rows[0].Digits
	}
	p.cache.SetDefault(name, digits)
	return digits, nil
}
