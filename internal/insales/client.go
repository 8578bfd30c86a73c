package insales

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the response timeout of every request
	DefaultTimeout = 60 * time.Second
	// DefaultPerPage is the page size of product listings
	DefaultPerPage = 100
)

// Options tune a Client
type Options struct {
	Timeout time.Duration
	PerPage int
}

// Client talks to the InSales admin JSON API of one shop
type Client struct {
	BaseURL    string
	APIKey     string
	Password   string
	PerPage    int
	HttpClient *http.Client
}

// BaseURL turns a shop host prefix into the API base url.
// Values that already carry a scheme are used as given.
func BaseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return fmt.Sprintf("https://%s.myinsales.ru", host)
}

// NewClient creates a client from shop credentials
func NewClient(host, apiKey, password string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	return &Client{
		BaseURL:    BaseURL(host),
		APIKey:     apiKey,
		Password:   password,
		PerPage:    opts.PerPage,
		HttpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// do performs one request and decodes the JSON answer into out (when not nil)
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &APIError{Method: method, Path: path, Err: err}
	}
	req.SetBasicAuth(c.APIKey, c.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return &APIError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// GetProduct fetches a product with its variants
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/admin/products/%d.json", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductVariant fetches a single variant
func (c *Client) GetProductVariant(ctx context.Context, productID, variantID int64) (*Variant, error) {
	var variant Variant
	path := fmt.Sprintf("/admin/products/%d/variants/%d.json", productID, variantID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &variant); err != nil {
		return nil, err
	}
	return &variant, nil
}

// UpdateProductVariant writes the given fields of a variant
func (c *Client) UpdateProductVariant(ctx context.Context, productID, variantID int64, payload map[string]interface{}) error {
	path := fmt.Sprintf("/admin/products/%d/variants/%d.json", productID, variantID)
	body := map[string]interface{}{"variant": payload}
	return c.do(ctx, http.MethodPut, path, nil, body, nil)
}

// Products lists the products of one category page by page.
// The sequence is lazy and stops at the first short page or at the first error.
func (c *Client) Products(ctx context.Context, categoryID int64) iter.Seq2[*Product, error] {
	return func(yield func(*Product, error) bool) {
		for page := 1; ; page++ {
			query := url.Values{}
			query.Set("category_id", strconv.FormatInt(categoryID, 10))
			query.Set("per_page", strconv.Itoa(c.PerPage))
			query.Set("page", strconv.Itoa(page))

			var batch []Product
			if err := c.do(ctx, http.MethodGet, "/admin/products.json", query, nil, &batch); err != nil {
				yield(nil, err)
				return
			}

			for i := range batch {
				if !yield(&batch[i], nil) {
					return
				}
			}

			if len(batch) < c.PerPage {
				return
			}
		}
	}
}

// GetCategories returns the whole category tree as a flat list
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/admin/categories.json", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetVariantField finds an additional variant field by handle or title
func (c *Client) GetVariantField(ctx context.Context, name string) (*VariantField, error) {
	const path = "/admin/variant_fields.json"
	var fields []VariantField
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &fields); err != nil {
		return nil, err
	}
	for i := range fields {
		if fields[i].Handle == name || fields[i].Title == name {
			return &fields[i], nil
		}
	}
	return nil, &APIError{
		Method:     http.MethodGet,
		Path:       path,
		StatusCode: http.StatusNotFound,
		Body:       fmt.Sprintf("variant field %q not found", name),
	}
}
