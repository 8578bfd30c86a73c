package odoo

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kolo/xmlrpc"
)

// Client represents an Odoo XML-RPC client
type Client struct {
	URL       string
	Database  string
	Username  string
	Password  string
	Uid       int
	CommonURL string
	ObjectURL string

	authMu sync.Mutex
}

// NewClient creates a new Odoo client
func NewClient(url, db, username, password string) *Client {
	return &Client{
		URL:       url,
		Database:  db,
		Username:  username,
		Password:  password,
		CommonURL: fmt.Sprintf("%s/xmlrpc/2/common", url),
		ObjectURL: fmt.Sprintf("%s/xmlrpc/2/object", url),
	}
}

// Authenticate authenticates with Odoo and returns the user ID
func (c *Client) Authenticate() (int, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	return c.authenticate()
}

func (c *Client) authenticate() (int, error) {
	client, err := xmlrpc.NewClient(c.CommonURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, make(map[string]interface{})}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, fmt.Errorf("authentication failed: %w", err)
	}
	if uid == 0 {
		return 0, fmt.Errorf("authentication failed: invalid credentials for %s", c.Username)
	}

	c.Uid = uid
	return uid, nil
}

// ensureAuth authenticates once, on first use
func (c *Client) ensureAuth() error {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	if c.Uid != 0 {
		return nil
	}
	_, err := c.authenticate()
	return err
}

// executeKw calls a model method through execute_kw
func (c *Client) executeKw(model, method string, args []interface{}, kwargs map[string]interface{}, result interface{}) error {
	if err := c.ensureAuth(); err != nil {
		return err
	}

	client, err := xmlrpc.NewClient(c.ObjectURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	params := []interface{}{c.Database, c.Uid, c.Password, model, method, args}
	if kwargs != nil {
		params = append(params, kwargs)
	}

	if err := client.Call("execute_kw", params, result); err != nil {
		return fmt.Errorf("failed to execute %s.%s: %w", model, method, err)
	}
	return nil
}

// decodeRecords converts raw XML-RPC records into the target slice via JSON
func decodeRecords(raw []map[string]interface{}, result interface{}) error {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw result: %w", err)
	}
	if err := json.Unmarshal(jsonData, result); err != nil {
		return fmt.Errorf("failed to unmarshal into target: %w", err)
	}
	return nil
}

// SearchReadOptions are the optional keyword arguments of search_read
type SearchReadOptions struct {
	Limit   int
	Offset  int
	Order   string
	Context map[string]interface{}
}

// SearchRead performs a generic search_read operation
// model: Odoo model name (e.g., "product.product")
// domain: search criteria
// fields: fields to fetch
// result: pointer to slice of structs with json tags
func (c *Client) SearchRead(model string, domain []interface{}, fields []string, opts SearchReadOptions, result interface{}) error {
	kwargs := map[string]interface{}{
		"fields": fields,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}
	if opts.Context != nil {
		kwargs["context"] = opts.Context
	}

	var rawResult []map[string]interface{}
	if err := c.executeKw(model, "search_read", []interface{}{domain}, kwargs, &rawResult); err != nil {
		return err
	}
	return decodeRecords(rawResult, result)
}

// Read reads records by IDs, evaluated in the given context
func (c *Client) Read(model string, ids []int64, fields []string, context map[string]interface{}, result interface{}) error {
	kwargs := map[string]interface{}{
		"fields": fields,
	}
	if context != nil {
		kwargs["context"] = context
	}

	var rawResult []map[string]interface{}
	if err := c.executeKw(model, "read", []interface{}{ids}, kwargs, &rawResult); err != nil {
		return err
	}
	return decodeRecords(rawResult, result)
}
