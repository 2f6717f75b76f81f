// Package api is the typed HTTP client for the external shop backend. The
// backend owns all persistence; this package only maps requests and
// responses and never retries a failed call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// ErrUnauthorized is returned on any 401 response; callers treat it as
// session expiry and force a re-login.
var ErrUnauthorized = errors.New("api: unauthorized")

// ErrNotFound is returned on 404 responses.
var ErrNotFound = errors.New("api: not found")

// Error is the backend error envelope for other non-2xx responses.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: backend error (%d): %s", e.Status, http.StatusText(e.Status))
}

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues REST calls against the backend API.
type Client struct {
	base   *url.URL
	client HTTPClient
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, client HTTPClient) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("api: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: parsed, client: client}, nil
}

// ListProducts fetches the catalog, optionally filtered to a tag.
func (c *Client) ListProducts(ctx context.Context, tag string) ([]Product, error) {
	endpoint := "products"
	if tag != "" {
		endpoint += "?tag=" + url.QueryEscape(tag)
	}
	var out []Product
	if err := c.getJSON(ctx, endpoint, "", &out); err != nil {
		return nil, err
	}
	if tag == "" {
		return out, nil
	}
	// the backend may ignore the tag filter; apply it locally as well
	filtered := out[:0]
	for _, p := range out {
		for _, t := range p.Tags {
			if t == tag {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var out Product
	err := c.getJSON(ctx, "products/"+url.PathEscape(id), "", &out)
	return out, err
}

// CreateProduct stores a new product. Requires an admin token.
func (c *Client) CreateProduct(ctx context.Context, token string, p Product) (Product, error) {
	var out Product
	err := c.doJSON(ctx, http.MethodPost, "products", token, p, &out)
	return out, err
}

// UpdateProduct replaces the product with the given id. Requires an admin token.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, p Product) (Product, error) {
	var out Product
	err := c.doJSON(ctx, http.MethodPut, "products/"+url.PathEscape(id), token, p, &out)
	return out, err
}

// DeleteProduct removes the product. Requires an admin token.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "products/"+url.PathEscape(id), token, nil, nil)
}

// ListSupplements fetches the supplement catalog.
func (c *Client) ListSupplements(ctx context.Context) ([]Supplement, error) {
	var out []Supplement
	err := c.getJSON(ctx, "supplements", "", &out)
	return out, err
}

// CreateSupplement stores a new supplement. Requires an admin token.
func (c *Client) CreateSupplement(ctx context.Context, token string, s Supplement) (Supplement, error) {
	var out Supplement
	err := c.doJSON(ctx, http.MethodPost, "supplements", token, s, &out)
	return out, err
}

// UpdateSupplement updates the supplement with the given id. Requires an admin token.
func (c *Client) UpdateSupplement(ctx context.Context, token, id string, s Supplement) (Supplement, error) {
	var out Supplement
	err := c.doJSON(ctx, http.MethodPut, "supplements/"+url.PathEscape(id), token, s, &out)
	return out, err
}

// DeleteSupplement removes the supplement. Requires an admin token.
func (c *Client) DeleteSupplement(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "supplements/"+url.PathEscape(id), token, nil, nil)
}

// SupplementPrices returns the current name-to-price map used when adding
// a customized product to the cart.
func (c *Client) SupplementPrices(ctx context.Context) (map[string]int64, error) {
	supps, err := c.ListSupplements(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]int64, len(supps))
	for _, s := range supps {
		prices[s.Name] = s.Price
	}
	return prices, nil
}

// CreateOrder submits a new order. One ULID idempotency key is attached per
// attempt; the backend never sees a retry from this client.
func (c *Client) CreateOrder(ctx context.Context, order CreateOrder) (Order, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "orders", "", order)
	if err != nil {
		return Order{}, err
	}
	req.Header.Set(idempotencyHeader, ulid.Make().String())

	var out Order
	err = c.execute(req, &out)
	return out, err
}

// ListOrders fetches all orders. Requires an admin token.
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	err := c.getJSON(ctx, "orders", token, &out)
	return out, err
}

// UpdateOrderStatus sets a new status on the order. Requires an admin token.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, id, status string) (Order, error) {
	var out Order
	err := c.doJSON(ctx, http.MethodPut, "orders/"+url.PathEscape(id), token, map[string]string{"status": status}, &out)
	return out, err
}

// DeleteOrder removes the order. Requires an admin token.
func (c *Client) DeleteOrder(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "orders/"+url.PathEscape(id), token, nil, nil)
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	var out LoginResult
	err := c.doJSON(ctx, http.MethodPost, "auth/login", "", payload, &out)
	return out, err
}

// Verify validates a stored token against the backend. ErrUnauthorized
// means the session is expired and must be discarded.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.getJSON(ctx, "auth/verify", token, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		out.User = &User{Role: "admin"}
	}
	return out.User, nil
}

// UpdateCredentials changes the admin username/password. Requires an admin token.
func (c *Client) UpdateCredentials(ctx context.Context, token string, creds Credentials) error {
	return c.doJSON(ctx, http.MethodPut, "auth/credentials", token, creds, nil)
}

// Upload sends image files as multipart form data and returns the stored URLs.
func (c *Client) Upload(ctx context.Context, token string, files map[string]io.Reader) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, r := range files {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			return nil, fmt.Errorf("api: build upload: %w", err)
		}
		if _, err := io.Copy(part, r); err != nil {
			return nil, fmt.Errorf("api: copy upload %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("api: finish upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "upload", &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out struct {
		URLs []string `json:"urls"`
	}
	if err := c.execute(req, &out); err != nil {
		return nil, err
	}
	return out.URLs, nil
}

// Stats fetches the dashboard aggregates. Requires an admin token.
func (c *Client) Stats(ctx context.Context, token string) (Stats, error) {
	var out Stats
	err := c.getJSON(ctx, "admin/stats", token, &out)
	return out, err
}

// ResetStats clears the visit counters. Requires an admin token.
func (c *Client) ResetStats(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "admin/stats/reset", token, nil, nil)
}

func (c *Client) getJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return err
	}
	return c.execute(req, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, payload, out any) error {
	req, err := c.newJSONRequest(ctx, method, endpoint, token, payload)
	if err != nil {
		return err
	}
	return c.execute(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, endpoint, token string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	if payload != nil {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("api: encode payload: %w", err)
		}
	}
	req, err := c.newRequest(ctx, method, endpoint, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) execute(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return errorFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Message string `json:"message"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
			return &Error{Status: resp.StatusCode, Message: payload.Message}
		}
	}
	return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
