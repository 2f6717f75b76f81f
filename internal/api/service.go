package api

import (
	"context"
	"io"
)

// Service is the backend surface consumed by the storefront and the
// back-office. *Client implements it against the real backend; *Fake backs
// tests and API-less local runs.
type Service interface {
	ListProducts(ctx context.Context, tag string) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, token string, p Product) (Product, error)
	UpdateProduct(ctx context.Context, token, id string, p Product) (Product, error)
	DeleteProduct(ctx context.Context, token, id string) error

	ListSupplements(ctx context.Context) ([]Supplement, error)
	CreateSupplement(ctx context.Context, token string, s Supplement) (Supplement, error)
	UpdateSupplement(ctx context.Context, token, id string, s Supplement) (Supplement, error)
	DeleteSupplement(ctx context.Context, token, id string) error
	SupplementPrices(ctx context.Context) (map[string]int64, error)

	CreateOrder(ctx context.Context, order CreateOrder) (Order, error)
	ListOrders(ctx context.Context, token string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, token, id, status string) (Order, error)
	DeleteOrder(ctx context.Context, token, id string) error

	Login(ctx context.Context, username, password string) (LoginResult, error)
	Verify(ctx context.Context, token string) (*User, error)
	UpdateCredentials(ctx context.Context, token string, creds Credentials) error

	Upload(ctx context.Context, token string, files map[string]io.Reader) ([]string, error)

	Stats(ctx context.Context, token string) (Stats, error)
	ResetStats(ctx context.Context, token string) error
}

var (
	_ Service = (*Client)(nil)
	_ Service = (*Fake)(nil)
)
