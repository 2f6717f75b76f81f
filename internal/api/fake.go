package api

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const fakeToken = "fake-admin-token"

// Fake is an in-memory Service used when no backend URL is configured and
// by tests. It mimics the backend's visible behaviour: bearer-token gating
// on admin operations, merge-free CRUD, and order status transitions.
type Fake struct {
	mu          sync.Mutex
	products    []Product
	supplements []Supplement
	orders      []Order
	username    string
	password    string
	stats       Stats
	now         func() time.Time
}

// NewFake seeds a Fake with a small demo catalog and admin/admin credentials.
func NewFake() *Fake {
	stock3, stock5 := 3, 5
	f := &Fake{
		username: "admin",
		password: "admin",
		now:      time.Now,
	}
	f.products = []Product{
		{
			ID:          "prod_rose",
			Name:        "Bouquet Rose Éternel",
			Category:    "Bouquet Classique",
			Price:       2500,
			Stock:       &stock5,
			Supplements: []string{"Ruban doré", "Carte message"},
			Images:      []string{"/assets/img/demo/rose.jpg"},
			Tags:        []string{"Bouquet Classique"},
		},
		{
			ID:       "prod_geant",
			Name:     "Bouquet Géant Nuage",
			Category: "Bouquets Géants",
			Price:    7800,
			Sizes:    []Size{{Label: "50 fleurs", Stock: 2}, {Label: "80 fleurs", Stock: 1}},
			Images:   []string{"/assets/img/demo/geant.jpg"},
			Tags:     []string{"Bouquets Géants"},
		},
		{
			ID:       "prod_mini",
			Name:     "Mini Bouquet Pastel",
			Category: "Mini Bouquet",
			Price:    900,
			Stock:    &stock3,
			Images:   []string{"/assets/img/demo/mini.jpg"},
			Tags:     []string{"Mini Bouquet"},
		},
	}
	f.supplements = []Supplement{
		{ID: "supp_ruban", Name: "Ruban doré", Price: 300},
		{ID: "supp_carte", Name: "Carte message", Price: 200},
		{ID: "supp_papillon", Name: "Papillons", Price: 450},
	}
	return f
}

// SetClock overrides the clock, primarily for tests.
func (f *Fake) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if now != nil {
		f.now = now
	}
}

// ListProducts implements Service.
func (f *Fake) ListProducts(_ context.Context, tag string) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Product, 0, len(f.products))
	for _, p := range f.products {
		if tag == "" || containsTag(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetProduct implements Service.
func (f *Fake) GetProduct(_ context.Context, id string) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// CreateProduct implements Service.
func (f *Fake) CreateProduct(_ context.Context, token string, p Product) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return Product{}, err
	}
	p.ID = "prod_" + ulid.Make().String()
	p.CreatedAt = f.now().UTC()
	f.products = append(f.products, p)
	return p, nil
}

// UpdateProduct implements Service.
func (f *Fake) UpdateProduct(_ context.Context, token, id string, p Product) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return Product{}, err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			p.ID = id
			p.CreatedAt = f.products[i].CreatedAt
			f.products[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// DeleteProduct implements Service.
func (f *Fake) DeleteProduct(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListSupplements implements Service.
func (f *Fake) ListSupplements(_ context.Context) ([]Supplement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Supplement, len(f.supplements))
	copy(out, f.supplements)
	return out, nil
}

// CreateSupplement implements Service.
func (f *Fake) CreateSupplement(_ context.Context, token string, s Supplement) (Supplement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return Supplement{}, err
	}
	s.ID = "supp_" + ulid.Make().String()
	f.supplements = append(f.supplements, s)
	return s, nil
}

// UpdateSupplement implements Service.
func (f *Fake) UpdateSupplement(_ context.Context, token, id string, s Supplement) (Supplement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return Supplement{}, err
	}
	for i := range f.supplements {
		if f.supplements[i].ID == id {
			s.ID = id
			f.supplements[i] = s
			return s, nil
		}
	}
	return Supplement{}, ErrNotFound
}

// DeleteSupplement implements Service.
func (f *Fake) DeleteSupplement(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return err
	}
	for i := range f.supplements {
		if f.supplements[i].ID == id {
			f.supplements = append(f.supplements[:i], f.supplements[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SupplementPrices implements Service.
func (f *Fake) SupplementPrices(ctx context.Context) (map[string]int64, error) {
	supps, err := f.ListSupplements(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]int64, len(supps))
	for _, s := range supps {
		prices[s.Name] = s.Price
	}
	return prices, nil
}

// CreateOrder implements Service.
func (f *Fake) CreateOrder(_ context.Context, order CreateOrder) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(order.Items) == 0 {
		return Order{}, &Error{Status: 400, Message: "order has no items"}
	}
	o := Order{
		ID:           "ord_" + ulid.Make().String(),
		CustomerInfo: order.CustomerInfo,
		Items:        order.Items,
		Total:        order.Total,
		Status:       StatusPending,
		CreatedAt:    f.now().UTC(),
	}
	f.orders = append(f.orders, o)
	f.stats.TotalOrders++
	f.stats.PendingOrders++
	f.stats.TotalRevenue += order.Total
	return o, nil
}

// ListOrders implements Service.
func (f *Fake) ListOrders(_ context.Context, token string) ([]Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	out := make([]Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

// UpdateOrderStatus implements Service.
func (f *Fake) UpdateOrderStatus(_ context.Context, token, id, status string) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return Order{}, err
	}
	if !validStatus(status) {
		return Order{}, &Error{Status: 400, Message: fmt.Sprintf("unknown status %q", status)}
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return f.orders[i], nil
		}
	}
	return Order{}, ErrNotFound
}

// DeleteOrder implements Service.
func (f *Fake) DeleteOrder(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return err
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Login implements Service.
func (f *Fake) Login(_ context.Context, username, password string) (LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if username != f.username || password != f.password {
		return LoginResult{}, ErrUnauthorized
	}
	return LoginResult{
		Token: fakeToken,
		User:  &User{Username: f.username, Role: "admin"},
	}, nil
}

// Verify implements Service.
func (f *Fake) Verify(_ context.Context, token string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	return &User{Username: f.username, Role: "admin"}, nil
}

// UpdateCredentials implements Service.
func (f *Fake) UpdateCredentials(_ context.Context, token string, creds Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return err
	}
	if creds.CurrentPass != f.password {
		return &Error{Status: 400, Message: "current password does not match"}
	}
	if creds.Username != "" {
		f.username = creds.Username
	}
	if creds.NewPass != "" {
		f.password = creds.NewPass
	}
	return nil
}

// Upload implements Service. Files are not stored; stable demo URLs are returned.
func (f *Fake) Upload(_ context.Context, token string, files map[string]io.Reader) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(files))
	for name, r := range files {
		_, _ = io.Copy(io.Discard, r)
		urls = append(urls, "/assets/img/uploads/"+name)
	}
	return urls, nil
}

// Stats implements Service.
func (f *Fake) Stats(_ context.Context, token string) (Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return Stats{}, err
	}
	stats := f.stats
	stats.PendingOrders, stats.ConfirmedOrders, stats.InDeliveryOrders = 0, 0, 0
	stats.DeliveredOrders, stats.ReturnOrders, stats.CancelledOrders = 0, 0, 0
	for _, o := range f.orders {
		switch o.Status {
		case StatusPending:
			stats.PendingOrders++
		case StatusConfirmed:
			stats.ConfirmedOrders++
		case StatusInDelivery:
			stats.InDeliveryOrders++
		case StatusDelivered:
			stats.DeliveredOrders++
		case StatusReturned:
			stats.ReturnOrders++
		case StatusCancelled:
			stats.CancelledOrders++
		}
	}
	return stats, nil
}

// ResetStats implements Service.
func (f *Fake) ResetStats(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(token); err != nil {
		return err
	}
	f.stats = Stats{}
	return nil
}

func (f *Fake) authorize(token string) error {
	if token != fakeToken {
		return ErrUnauthorized
	}
	return nil
}

func validStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
