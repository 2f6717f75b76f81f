package api

import "time"

// Product mirrors the catalog document served by the backend.
type Product struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       *int      `json:"stock,omitempty"`
	Sizes       []Size    `json:"sizes,omitempty"`
	Supplements []string  `json:"supplements,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Size is a per-variant stock entry for products sold in several sizes.
type Size struct {
	Label string `json:"size"`
	Stock int    `json:"stock"`
}

// AvailableStock resolves the stock for the given variant label, preferring
// the flat stock field, then the matching size entry.
func (p Product) AvailableStock(variant string) int {
	if p.Stock != nil {
		return *p.Stock
	}
	for _, s := range p.Sizes {
		if s.Label == variant {
			return s.Stock
		}
	}
	if len(p.Sizes) > 0 {
		return p.Sizes[0].Stock
	}
	return 0
}

// FirstImage returns the primary product image or an empty string.
func (p Product) FirstImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Supplement is an optional paid add-on customers attach at purchase time.
type Supplement struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CustomerInfo is the shipping/contact block attached to an order.
type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Wilaya    string `json:"wilaya"`
	Commune   string `json:"commune"`
	Instagram string `json:"instagram"`
}

// OrderItem is one purchased line inside an order.
type OrderItem struct {
	Product  string `json:"product"`
	Name     string `json:"name"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Order statuses used by the back-office, as stored by the backend.
const (
	StatusPending    = "en attente"
	StatusConfirmed  = "confirmé"
	StatusInDelivery = "en livraison"
	StatusDelivered  = "livré"
	StatusReturned   = "retour"
	StatusCancelled  = "annulé"
)

// Statuses lists the order statuses in workflow order.
var Statuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusInDelivery,
	StatusDelivered,
	StatusReturned,
	StatusCancelled,
}

// Order mirrors the order document served by the backend.
type Order struct {
	ID           string       `json:"_id"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	Items        []OrderItem  `json:"items"`
	Total        int64        `json:"total"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// CreateOrder is the payload for POST /orders.
type CreateOrder struct {
	CustomerInfo CustomerInfo `json:"customerInfo"`
	Items        []OrderItem  `json:"items"`
	Total        int64        `json:"total"`
}

// User is the admin account record returned on login/verify.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResult carries the session token and account issued on login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Credentials is the payload for PUT /auth/credentials.
type Credentials struct {
	Username    string `json:"username"`
	CurrentPass string `json:"currentPassword"`
	NewPass     string `json:"newPassword"`
}

// Stats is the dashboard aggregate served by GET /admin/stats.
type Stats struct {
	TotalRevenue     int64 `json:"totalRevenue"`
	TotalOrders      int   `json:"totalOrders"`
	PendingOrders    int   `json:"pendingOrders"`
	ConfirmedOrders  int   `json:"confirmedOrders"`
	InDeliveryOrders int   `json:"inDeliveryOrders"`
	DeliveredOrders  int   `json:"deliveredOrders"`
	ReturnOrders     int   `json:"returnOrders"`
	CancelledOrders  int   `json:"cancelledOrders"`
	Visits           int   `json:"visits"`
}
