package ui

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	custommw "ateliernour.dz/shop/internal/admin/httpserver/middleware"
	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/observability"
)

// RenderFunc executes a named page template with the given status.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, status int, data *PageData)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	API      api.Service
	Render   RenderFunc
	BasePath string
}

// Handlers exposes HTTP handlers for the back-office pages.
type Handlers struct {
	api      api.Service
	render   RenderFunc
	basePath string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		api:      deps.API,
		render:   deps.Render,
		basePath: deps.BasePath,
	}
}

// PageData is the shared payload handed to every back-office template.
type PageData struct {
	Title     string
	BasePath  string
	CSRFToken string
	User      *api.User
	Flash     string
	Error     string

	Login       *LoginView
	Dashboard   *DashboardView
	Products    *ProductsView
	ProductForm *ProductFormView
	Orders      *OrdersView
	Supplements *SupplementsView
	Settings    *SettingsView
}

// LoginView backs the login form.
type LoginView struct {
	Username string
	Next     string
	Changed  bool
}

// DashboardView aggregates the stats tiles and the latest orders.
type DashboardView struct {
	Stats  api.Stats
	Recent []api.Order
}

// ProductsView lists the catalog for management.
type ProductsView struct {
	Products []api.Product
}

// ProductFormView backs both the create and edit forms.
type ProductFormView struct {
	Product     api.Product
	Supplements []api.Supplement
	IsNew       bool
}

// OrdersView lists orders with the current status filter.
type OrdersView struct {
	Orders   []api.Order
	Statuses []string
	Filter   string
}

// SupplementsView lists the add-on catalog.
type SupplementsView struct {
	Supplements []api.Supplement
}

// SettingsView backs the credentials form.
type SettingsView struct {
	Username string
}

func (h *Handlers) newPage(r *http.Request, title string) *PageData {
	user, _ := custommw.UserFromContext(r.Context())
	data := &PageData{
		Title:     title,
		BasePath:  h.basePath,
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
		User:      user,
	}
	if r.URL.Query().Get("ok") == "1" {
		data.Flash = "Modifications enregistrées."
	}
	if r.URL.Query().Get("err") == "1" {
		data.Error = "La suppression a échoué, réessayez plus tard."
	}
	return data
}

func (h *Handlers) path(suffix string) string {
	if h.basePath == "/" {
		return suffix
	}
	return h.basePath + suffix
}

// Dashboard renders the stats tiles plus the five most recent orders.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	token := custommw.TokenFromContext(r.Context())
	data := h.newPage(r, "Tableau de bord")

	stats, err := h.api.Stats(r.Context(), token)
	if err != nil {
		observability.FromContext(r.Context()).Error("fetch stats", zap.Error(err))
		data.Error = "Impossible de charger les statistiques."
	}

	orders, err := h.api.ListOrders(r.Context(), token)
	if err != nil {
		observability.FromContext(r.Context()).Error("fetch orders", zap.Error(err))
		if data.Error == "" {
			data.Error = "Impossible de charger les commandes."
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if len(orders) > 5 {
		orders = orders[:5]
	}

	data.Dashboard = &DashboardView{Stats: stats, Recent: orders}
	h.render(w, r, "dashboard", http.StatusOK, data)
}

// DashboardReset zeroes the visit counter.
func (h *Handlers) DashboardReset(w http.ResponseWriter, r *http.Request) {
	token := custommw.TokenFromContext(r.Context())
	if err := h.api.ResetStats(r.Context(), token); err != nil {
		observability.FromContext(r.Context()).Error("reset stats", zap.Error(err))
	}
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}
