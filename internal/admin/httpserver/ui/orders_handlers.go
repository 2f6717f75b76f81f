package ui

import (
	"errors"
	"net/http"
	"net/url"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "ateliernour.dz/shop/internal/admin/httpserver/middleware"
	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/observability"
)

// OrdersPage lists orders, newest first, optionally filtered by status.
func (h *Handlers) OrdersPage(w http.ResponseWriter, r *http.Request) {
	data := h.loadOrders(r)
	h.render(w, r, "orders", http.StatusOK, data)
}

// OrdersTable renders only the filterable table, swapped in place when the
// status filter is driven by htmx.
func (h *Handlers) OrdersTable(w http.ResponseWriter, r *http.Request) {
	data := h.loadOrders(r)

	canonical := h.path("/commandes")
	if data.Orders.Filter != "" {
		canonical += "?statut=" + url.QueryEscape(data.Orders.Filter)
	}
	w.Header().Set("HX-Push-Url", canonical)

	h.render(w, r, "orders_table", http.StatusOK, data)
}

func (h *Handlers) loadOrders(r *http.Request) *PageData {
	token := custommw.TokenFromContext(r.Context())
	data := h.newPage(r, "Commandes")

	orders, err := h.api.ListOrders(r.Context(), token)
	if err != nil {
		observability.FromContext(r.Context()).Error("list orders", zap.Error(err))
		data.Error = "Impossible de charger les commandes."
	}

	filter := r.URL.Query().Get("statut")
	if filter != "" {
		filtered := orders[:0]
		for _, order := range orders {
			if order.Status == filter {
				filtered = append(filtered, order)
			}
		}
		orders = filtered
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	data.Orders = &OrdersView{
		Orders:   orders,
		Statuses: api.Statuses,
		Filter:   filter,
	}
	return data
}

// OrderStatus moves an order along the fulfilment workflow.
func (h *Handlers) OrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := custommw.TokenFromContext(r.Context())

	status := r.PostFormValue("status")
	if !validStatus(status) {
		http.Error(w, "statut inconnu", http.StatusBadRequest)
		return
	}

	if _, err := h.api.UpdateOrderStatus(r.Context(), token, id, status); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("update order status",
			zap.String("order_id", id), zap.String("status", status), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, h.path("/commandes"), http.StatusSeeOther)
}

// OrderDelete removes an order entirely.
func (h *Handlers) OrderDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := custommw.TokenFromContext(r.Context())

	if err := h.api.DeleteOrder(r.Context(), token, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		observability.FromContext(r.Context()).Error("delete order",
			zap.String("order_id", id), zap.Error(err))
		http.Redirect(w, r, h.path("/commandes?err=1"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.path("/commandes"), http.StatusSeeOther)
}

func validStatus(status string) bool {
	for _, s := range api.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
