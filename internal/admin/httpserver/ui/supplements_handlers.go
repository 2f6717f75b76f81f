package ui

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "ateliernour.dz/shop/internal/admin/httpserver/middleware"
	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/observability"
)

// SupplementsPage lists the add-ons with inline create and edit forms.
func (h *Handlers) SupplementsPage(w http.ResponseWriter, r *http.Request) {
	data := h.newPage(r, "Suppléments")

	supplements, err := h.api.ListSupplements(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Error("list supplements", zap.Error(err))
		data.Error = "Impossible de charger les suppléments."
	}

	data.Supplements = &SupplementsView{Supplements: supplements}
	h.render(w, r, "supplements", http.StatusOK, data)
}

// SupplementCreate adds a new add-on.
func (h *Handlers) SupplementCreate(w http.ResponseWriter, r *http.Request) {
	token := custommw.TokenFromContext(r.Context())

	supplement, ok := parseSupplementForm(r)
	if !ok {
		http.Error(w, "supplément invalide", http.StatusBadRequest)
		return
	}

	if _, err := h.api.CreateSupplement(r.Context(), token, supplement); err != nil {
		observability.FromContext(r.Context()).Error("create supplement", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, h.path("/supplements?ok=1"), http.StatusSeeOther)
}

// SupplementUpdate renames or reprices an add-on.
func (h *Handlers) SupplementUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := custommw.TokenFromContext(r.Context())

	supplement, ok := parseSupplementForm(r)
	if !ok {
		http.Error(w, "supplément invalide", http.StatusBadRequest)
		return
	}

	if _, err := h.api.UpdateSupplement(r.Context(), token, id, supplement); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("update supplement",
			zap.String("supplement_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, h.path("/supplements?ok=1"), http.StatusSeeOther)
}

// SupplementDelete removes an add-on.
func (h *Handlers) SupplementDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := custommw.TokenFromContext(r.Context())

	if err := h.api.DeleteSupplement(r.Context(), token, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		observability.FromContext(r.Context()).Error("delete supplement",
			zap.String("supplement_id", id), zap.Error(err))
		http.Redirect(w, r, h.path("/supplements?err=1"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.path("/supplements"), http.StatusSeeOther)
}

// SettingsPage renders the credentials form.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	data := h.newPage(r, "Paramètres")
	username := ""
	if data.User != nil {
		username = data.User.Username
	}
	data.Settings = &SettingsView{Username: username}
	h.render(w, r, "settings", http.StatusOK, data)
}

func parseSupplementForm(r *http.Request) (api.Supplement, bool) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	price, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("price")), 10, 64)
	if name == "" || err != nil || price < 0 {
		return api.Supplement{}, false
	}
	return api.Supplement{Name: name, Price: price}, true
}
