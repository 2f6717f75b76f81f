package ui

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "ateliernour.dz/shop/internal/admin/httpserver/middleware"
	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/observability"
)

const maxUploadBytes = 32 << 20

// ProductsPage lists the catalog.
func (h *Handlers) ProductsPage(w http.ResponseWriter, r *http.Request) {
	data := h.newPage(r, "Produits")

	products, err := h.api.ListProducts(r.Context(), "")
	if err != nil {
		observability.FromContext(r.Context()).Error("list products", zap.Error(err))
		data.Error = "Impossible de charger les produits."
	}

	data.Products = &ProductsView{Products: products}
	h.render(w, r, "products", http.StatusOK, data)
}

// ProductNew renders an empty product form.
func (h *Handlers) ProductNew(w http.ResponseWriter, r *http.Request) {
	data := h.newPage(r, "Nouveau produit")
	data.ProductForm = &ProductFormView{IsNew: true, Supplements: h.loadSupplements(r)}
	h.render(w, r, "product_form", http.StatusOK, data)
}

// ProductCreate handles the create form submission, including image uploads.
func (h *Handlers) ProductCreate(w http.ResponseWriter, r *http.Request) {
	token := custommw.TokenFromContext(r.Context())

	product, formErr := h.parseProductForm(r, token)
	if formErr != "" {
		data := h.newPage(r, "Nouveau produit")
		data.Error = formErr
		data.ProductForm = &ProductFormView{Product: product, IsNew: true, Supplements: h.loadSupplements(r)}
		h.render(w, r, "product_form", http.StatusUnprocessableEntity, data)
		return
	}

	if _, err := h.api.CreateProduct(r.Context(), token, product); err != nil {
		observability.FromContext(r.Context()).Error("create product", zap.Error(err))
		data := h.newPage(r, "Nouveau produit")
		data.Error = "La création a échoué, réessayez plus tard."
		data.ProductForm = &ProductFormView{Product: product, IsNew: true, Supplements: h.loadSupplements(r)}
		h.render(w, r, "product_form", http.StatusBadGateway, data)
		return
	}

	http.Redirect(w, r, h.path("/produits?ok=1"), http.StatusSeeOther)
}

// ProductEdit renders the edit form for an existing product.
func (h *Handlers) ProductEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.api.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("fetch product",
			zap.String("product_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	data := h.newPage(r, product.Name)
	data.ProductForm = &ProductFormView{Product: product, Supplements: h.loadSupplements(r)}
	h.render(w, r, "product_form", http.StatusOK, data)
}

// ProductUpdate handles the edit form submission.
func (h *Handlers) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := custommw.TokenFromContext(r.Context())

	product, formErr := h.parseProductForm(r, token)
	product.ID = id
	if formErr != "" {
		data := h.newPage(r, product.Name)
		data.Error = formErr
		data.ProductForm = &ProductFormView{Product: product, Supplements: h.loadSupplements(r)}
		h.render(w, r, "product_form", http.StatusUnprocessableEntity, data)
		return
	}

	if _, err := h.api.UpdateProduct(r.Context(), token, id, product); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("update product",
			zap.String("product_id", id), zap.Error(err))
		data := h.newPage(r, product.Name)
		data.Error = "La mise à jour a échoué, réessayez plus tard."
		data.ProductForm = &ProductFormView{Product: product, Supplements: h.loadSupplements(r)}
		h.render(w, r, "product_form", http.StatusBadGateway, data)
		return
	}

	http.Redirect(w, r, h.path("/produits?ok=1"), http.StatusSeeOther)
}

// ProductDelete removes a product from the catalog.
func (h *Handlers) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := custommw.TokenFromContext(r.Context())

	if err := h.api.DeleteProduct(r.Context(), token, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		observability.FromContext(r.Context()).Error("delete product",
			zap.String("product_id", id), zap.Error(err))
		http.Redirect(w, r, h.path("/produits?err=1"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.path("/produits"), http.StatusSeeOther)
}

// parseProductForm reads the multipart product form, uploading any attached
// photos. The returned string is a user-facing validation message; empty means
// the product is ready to persist.
func (h *Handlers) parseProductForm(r *http.Request, token string) (api.Product, string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return api.Product{}, "Formulaire invalide, veuillez réessayer."
	}

	product := api.Product{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Supplements: r.Form["supplements"],
		Images:      r.Form["images"],
		Tags:        splitList(r.FormValue("tags")),
	}

	if product.Name == "" {
		return product, "Le nom du produit est obligatoire."
	}
	if product.Category == "" {
		return product, "La catégorie est obligatoire."
	}

	price, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("price")), 10, 64)
	if err != nil || price <= 0 {
		return product, "Prix invalide."
	}
	product.Price = price

	sizes, sizeErr := parseSizes(r.FormValue("sizes"))
	if sizeErr != "" {
		return product, sizeErr
	}
	product.Sizes = sizes

	if raw := strings.TrimSpace(r.FormValue("stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return product, "Stock invalide."
		}
		product.Stock = &stock
	} else if len(product.Sizes) == 0 {
		return product, "Indiquez un stock ou des tailles."
	}

	uploaded, uploadErr := h.uploadPhotos(r, token)
	if uploadErr != "" {
		return product, uploadErr
	}
	product.Images = append(product.Images, uploaded...)

	return product, ""
}

func (h *Handlers) uploadPhotos(r *http.Request, token string) ([]string, string) {
	if r.MultipartForm == nil {
		return nil, ""
	}
	headers := r.MultipartForm.File["photos"]
	if len(headers) == 0 {
		return nil, ""
	}

	files := make(map[string]io.Reader, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, "Lecture des photos impossible."
		}
		opened = append(opened, f)
		files[header.Filename] = f
	}

	urls, err := h.api.Upload(r.Context(), token, files)
	if err != nil {
		observability.FromContext(r.Context()).Error("upload photos", zap.Error(err))
		return nil, "L'envoi des photos a échoué, réessayez plus tard."
	}
	return urls, ""
}

func (h *Handlers) loadSupplements(r *http.Request) []api.Supplement {
	supplements, err := h.api.ListSupplements(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Warn("list supplements", zap.Error(err))
		return nil
	}
	return supplements
}

// parseSizes reads one "Libellé : stock" entry per line.
func parseSizes(raw string) ([]api.Size, string) {
	var sizes []api.Size
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, stockRaw, found := strings.Cut(line, ":")
		if !found {
			return nil, "Tailles invalides, format attendu « Libellé : stock »."
		}
		stock, err := strconv.Atoi(strings.TrimSpace(stockRaw))
		if err != nil || stock < 0 {
			return nil, "Tailles invalides, format attendu « Libellé : stock »."
		}
		sizes = append(sizes, api.Size{Label: strings.TrimSpace(label), Stock: stock})
	}
	return sizes, ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
