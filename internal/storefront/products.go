package storefront

import (
	"errors"
	"html/template"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/observability"
	"ateliernour.dz/shop/internal/seo"
)

// HomeView feeds the landing page.
type HomeView struct {
	Featured   []api.Product
	Categories []string
}

// ShopView feeds the product list page.
type ShopView struct {
	Products   []api.Product
	Categories []string
	Category   string
}

// ProductView feeds the product detail page.
type ProductView struct {
	Product     api.Product
	Supplements []api.Supplement
	Stock       int
	InStock     bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	products, err := s.api.ListProducts(r.Context(), "")
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}
	featured := products
	if len(featured) > 6 {
		featured = featured[:6]
	}
	data := s.newPageData(r, "home.title")
	data.Home = HomeView{
		Featured:   featured,
		Categories: categoriesOf(products),
	}
	s.render(w, r, "home", data)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	products, err := s.api.ListProducts(r.Context(), tag)
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}
	categories := categoriesOf(products)

	category := r.URL.Query().Get("categorie")
	if category != "" {
		filtered := make([]api.Product, 0, len(products))
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	data := s.newPageData(r, "products.title")
	data.Shop = ShopView{
		Products:   products,
		Categories: categories,
		Category:   category,
	}
	s.render(w, r, "products", data)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := s.api.GetProduct(r.Context(), id)
	if errors.Is(err, api.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}

	var supplements []api.Supplement
	if len(product.Supplements) > 0 {
		all, err := s.api.ListSupplements(r.Context())
		if err != nil {
			observability.FromContext(r.Context()).Warn("list supplements", zap.Error(err))
		} else {
			allowed := make(map[string]struct{}, len(product.Supplements))
			for _, name := range product.Supplements {
				allowed[name] = struct{}{}
			}
			for _, sup := range all {
				if _, ok := allowed[sup.Name]; ok {
					supplements = append(supplements, sup)
				}
			}
		}
	}

	stock := product.AvailableStock("")
	// Products without any stock information are sold as available.
	inStock := stock > 0 || (product.Stock == nil && len(product.Sizes) == 0)
	data := s.newPageData(r, "products.title")
	data.Title = product.Name
	data.Product = ProductView{
		Product:     product,
		Supplements: supplements,
		Stock:       stock,
		InStock:     inStock,
	}

	productURL := s.cfg.Site.BaseURL + "/produits/" + product.ID
	data.JSONLD = append(data.JSONLD,
		template.JS(seo.JSON(seo.Product(product.Name, product.Description, productURL, product.FirstImage(), product.Price, inStock))),
		template.JS(seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: s.bundle.T(data.Lang, "nav.home"), Item: s.cfg.Site.BaseURL + "/"},
			{Name: s.bundle.T(data.Lang, "nav.products"), Item: s.cfg.Site.BaseURL + "/produits"},
			{Name: product.Name, Item: productURL},
		}))),
	)
	s.render(w, r, "product", data)
}

func (s *Server) renderFetchError(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("backend fetch", zap.Error(err))
	w.WriteHeader(http.StatusBadGateway)
	s.render(w, r, "error", s.newPageData(r, "error.fetch"))
}

func categoriesOf(products []api.Product) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
