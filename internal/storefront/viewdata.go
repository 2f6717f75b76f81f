package storefront

import (
	"html/template"
	"net/http"

	"ateliernour.dz/shop/internal/cart"
	"ateliernour.dz/shop/internal/i18n"
	custommw "ateliernour.dz/shop/internal/middleware"
	"ateliernour.dz/shop/internal/nav"
	"ateliernour.dz/shop/internal/pending"
)

// PageData is the shared view model for storefront pages.
type PageData struct {
	Title       string
	Lang        string
	Dir         string
	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRFToken   string
	CartCount   int
	Instagram   string
	// JSONLD holds pre-marshalled schema.org payloads for the page head.
	JSONLD []template.JS
	// Pending is set when the return-visit banner should be shown.
	Pending *pending.Order

	// Per-page payloads
	Home         any
	Shop         any
	Product      any
	Cart         any
	Checkout     any
	Confirmation any
	Content      any
}

// newPageData assembles the layout fields common to every page.
func (s *Server) newPageData(r *http.Request, titleKey string) *PageData {
	lang := custommw.Lang(r)
	sess := custommw.GetSession(r)
	cartStore := cart.NewStore(sess.KV(), cart.DefaultStorageKey)
	pendingStore := pending.NewStore(sess.KV(), nil)

	data := &PageData{
		Title:       s.bundle.T(lang, titleKey),
		Lang:        lang,
		Dir:         i18n.Dir(lang),
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		CSRFToken:   sess.CSRFToken,
		CartCount:   cartStore.ItemCount(),
		Instagram:   s.cfg.Site.InstagramHandle,
	}
	if marker, ok := pendingStore.Get(); ok && !marker.DMSent {
		data.Pending = &marker
	}
	return data
}

// cartStore binds the session-backed cart for the current request.
func (s *Server) cartStore(r *http.Request) *cart.Store {
	return cart.NewStore(custommw.GetSession(r).KV(), cart.DefaultStorageKey)
}

// pendingStore binds the session-backed pending-order marker store.
func (s *Server) pendingStore(r *http.Request) *pending.Store {
	return pending.NewStore(custommw.GetSession(r).KV(), nil)
}
