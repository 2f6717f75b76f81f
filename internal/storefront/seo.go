package storefront

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/observability"
	"ateliernour.dz/shop/internal/seo"
)

func (s *Server) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.Robots(s.cfg.Site.BaseURL)))
}

// handleSitemap lists the static pages plus every catalog product.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	base := s.cfg.Site.BaseURL

	urls := []seo.SitemapURL{
		{Loc: base + "/", ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: base + "/produits", ChangeFreq: "weekly", Priority: "0.9"},
	}
	if s.cfg.Features.EnableAboutPage {
		urls = append(urls, seo.SitemapURL{Loc: base + "/a-propos", ChangeFreq: "monthly", Priority: "0.5"})
	}

	products, err := s.api.ListProducts(r.Context(), "")
	if err != nil {
		observability.FromContext(r.Context()).Warn("sitemap: list products", zap.Error(err))
	}
	for _, p := range products {
		entry := seo.SitemapURL{
			Loc:        base + "/produits/" + p.ID,
			ChangeFreq: "weekly",
			Priority:   "0.8",
		}
		if !p.CreatedAt.IsZero() && p.CreatedAt.Before(time.Now()) {
			entry.LastMod = p.CreatedAt
		}
		urls = append(urls, entry)
	}

	body, err := seo.Sitemap(urls)
	if err != nil {
		observability.FromContext(r.Context()).Error("sitemap: marshal", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}
