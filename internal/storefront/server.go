// Package storefront serves the public shop: catalog, cart, checkout and the
// Instagram hand-off that finalizes payment.
package storefront

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/cms"
	"ateliernour.dz/shop/internal/config"
	"ateliernour.dz/shop/internal/format"
	"ateliernour.dz/shop/internal/i18n"
	custommw "ateliernour.dz/shop/internal/middleware"
	"ateliernour.dz/shop/internal/observability"
)

// Server wires the storefront handlers to their dependencies.
type Server struct {
	cfg     config.Config
	logger  *zap.Logger
	api     api.Service
	bundle  *i18n.Bundle
	content *cms.Store

	devMode   bool
	tmplCache *template.Template
}

// New constructs the storefront server. In production mode templates are
// parsed once up front.
func New(cfg config.Config, logger *zap.Logger, svc api.Service, bundle *i18n.Bundle, content *cms.Store) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		api:     svc,
		bundle:  bundle,
		content: content,
		devMode: cfg.Server.DevMode,
	}
	if !s.devMode {
		tc, err := s.parseTemplates()
		if err != nil {
			return nil, err
		}
		s.tmplCache = tc
	}
	return s, nil
}

// Router assembles the middleware stack and routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(observability.RecoveryMiddleware(s.logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check
	r.Get("/robots.txt", s.handleRobots)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static assets under /assets/
	assets := http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Join(s.cfg.Site.PublicDir, "assets"))))
	r.Handle("/assets/*", assets)

	r.Group(func(r chi.Router) {
		r.Use(custommw.Session)
		r.Use(custommw.Locale(s.bundle))
		r.Use(custommw.VaryLocale)
		r.Use(custommw.HTMX)
		r.Use(custommw.CSRF)

		r.Get("/", s.handleHome)
		r.Get("/produits", s.handleProducts)
		r.Get("/produits/{id}", s.handleProduct)

		r.Get("/panier", s.handleCart)
		r.Post("/panier/ajouter", s.handleCartAdd)
		r.Post("/panier/quantite", s.handleCartQuantity)
		r.Post("/panier/supprimer", s.handleCartRemove)

		r.Get("/commande", s.handleCheckoutForm)
		r.Post("/commande", s.handleCheckoutReview)
		r.Post("/commande/direct", s.handleDirectOrder)
		r.Post("/commande/confirmer", s.handleCheckoutConfirm)
		r.Get("/confirmation", s.handleConfirmation)
		r.Post("/commande/dm-envoye", s.handleDMSent)
		r.Post("/commande/ignorer", s.handleDismissBanner)

		if s.cfg.Features.EnableAboutPage {
			r.Get("/a-propos", s.handleAbout)
		}
	})

	return r
}

func (s *Server) parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"t":     s.bundle.T,
		"money": format.FmtDZD,
		"date":  format.FmtDate,
		"dir":   i18n.Dir,
		"now":   time.Now,
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	dir := filepath.Join(s.cfg.Site.TemplatesDir, "storefront")
	var files []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", dir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// render executes the named page template. Pages pull in the shared header
// and footer partials themselves. In dev mode, templates are reparsed on
// each request.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t := s.tmplCache
	if s.devMode {
		tc, err := s.parseTemplates()
		if err != nil {
			observability.FromContext(r.Context()).Error("template parse", zap.Error(err))
			http.Error(w, "template parse error", http.StatusInternalServerError)
			return
		}
		t = tc
	}
	if t == nil {
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		observability.FromContext(r.Context()).Error("template exec", zap.String("template", name), zap.Error(err))
	}
}
