package httpserver

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	custommw "ateliernour.dz/shop/internal/admin/httpserver/middleware"
	"ateliernour.dz/shop/internal/admin/httpserver/ui"
	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/format"
	"ateliernour.dz/shop/internal/observability"
)

// Config holds runtime options for the back-office HTTP server.
type Config struct {
	BasePath     string
	LoginPath    string
	TemplatesDir string
	PublicDir    string
	DevMode      bool

	API      api.Service
	Sessions custommw.SessionStore
	Logger   *zap.Logger
}

// Server renders the back-office pages over the shop backend API.
type Server struct {
	cfg       Config
	basePath  string
	loginPath string
	api       api.Service
	logger    *zap.Logger
	tmpl      *template.Template
}

// New constructs the server and parses its templates.
func New(cfg Config) (*Server, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("httpserver: api service is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		basePath: normalizeBasePath(cfg.BasePath),
		api:      cfg.API,
		logger:   logger,
	}
	s.loginPath = resolveLoginPath(s.basePath, cfg.LoginPath)

	if !cfg.DevMode {
		tmpl, err := parseTemplates(cfg.TemplatesDir)
		if err != nil {
			return nil, err
		}
		s.tmpl = tmpl
	}
	return s, nil
}

// BasePath returns the normalized mount point of the back-office.
func (s *Server) BasePath() string { return s.basePath }

// LoginPath returns the resolved login route.
func (s *Server) LoginPath() string { return s.loginPath }

// Router assembles the chi router with the full middleware stack.
func (s *Server) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(s.logger))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(s.logger))
	router.Use(chimw.Timeout(60 * time.Second))

	if s.cfg.PublicDir != "" {
		fs := http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.PublicDir)))
		router.Handle("/assets/*", fs)
	}
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handlers := ui.NewHandlers(ui.Dependencies{
		API:      s.api,
		Render:   s.render,
		BasePath: s.basePath,
	})

	router.Route(s.basePath, func(r chi.Router) {
		r.Use(custommw.Session(s.cfg.Sessions))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())

		// login is reachable without auth; csrf still applies
		r.Group(func(r chi.Router) {
			r.Use(custommw.CSRF())
			r.Get("/login", s.handleLoginForm)
			r.Post("/login", s.handleLoginSubmit)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(s.api, s.loginPath))
			r.Use(custommw.CSRF())

			r.Get("/", handlers.Dashboard)
			r.Post("/statistiques/reinitialiser", handlers.DashboardReset)

			r.Get("/produits", handlers.ProductsPage)
			r.Get("/produits/nouveau", handlers.ProductNew)
			r.Post("/produits", handlers.ProductCreate)
			r.Get("/produits/{id}", handlers.ProductEdit)
			r.Post("/produits/{id}", handlers.ProductUpdate)
			r.Post("/produits/{id}/supprimer", handlers.ProductDelete)

			r.Get("/commandes", handlers.OrdersPage)
			r.Get("/commandes/table", handlers.OrdersTable)
			r.Post("/commandes/{id}/statut", handlers.OrderStatus)
			r.Post("/commandes/{id}/supprimer", handlers.OrderDelete)

			r.Get("/supplements", handlers.SupplementsPage)
			r.Post("/supplements", handlers.SupplementCreate)
			r.Post("/supplements/{id}", handlers.SupplementUpdate)
			r.Post("/supplements/{id}/supprimer", handlers.SupplementDelete)

			r.Get("/parametres", handlers.SettingsPage)
			r.Post("/parametres", s.handleCredentialsUpdate)

			r.Post("/logout", s.handleLogout)
		})
	})

	if s.basePath != "/" {
		router.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, s.basePath, http.StatusFound)
		})
	}

	return router
}

func parseTemplates(dir string) (*template.Template, error) {
	root := template.New("admin").Funcs(template.FuncMap{
		"money": format.FmtDZD,
		"date": func(t time.Time) string {
			return format.FmtDate(t, "fr")
		},
		"join": strings.Join,
		"has": func(list []string, value string) bool {
			for _, item := range list {
				if item == value {
					return true
				}
			}
			return false
		},
	})
	pattern := filepath.Join(dir, "admin", "*.tmpl")
	tmpl, err := root.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("parse admin templates: %w", err)
	}
	return tmpl, nil
}

// render executes the named page template. In dev mode templates are reparsed
// on every request.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, status int, data *ui.PageData) {
	tmpl := s.tmpl
	if tmpl == nil || s.cfg.DevMode {
		parsed, err := parseTemplates(s.cfg.TemplatesDir)
		if err != nil {
			observability.FromContext(r.Context()).Error("parse templates", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		tmpl = parsed
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		observability.FromContext(r.Context()).Error("render template",
			zap.String("template", name), zap.Error(err))
	}
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}
