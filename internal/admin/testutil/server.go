package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/admin/httpserver"
	appsession "ateliernour.dz/shop/internal/admin/session"
	"ateliernour.dz/shop/internal/api"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAPI overrides the backend service used by the admin server.
func WithAPI(svc api.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.API = svc
	}
}

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// NewServer constructs an httptest server running the back-office stack with
// sensible defaults: an in-memory fake backend and a throwaway session key.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := appsession.NewManager(appsession.Config{
		HashKey: []byte("test-hash-key-0123456789abcdefgh"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cfg := httpserver.Config{
		BasePath:     "/admin",
		TemplatesDir: "../../../templates",
		PublicDir:    "../../../public",
		API:          api.NewFake(),
		Sessions:     sessions,
		Logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("httpserver.New: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

// NewClient returns an http client with a cookie jar, so sessions survive
// across requests the way a browser would keep them.
func NewClient(t testing.TB) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}
