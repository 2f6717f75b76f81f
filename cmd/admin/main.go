package main

import (
	"context"
	"crypto/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/admin/httpserver"
	appsession "ateliernour.dz/shop/internal/admin/session"
	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/config"
	"ateliernour.dz/shop/internal/observability"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	sessions, err := appsession.NewManager(appsession.Config{
		HashKey:      hashKey(cfg.Session.HashKey, logger),
		BlockKey:     blockKey(cfg.Session.BlockKey),
		CookiePath:   cfg.Admin.BasePath,
		CookieSecure: cfg.Session.Secure,
	})
	if err != nil {
		logger.Fatal("init session manager", zap.Error(err))
	}

	srv, err := httpserver.New(httpserver.Config{
		BasePath:     cfg.Admin.BasePath,
		TemplatesDir: cfg.Site.TemplatesDir,
		PublicDir:    cfg.Site.PublicDir,
		DevMode:      cfg.Server.DevMode,
		API:          buildAPIService(cfg, logger),
		Sessions:     sessions,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("init admin server", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Admin.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("back-office listening",
		zap.String("addr", httpSrv.Addr),
		zap.String("base_path", srv.BasePath()),
		zap.Bool("fake_backend", cfg.API.BaseURL == ""),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("back-office stopped")
}

// hashKey returns the configured signing key, or a process-ephemeral one for
// dev runs where SHOP_SESSION_HASH_KEY is not set.
func hashKey(key string, logger *zap.Logger) []byte {
	if key != "" {
		return []byte(key)
	}
	ephemeral := make([]byte, 32)
	if _, err := rand.Read(ephemeral); err != nil {
		logger.Fatal("generate session key", zap.Error(err))
	}
	logger.Warn("using ephemeral session signing key, set SHOP_SESSION_HASH_KEY for production")
	return ephemeral
}

// blockKey enables cookie encryption only when a key is configured.
func blockKey(key string) []byte {
	if key == "" {
		return nil
	}
	return []byte(key)
}

func buildAPIService(cfg config.Config, logger *zap.Logger) api.Service {
	if cfg.API.BaseURL == "" {
		logger.Warn("SHOP_API_BASE_URL is empty, using the in-memory fake backend")
		return api.NewFake()
	}

	client, err := api.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	if err != nil {
		logger.Fatal("init api client", zap.Error(err))
	}
	return client
}
