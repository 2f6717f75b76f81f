package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/cms"
	"ateliernour.dz/shop/internal/config"
	"ateliernour.dz/shop/internal/i18n"
	custommw "ateliernour.dz/shop/internal/middleware"
	"ateliernour.dz/shop/internal/observability"
	"ateliernour.dz/shop/internal/storefront"
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

	custommw.Configure(cfg.Session.HashKey, cfg.Session.Secure)

	bundle, err := i18n.Load(cfg.Site.LocalesDir, cfg.Site.DefaultLocale, []string{"fr", "en", "ar"})
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}

	svc := buildAPIService(cfg, logger)
	content := cms.NewStore(cfg.Site.ContentDir, cfg.Site.DefaultLocale, "en")

	srv, err := storefront.New(cfg, logger, svc, bundle, content)
	if err != nil {
		logger.Fatal("init storefront", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
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

	logger.Info("storefront listening",
		zap.String("addr", httpSrv.Addr),
		zap.Bool("dev", cfg.Server.DevMode),
		zap.Bool("fake_backend", cfg.API.BaseURL == ""),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

// buildAPIService selects the HTTP client for the configured backend, or the
// in-memory fake when no base URL is set.
func buildAPIService(cfg config.Config, logger *zap.Logger) api.Service {
	if cfg.API.BaseURL == "" {
		logger.Info("SHOP_API_BASE_URL not set; using in-memory catalog")
		return api.NewFake()
	}
	client, err := api.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	if err != nil {
		logger.Fatal("init api client", zap.Error(err))
	}
	return client
}
