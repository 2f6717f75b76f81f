package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(nil), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.DevMode {
		t.Error("dev mode should default to off")
	}
	if cfg.API.BaseURL != "" {
		t.Errorf("expected empty API base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != defaultAPITimeout {
		t.Errorf("unexpected API timeout: %s", cfg.API.Timeout)
	}
	if cfg.Admin.BasePath != "/admin" {
		t.Errorf("unexpected admin base path: %s", cfg.Admin.BasePath)
	}
	if cfg.Admin.Port != "8081" {
		t.Errorf("unexpected admin port: %s", cfg.Admin.Port)
	}
	if cfg.Site.DefaultLocale != "fr" {
		t.Errorf("unexpected default locale: %s", cfg.Site.DefaultLocale)
	}
	if cfg.Site.InstagramHandle != defaultInstagram {
		t.Errorf("unexpected instagram handle: %s", cfg.Site.InstagramHandle)
	}
	if !cfg.Features.EnableAboutPage {
		t.Error("about page feature should default to on")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"SHOP_SERVER_PORT":         "9090",
		"SHOP_SERVER_READ_TIMEOUT": "20s",
		"SHOP_DEV":                 "true",
		"SHOP_API_BASE_URL":        "https://api.ateliernour.dz/",
		"SHOP_API_TIMEOUT":         "3s",
		"SHOP_SESSION_HASH_KEY":    "hash-key",
		"SHOP_SESSION_SECURE":      "false",
		"SHOP_ADMIN_BASE_PATH":     "/backoffice",
		"SHOP_DEFAULT_LOCALE":      "en",
		"SHOP_FEATURE_ABOUT":       "off",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if !cfg.Server.DevMode {
		t.Error("expected dev mode on")
	}
	if cfg.API.BaseURL != "https://api.ateliernour.dz" {
		t.Errorf("trailing slash should be stripped, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("unexpected API timeout: %s", cfg.API.Timeout)
	}
	if cfg.Session.HashKey != "hash-key" {
		t.Errorf("unexpected hash key: %s", cfg.Session.HashKey)
	}
	if cfg.Session.Secure {
		t.Error("expected insecure session cookies")
	}
	if cfg.Admin.BasePath != "/backoffice" {
		t.Errorf("unexpected admin base path: %s", cfg.Admin.BasePath)
	}
	if cfg.Site.DefaultLocale != "en" {
		t.Errorf("unexpected locale: %s", cfg.Site.DefaultLocale)
	}
	if cfg.Features.EnableAboutPage {
		t.Error("about page feature should be off")
	}
}

func TestLoadPortFallback(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"PORT": "7070"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected PORT fallback 7070, got %s", cfg.Server.Port)
	}
}

func TestLoadDotEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	contents := "SHOP_SERVER_PORT=6000\nSHOP_DEFAULT_LOCALE=\"ar\"\n# comment\nexport SHOP_INSTAGRAM_HANDLE=atelier.test\n"
	if err := os.WriteFile(envFile, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	// Explicit map wins over the dotenv file.
	cfg, err := Load(
		WithEnvMap(map[string]string{"SHOP_SERVER_PORT": "6001"}),
		WithoutSystemEnv(),
		WithEnvFile(envFile),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "6001" {
		t.Errorf("env map should win over dotenv, got %s", cfg.Server.Port)
	}
	if cfg.Site.DefaultLocale != "ar" {
		t.Errorf("expected dotenv locale ar, got %s", cfg.Site.DefaultLocale)
	}
	if cfg.Site.InstagramHandle != "atelier.test" {
		t.Errorf("expected export-prefixed value, got %s", cfg.Site.InstagramHandle)
	}
}

func TestLoadValidation(t *testing.T) {
	env := map[string]string{
		"SHOP_ADMIN_BASE_PATH": "backoffice",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := verr.Fields()
	if len(fields) != 1 || fields[0] != "Admin.BasePath" {
		t.Errorf("unexpected fields: %v", fields)
	}
}
