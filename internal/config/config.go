package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultAPITimeout   = 10 * time.Second
	defaultBasePath     = "/admin"
	defaultLocale       = "fr"
	defaultInstagram    = "ateliernour.dz"
	defaultSiteURL      = "https://ateliernour.dz"
)

// Config captures runtime configuration for both binaries, organised by concern.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Session  SessionConfig
	Admin    AdminConfig
	Site     SiteConfig
	Features FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	DevMode      bool
}

// APIConfig points at the catalogue/order backend. An empty BaseURL switches
// the binaries onto the in-memory fake.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds cookie signing material for the storefront session.
type SessionConfig struct {
	HashKey  string
	BlockKey string
	Secure   bool
}

// AdminConfig configures the back-office binary.
type AdminConfig struct {
	Port     string
	BasePath string
}

// SiteConfig carries storefront presentation settings.
type SiteConfig struct {
	BaseURL         string
	DefaultLocale   string
	InstagramHandle string
	TemplatesDir    string
	PublicDir       string
	ContentDir      string
	LocalesDir      string
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	EnableAboutPage bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values
// in the map take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults,
// .env overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run style port fallback.
	port := stringWithDefault(lookup, "SHOP_SERVER_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, "SHOP_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SHOP_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SHOP_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			DevMode:      boolWithDefault(lookup, "SHOP_DEV", false),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "SHOP_API_BASE_URL", ""), "/"),
			Timeout: durationWithDefault(lookup, "SHOP_API_TIMEOUT", defaultAPITimeout),
		},
		Session: SessionConfig{
			HashKey:  stringWithDefault(lookup, "SHOP_SESSION_HASH_KEY", ""),
			BlockKey: stringWithDefault(lookup, "SHOP_SESSION_BLOCK_KEY", ""),
			Secure:   boolWithDefault(lookup, "SHOP_SESSION_SECURE", true),
		},
		Admin: AdminConfig{
			Port:     stringWithDefault(lookup, "SHOP_ADMIN_PORT", "8081"),
			BasePath: stringWithDefault(lookup, "SHOP_ADMIN_BASE_PATH", defaultBasePath),
		},
		Site: SiteConfig{
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, "SHOP_SITE_BASE_URL", defaultSiteURL), "/"),
			DefaultLocale:   stringWithDefault(lookup, "SHOP_DEFAULT_LOCALE", defaultLocale),
			InstagramHandle: stringWithDefault(lookup, "SHOP_INSTAGRAM_HANDLE", defaultInstagram),
			TemplatesDir:    stringWithDefault(lookup, "SHOP_TEMPLATES_DIR", "templates"),
			PublicDir:       stringWithDefault(lookup, "SHOP_PUBLIC_DIR", "public"),
			ContentDir:      stringWithDefault(lookup, "SHOP_CONTENT_DIR", "content"),
			LocalesDir:      stringWithDefault(lookup, "SHOP_LOCALES_DIR", "locales"),
		},
		Features: FeatureFlags{
			EnableAboutPage: boolWithDefault(lookup, "SHOP_FEATURE_ABOUT", true),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.API.Timeout <= 0 {
		missing = append(missing, "API.Timeout")
	}
	if !strings.HasPrefix(cfg.Admin.BasePath, "/") {
		missing = append(missing, "Admin.BasePath")
	}
	if cfg.Site.DefaultLocale == "" {
		missing = append(missing, "Site.DefaultLocale")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
