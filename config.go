package ogcard

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/ogcard/og"
	"github.com/eringen/ogcard/upload"
)

// Renderer backends.
const (
	RendererSoftware = "software"
	RendererChrome   = "chrome"
)

// Storage backends.
const (
	StorageDisk = "disk"
	StorageHTTP = "http"
)

// SiteConfig holds all configuration for an ogcard service.
type SiteConfig struct {
	Name string `yaml:"name"` // Service name (default "ogcard")
	URL  string `yaml:"url"`  // Public base URL (default "http://localhost:3000")

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/ogcard.db")

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	DefaultAuthor string `yaml:"default_author"` // Author shown when a request has none (default "@author")

	LogLevel       string `yaml:"log_level"`       // debug, info, warn, error (default "info")
	LogDevelopment bool   `yaml:"log_development"` // Console encoder instead of JSON

	Renderer          string        `yaml:"renderer"`            // software or chrome (default "software")
	FontDir           string        `yaml:"font_dir"`            // Extra fallback fonts, e.g. an emoji font
	RenderTimeout     time.Duration `yaml:"render_timeout"`      // Per-render limit (default 30s)
	ImageFetchTimeout time.Duration `yaml:"image_fetch_timeout"` // Resource icon download limit (default 10s)

	Storage         string        `yaml:"storage"`          // disk or http (default "disk")
	UploadDir       string        `yaml:"upload_dir"`       // Disk storage directory (default "data/og")
	StorageEndpoint string        `yaml:"storage_endpoint"` // HTTP storage upload URL
	StorageToken    string        `yaml:"storage_token"`    // HTTP storage bearer token
	UploadTimeout   time.Duration `yaml:"upload_timeout"`   // HTTP storage request limit (default 30s)

	RenderCacheTTL time.Duration `yaml:"render_cache_ttl"` // Rendered PNG cache TTL (unset means 1h, negative disables)
	RedisAddr      string        `yaml:"redis_addr"`       // Use Redis for the render cache when set
	RedisPassword  string        `yaml:"redis_password"`
	RedisDB        int           `yaml:"redis_db"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "ogcard"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/ogcard.db"
	}
	if c.DefaultAuthor == "" {
		c.DefaultAuthor = og.DefaultAuthorName
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Renderer == "" {
		c.Renderer = RendererSoftware
	}
	if c.RenderTimeout == 0 {
		c.RenderTimeout = 30 * time.Second
	}
	if c.ImageFetchTimeout == 0 {
		c.ImageFetchTimeout = 10 * time.Second
	}
	if c.Storage == "" {
		c.Storage = StorageDisk
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/og"
	}
	if c.UploadTimeout == 0 {
		c.UploadTimeout = 30 * time.Second
	}
	if c.RenderCacheTTL == 0 {
		c.RenderCacheTTL = time.Hour
	}
}

func (c *SiteConfig) validate() error {
	if c.AdminPassword == "" {
		return errors.New("ogcard: AdminPassword is required")
	}
	if c.SessionSecret == "" {
		return errors.New("ogcard: SessionSecret is required")
	}
	switch c.Renderer {
	case RendererSoftware, RendererChrome:
	default:
		return fmt.Errorf("ogcard: unknown renderer %q", c.Renderer)
	}
	switch c.Storage {
	case StorageDisk:
	case StorageHTTP:
		if c.StorageEndpoint == "" {
			return errors.New("ogcard: StorageEndpoint is required for http storage")
		}
	default:
		return fmt.Errorf("ogcard: unknown storage %q", c.Storage)
	}
	return nil
}

// LoadConfig reads an optional YAML file and then applies OGCARD_*
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	c.Name = EnvOr("OGCARD_NAME", c.Name)
	c.URL = EnvOr("OGCARD_URL", c.URL)
	c.Addr = EnvOr("OGCARD_ADDR", c.Addr)
	c.DatabasePath = EnvOr("OGCARD_DATABASE_PATH", c.DatabasePath)
	c.AdminPassword = EnvOr("OGCARD_ADMIN_PASSWORD", c.AdminPassword)
	c.SessionSecret = EnvOr("OGCARD_SESSION_SECRET", c.SessionSecret)
	c.DefaultAuthor = EnvOr("OGCARD_DEFAULT_AUTHOR", c.DefaultAuthor)
	c.LogLevel = EnvOr("OGCARD_LOG_LEVEL", c.LogLevel)
	c.Renderer = EnvOr("OGCARD_RENDERER", c.Renderer)
	c.FontDir = EnvOr("OGCARD_FONT_DIR", c.FontDir)
	c.Storage = EnvOr("OGCARD_STORAGE", c.Storage)
	c.UploadDir = EnvOr("OGCARD_UPLOAD_DIR", c.UploadDir)
	c.StorageEndpoint = EnvOr("OGCARD_STORAGE_ENDPOINT", c.StorageEndpoint)
	c.StorageToken = EnvOr("OGCARD_STORAGE_TOKEN", c.StorageToken)
	c.RedisAddr = EnvOr("OGCARD_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = EnvOr("OGCARD_REDIS_PASSWORD", c.RedisPassword)

	var err error
	if c.CookieSecure, err = envBool("OGCARD_COOKIE_SECURE", c.CookieSecure); err != nil {
		return err
	}
	if c.LogDevelopment, err = envBool("OGCARD_LOG_DEVELOPMENT", c.LogDevelopment); err != nil {
		return err
	}
	if c.RenderTimeout, err = envDuration("OGCARD_RENDER_TIMEOUT", c.RenderTimeout); err != nil {
		return err
	}
	if c.ImageFetchTimeout, err = envDuration("OGCARD_IMAGE_FETCH_TIMEOUT", c.ImageFetchTimeout); err != nil {
		return err
	}
	if c.UploadTimeout, err = envDuration("OGCARD_UPLOAD_TIMEOUT", c.UploadTimeout); err != nil {
		return err
	}
	if c.RenderCacheTTL, err = envDuration("OGCARD_RENDER_CACHE_TTL", c.RenderCacheTTL); err != nil {
		return err
	}
	if v := os.Getenv("OGCARD_REDIS_DB"); v != "" {
		if c.RedisDB, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("OGCARD_REDIS_DB: %w", err)
		}
	}
	return nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the logger built from LogLevel.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithRasterizer replaces the backend selected by Renderer. backend labels
// its metrics.
func WithRasterizer(r og.Rasterizer, backend string) Option {
	return func(a *App) {
		a.Rasterizer = r
		a.backend = backend
	}
}

// WithStorage replaces the blob storage selected by Storage.
func WithStorage(s upload.Storage) Option {
	return func(a *App) {
		a.Storage = s
	}
}

// WithRenderCache replaces the memory or Redis render cache.
func WithRenderCache(c RenderCache) Option {
	return func(a *App) {
		a.Cache = c
	}
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}
