// Package ogcard serves Open Graph preview cards over HTTP. It renders cards
// on demand at /og and, for admins, renders and uploads them to blob storage
// while keeping a record of every upload in SQLite.
package ogcard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/ogcard/metrics"
	"github.com/eringen/ogcard/og"
	"github.com/eringen/ogcard/raster"
	"github.com/eringen/ogcard/upload"
)

const (
	loginAttempts    = 5
	loginWindow      = time.Minute
	memoryCacheLimit = 256
	filesRoute       = "/og/files"
)

// App is the central ogcard application. It wires together the store,
// render cache, rasterizer, storage, handlers and middleware.
type App struct {
	Config     SiteConfig
	Echo       *echo.Echo
	Store      *Store
	Cache      RenderCache
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Rasterizer og.Rasterizer
	Storage    upload.Storage
	Uploader   *upload.Uploader

	backend      string
	registry     *prometheus.Registry
	loginLimiter *AttemptLimiter
	renders      singleflight.Group
	customRoutes []func(*App)
	closers      []func() error
	now          func() time.Time
}

// New creates an App with the given configuration. Nothing is opened until
// Init or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		now:    time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store and backends and registers middleware and routes.
func (a *App) Init() error {
	if err := a.Config.validate(); err != nil {
		return err
	}
	if a.Logger == nil {
		logger, err := NewLogger(a.Config.LogLevel, a.Config.LogDevelopment)
		if err != nil {
			return fmt.Errorf("ogcard: %w", err)
		}
		a.Logger = logger
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	a.Metrics = metrics.New(a.registry)

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("ogcard: init store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	if err := a.initRasterizer(); err != nil {
		return fmt.Errorf("ogcard: init renderer: %w", err)
	}
	a.initStorage()
	if err := a.initCache(); err != nil {
		return fmt.Errorf("ogcard: init render cache: %w", err)
	}

	a.Uploader = upload.New(a.Rasterizer, a.Storage,
		upload.WithLogger(a.Logger.Named("upload")),
		upload.WithClock(a.now),
		upload.WithObserver(a.Metrics.ObserveUpload),
	)

	a.loginLimiter = NewAttemptLimiter(loginAttempts, loginWindow)
	a.closers = append(a.closers, func() error {
		a.loginLimiter.Close()
		return nil
	})

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.Logger.Info("ogcard initialised",
		zap.String("renderer", a.backend),
		zap.String("storage", a.Config.Storage),
		zap.Duration("render_cache_ttl", a.Config.RenderCacheTTL),
	)
	return nil
}

func (a *App) initRasterizer() error {
	r := a.Rasterizer
	if r == nil {
		built, closeFn, err := NewRasterizer(a.Config)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, closeFn)
		r = built
		a.backend = a.Config.Renderer
	}
	if a.backend == "" {
		a.backend = "custom"
	}
	a.Rasterizer = &instrumentedRasterizer{
		next:    r,
		backend: a.backend,
		timeout: a.Config.RenderTimeout,
		metrics: a.Metrics,
	}
	return nil
}

// NewRasterizer builds the backend named by cfg.Renderer. The returned func
// releases it.
func NewRasterizer(cfg SiteConfig) (og.Rasterizer, func() error, error) {
	cfg.setDefaults()
	if cfg.Renderer == RendererChrome {
		c, err := raster.NewChrome(cfg.RenderTimeout)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}
	fonts, err := raster.DefaultFonts()
	if err != nil {
		return nil, nil, err
	}
	if cfg.FontDir != "" {
		extra, err := raster.LoadFontDir(cfg.FontDir)
		if err != nil {
			return nil, nil, err
		}
		fonts = fonts.WithFallbacks(extra...)
	}
	s, err := raster.NewSoftware(
		raster.WithFonts(fonts),
		raster.WithFetcher(raster.NewHTTPFetcher(cfg.ImageFetchTimeout)),
	)
	if err != nil {
		return nil, nil, err
	}
	return s, func() error { return nil }, nil
}

func (a *App) initStorage() {
	if a.Storage == nil {
		a.Storage = NewStorage(a.Config)
	}
}

// NewStorage builds the blob storage named by cfg.Storage. Disk storage is
// served by the app under /og/files/.
func NewStorage(cfg SiteConfig) upload.Storage {
	cfg.setDefaults()
	if cfg.Storage == StorageHTTP {
		return upload.NewHTTPStorage(cfg.StorageEndpoint, cfg.StorageToken, cfg.UploadTimeout)
	}
	return &upload.DiskStorage{
		Dir:     cfg.UploadDir,
		BaseURL: BuildURL(cfg.URL, filesRoute),
	}
}

func (a *App) initCache() error {
	if a.Cache != nil {
		return nil
	}
	if a.Config.RedisAddr == "" {
		a.Cache = NewMemoryCache(a.Config.RenderCacheTTL, memoryCacheLimit)
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("ping redis %s: %w", a.Config.RedisAddr, err)
	}
	c := NewRedisCache(client, a.Config.RenderCacheTTL)
	a.closers = append(a.closers, c.Close)
	a.Cache = c
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/og", a.handleOG)
	e.GET("/og/preview", a.handlePreview)
	e.GET("/og/tree", a.handleTree)
	if disk, ok := a.Storage.(*upload.DiskStorage); ok {
		e.Static(filesRoute, disk.Dir)
	}
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/og/", a.handleImageList, requireAdmin)
	e.POST("/admin/og/", a.handleImageUpload, requireAdmin)
	e.DELETE("/admin/og/:id/", a.handleImageDelete, requireAdmin)
}

// Close releases the store, backends and background goroutines, in reverse
// order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
