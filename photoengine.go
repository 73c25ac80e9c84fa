// Package photoengine is a photography portfolio engine built with Go, Echo,
// and templ. It stores galleries, blog posts, and pages as flat JSON
// documents on disk, serves the public site, and exposes a development-only
// admin API for managing content and uploaded media.
//
// Users provide their own templ templates via the ViewFuncs struct;
// photoengine handles the handler logic, middleware, and persistence.
package photoengine

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/photoengine/analytics"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home           func(categories []string, heroes []GalleryImage, featured []BlogPost, siteURL string) templ.Component
	Gallery        func(category string, images []GalleryImage) templ.Component
	Blog           func(posts []BlogPost, activeCategory string, categories []string) templ.Component
	Post           func(post BlogPost, body string, jsonLD string) templ.Component
	Page           func(key string, page Page) templ.Component
	AdminDashboard func(csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central photoengine application. It wires together the store,
// handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Views  ViewFuncs
	Log    *zap.Logger

	writeLimiter   *WriteLimiter
	analyticsStore *analytics.Store
	stopCleanup    func()
	customRoutes   []func(*App)
}

// New creates a new photoengine App with the given configuration and view
// functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the store, logging, middleware, routes, and starts the
// server. It blocks until the server stops.
func (a *App) Start() error {
	if a.Log == nil {
		logger, err := newLogger(a.Config.Development)
		if err != nil {
			return fmt.Errorf("photoengine: init logger: %w", err)
		}
		a.Log = logger
	}

	store, err := NewStore(a.Config.DataDir, a.Config.PublicDir)
	if err != nil {
		return fmt.Errorf("photoengine: init store: %w", err)
	}
	a.Store = store

	if a.writeLimiter == nil {
		a.writeLimiter = NewWriteLimiter(60, time.Minute)
	}

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("photoengine: init analytics: %w", err)
		}
		a.analyticsStore = store
		a.stopCleanup = store.StartCleanupScheduler(a.Config.AnalyticsRetentionDays, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.Log.Info("starting server",
		zap.String("addr", a.Config.Addr),
		zap.Bool("development", a.Config.Development))

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded framework assets served under /public/, falling through to
	// the user's static dir for everything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/dashboard.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.Config.PublicDir)
	e.Static("/uploads", a.Config.PublicDir+"/uploads")
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public pages
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/portfolio/:category/", a.handleGallery)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/category/:category/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/about/", a.handlePage("about"))
	e.GET("/contact/", a.handlePage("contact"))

	// Admin surface, available only in development.
	admin := e.Group("/admin", a.requireDevelopment)
	admin.GET("/", a.handleAdmin)

	api := admin.Group("/api", a.limitWrites)
	api.GET("/gallery/", a.handleGalleryList)
	api.POST("/gallery/", a.handleGalleryCreate)
	api.PUT("/gallery/:id/", a.handleGalleryUpdate)
	api.DELETE("/gallery/:id/", a.handleGalleryDelete)
	api.PUT("/gallery/:id/hero/", a.handleGalleryHero)
	api.PUT("/gallery/reorder/", a.handleGalleryReorder)
	api.POST("/uploads/", a.handleUpload)

	api.GET("/posts/", a.handlePostList)
	api.GET("/posts/:slug/", a.handlePostGet)
	api.POST("/posts/", a.handlePostCreate)
	api.PUT("/posts/:slug/", a.handlePostUpdate)
	api.DELETE("/posts/:slug/", a.handlePostDelete)

	api.GET("/pages/:key/", a.handlePageGet)
	api.PUT("/pages/:key/", a.handlePageSave)
	api.GET("/theme/", a.handleThemeGet)
	api.PUT("/theme/", a.handleThemeSave)
	api.GET("/items/:doc/", a.handleItemsGet)
	api.PUT("/items/:doc/", a.handleItemsSave)

	api.GET("/media/", a.handleMediaList)
	api.POST("/media/detach/", a.handleMediaDetach)
	api.GET("/integrity/", a.handleIntegrity)
	api.GET("/backup/", a.handleBackup)

	if a.Config.AnalyticsEnabled && a.analyticsStore != nil {
		handler := analytics.NewHandler(a.analyticsStore)
		handler.RegisterRoutes(e.Group(""), admin)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return nil
}
