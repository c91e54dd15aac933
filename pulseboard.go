// Package pulseboard serves a live analytics dashboard built with Go, Echo,
// and templ. It records page views and API calls into SQLite, exposes the
// aggregated summary as JSON, and renders it as metric cards that update in
// the browser over a websocket.
package pulseboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/pulseboard/analytics"
	"github.com/eringen/pulseboard/client"
	"github.com/eringen/pulseboard/dashboard"
)

// App is the central pulseboard application. It wires together the store,
// the tracking middleware, the summary API and the dashboard view.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   *analytics.Store
	Service *analytics.Service
	View    *dashboard.View

	Registry *prometheus.Registry

	tracker      *analytics.Tracker
	hub          *Hub
	fetcher      dashboard.Fetcher
	formatter    dashboard.Formatter
	customRoutes []func(*App)

	cancel      context.CancelFunc
	hubDone     chan struct{}
	stopCleanup func()
	logCloser   io.Closer
	ready       bool
}

// New creates a new pulseboard App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Registry: prometheus.NewRegistry(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store, mounts the dashboard view and registers middleware
// and routes. The view and the live hub stay active until ctx is done or
// Close is called. Start calls Setup when it has not run yet.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("pulseboard: SessionSecret is required")
	}

	formatter, err := dashboard.ParseFormatter(a.Config.Locale)
	if err != nil {
		return fmt.Errorf("pulseboard: %w", err)
	}
	a.formatter = formatter

	logCloser, err := configureLogger(a.Echo, a.Config)
	if err != nil {
		return fmt.Errorf("pulseboard: configure logging: %w", err)
	}
	a.logCloser = logCloser

	// Initialize store
	store, err := analytics.NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pulseboard: init store: %w", err)
	}
	a.Store = store

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Service = analytics.NewService(store,
		analytics.WithVisitEndpoint(a.Config.VisitEndpoint),
		analytics.WithSummaryTTL(a.Config.SummaryCacheTTL),
		analytics.WithMetrics(analytics.NewMetrics(a.Registry)),
	)
	a.tracker = a.newTracker()
	a.stopCleanup = store.StartCleanupScheduler(a.Config.RetentionDays, a.Config.CleanupInterval, a.Echo.Logger)

	ctx, a.cancel = context.WithCancel(ctx)

	// Live updates
	a.hub = NewHub(func() []byte { return a.fragment(a.View.State()) }, a.Echo.Logger)
	a.hubDone = make(chan struct{})
	go func() {
		defer close(a.hubDone)
		a.hub.Run(ctx)
	}()
	a.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pulseboard",
		Name:      "live_clients",
		Help:      "Browsers connected for live dashboard updates.",
	}, func() float64 { return float64(a.hub.Count()) }))

	// Dashboard view, mounted once for the lifetime of the process.
	a.View = dashboard.New(a.source(), dashboard.WithTimeout(a.Config.FetchTimeout))
	a.View.Subscribe(func(s dashboard.State) {
		a.hub.Broadcast(a.fragment(s))
	})
	a.View.Mount(ctx)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

// source picks what the dashboard reads: an explicit fetcher, a remote
// service, or this process's own store.
func (a *App) source() dashboard.Fetcher {
	switch {
	case a.fetcher != nil:
		return a.fetcher
	case a.Config.SourceURL != "":
		return client.New(a.Config.SourceURL, client.WithTimeout(a.Config.FetchTimeout))
	default:
		return a.Service
	}
}

// Start sets the app up and serves HTTP until ctx is done, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Echo.Logger.Infof("listening on %s", a.Config.Addr)
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("pulseboard: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/public/*", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))))

	e.GET("/", a.handleDashboard)
	e.GET("/fragments/analytics", a.handleFragment)
	e.POST("/fragments/analytics/refresh", a.handleRefresh)
	e.GET("/ws", a.hub.ServeWS)
	e.GET("/healthz", a.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	analytics.NewHandler(a.Service).RegisterRoutes(e)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.View != nil {
		a.View.Unmount()
	}
	if a.cancel != nil {
		a.cancel()
		<-a.hubDone
	}
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.tracker != nil {
		a.tracker.Close()
	}
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return err
}
