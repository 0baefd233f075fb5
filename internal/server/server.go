// Package server assembles the finlens web application.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finlens/internal/analysis"
	"finlens/internal/config"
	"finlens/internal/handlers/api"
	"finlens/internal/handlers/backup"
	"finlens/internal/handlers/dashboard"
	"finlens/internal/handlers/explorer"
	"finlens/internal/handlers/upload"
	"finlens/internal/logging"
	"finlens/internal/services/statements"
	"finlens/internal/services/storage"
	"finlens/internal/templates"
	"finlens/web"
)

// App holds the wired dependencies of a running server
type App struct {
	Config   *config.Config
	Store    *storage.Store
	Service  *statements.Service
	Renderer *templates.Renderer

	static fs.FS
	logger *log.Logger
}

// SetupDependencies builds storage, analysis and templates from cfg and
// hands them to the handler packages.
func SetupDependencies(cfg *config.Config) (*App, error) {
	logger := logging.Component("server")

	store, err := storage.New(cfg.UploadsDirectory)
	if err != nil {
		return nil, err
	}

	rules, err := analysis.LoadRules(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		logger.Info("loaded custom category rules", "file", cfg.CategoriesFile, "categories", len(rules))
	}

	service := statements.New(store, analysis.New(analysis.NewCategorizer(rules...)), statements.Options{
		MaxBytes: cfg.MaxUploadBytes,
		TTL:      cfg.AnalysisTTL,
	})

	renderer, err := loadTemplates(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Store:    store,
		Service:  service,
		Renderer: renderer,
		static:   staticFiles(cfg, logger),
		logger:   logger,
	}

	upload.Initialize(cfg, service, renderer)
	dashboard.Initialize(service, renderer)
	explorer.Initialize(service, renderer)
	api.Initialize(service)
	backup.Initialize(store)

	return app, nil
}

// loadTemplates prefers the configured directory and falls back to the embedded copy
func loadTemplates(cfg *config.Config, logger *log.Logger) (*templates.Renderer, error) {
	if dirExists(cfg.TemplatesDirectory) {
		r, err := templates.New(cfg.TemplatesDirectory, cfg.Debug)
		if err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", cfg.TemplatesDirectory, err)
		}
		return r, nil
	}
	logger.Debug("using embedded templates", "missing", cfg.TemplatesDirectory)
	return templates.NewFS(web.Templates(), false)
}

func staticFiles(cfg *config.Config, logger *log.Logger) fs.FS {
	if dirExists(cfg.StaticDirectory) {
		return os.DirFS(cfg.StaticDirectory)
	}
	logger.Debug("using embedded static files", "missing", cfg.StaticDirectory)
	return web.Static()
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// SetupRouter creates the HTTP router with middleware and every route
func (a *App) SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(a.static))))

	upload.RegisterRoutes(r)
	dashboard.RegisterRoutes(r)
	explorer.RegisterRoutes(r)
	api.RegisterRoutes(r)
	backup.RegisterRoutes(r)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.ListenAddr,
		Handler:           a.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go a.Service.RunJanitor(janitorCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.Config.ListenAddr, "encrypted", a.Store.IsEncrypted())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
