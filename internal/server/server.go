// Package server wires the docpeek HTTP server: storage, extraction
// backends, page rendering, and the endpoint routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/docpeek/docpeek/internal/api"
	"github.com/docpeek/docpeek/internal/config"
	"github.com/docpeek/docpeek/internal/docstore"
	"github.com/docpeek/docpeek/internal/extract"
	"github.com/docpeek/docpeek/internal/home"
	"github.com/docpeek/docpeek/internal/render"
	"github.com/docpeek/docpeek/internal/server/endpoints"
	"github.com/docpeek/docpeek/internal/svcctx"
)

// Server is the main docpeek HTTP server. It owns the document store,
// the backend registry, and the page renderer, and enriches every
// request context with them.
type Server struct {
	httpServer *http.Server
	store      *docstore.Store
	registry   *extract.Registry
	runner     *extract.Runner
	renderer   *render.Renderer
	configMgr  *config.Manager
	homeDir    *home.Dir
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the docpeek data directory (uploads, previews, database)
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}

	dpi := config.DefaultPreviewDPI
	var languages []string
	if cfg.ConfigManager != nil {
		ex := cfg.ConfigManager.Get().Extraction
		if ex.PreviewDPI > 0 {
			dpi = ex.PreviewDPI
		}
		languages = ex.Languages
	}
	renderer := render.New(dpi)

	registry := extract.NewRegistry()
	registry.SetLogger(cfg.Logger)

	s := &Server{
		registry:  registry,
		renderer:  renderer,
		configMgr: cfg.ConfigManager,
		homeDir:   cfg.Home,
		logger:    cfg.Logger,
	}

	s.reloadBackends(languages)

	// Re-register backends when the config file changes, so a backend can
	// be disabled without a restart.
	if cfg.ConfigManager != nil {
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			s.reloadBackends(c.Extraction.Languages)
			cfg.Logger.Info("backend registry reloaded from config")
		})
	}

	s.runner = extract.NewRunner(registry, cfg.Logger)

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(corsMiddleware(mux)),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// reloadBackends syncs the backend registry with the current config.
func (s *Server) reloadBackends(languages []string) {
	enabled := func(name string) bool {
		if s.configMgr == nil {
			return true
		}
		return s.configMgr.Get().BackendEnabled(name)
	}

	if enabled(extract.PlumberName) {
		s.registry.Register(extract.NewPlumberBackend())
	} else {
		s.registry.Unregister(extract.PlumberName)
	}

	if enabled(extract.TesseractName) {
		s.registry.Register(extract.NewTesseractBackend(s.renderer, languages))
	} else {
		s.registry.Unregister(extract.TesseractName)
	}
}

// Start starts the server. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.homeDir.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to create data directories: %w", err)
	}

	store, err := docstore.Open(s.homeDir.DatabasePath())
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to open document store: %w", err)
	}
	s.store = store
	s.logger.Info("document store ready", "path", s.homeDir.DatabasePath())

	if err := s.renderer.Available(); err != nil {
		s.logger.Warn("page rendering unavailable, previews and OCR will fail", "error", err)
	}

	// Create services struct for context enrichment
	s.services = &svcctx.Services{
		Store:     s.store,
		Registry:  s.registry,
		Runner:    s.runner,
		Renderer:  s.renderer,
		ConfigMgr: s.configMgr,
		Logger:    s.logger,
		Home:      s.homeDir,
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server and closes
// the store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("document store close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Store returns the document store. Returns nil before Start.
func (s *Server) Store() *docstore.Store {
	return s.store
}

// Registry returns the backend registry.
func (s *Server) Registry() *extract.Registry {
	return s.registry
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the store is open.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

// corsMiddleware allows browser frontends on other origins to call the
// API, including the preview images drawn onto canvases.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
