package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Backend is one extraction engine. Implementations must be safe for
// concurrent use: the runner may extract several documents at once.
type Backend interface {
	// Name returns the backend identifier (e.g. "pdfplumber").
	Name() string

	// Extract produces a BackendResult for the PDF at pdfPath using
	// this backend alone.
	Extract(ctx context.Context, pdfPath string) (*BackendResult, error)
}

// Registry holds extraction backends keyed by name. It supports
// config-driven reload and provides thread-safe access.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	logger   *slog.Logger
}

// NewRegistry creates a new empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds a backend by its own name.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[b.Name()] = b
	if r.logger != nil {
		r.logger.Info("registered extraction backend", "name", b.Name())
	}
}

// Unregister removes a backend by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.backends, name)
	if r.logger != nil {
		r.logger.Info("unregistered extraction backend", "name", name)
	}
}

// Get returns a backend by name.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return b, nil
}

// List returns all registered backend names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
