package extract

import (
	"context"
	"log/slog"
	"sync"
)

// Runner executes extraction requests against the backend registry.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

// NewRunner creates a runner over the given registry.
func NewRunner(registry *Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{registry: registry, logger: logger}
}

// Run executes each requested backend against the document and merges
// the results into an Envelope. Backends run independently and in
// parallel: a failing or unknown backend becomes an Errors entry and
// never aborts its siblings. The envelope's summary is derived from the
// merged models mapping.
func (r *Runner) Run(ctx context.Context, filename, pdfPath string, backendNames []string) *Envelope {
	env := &Envelope{
		Filename: filename,
		Models:   make(map[string]*BackendResult),
		Errors:   make(map[string]string),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, name := range dedupe(backendNames) {
		backend, err := r.registry.Get(name)
		if err != nil {
			mu.Lock()
			env.Errors[name] = err.Error()
			mu.Unlock()
			r.logger.Warn("requested backend not registered", "backend", name)
			continue
		}

		wg.Add(1)
		go func(name string, backend Backend) {
			defer wg.Done()

			result, err := backend.Extract(ctx, pdfPath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				env.Errors[name] = err.Error()
				r.logger.Error("backend extraction failed",
					"backend", name, "file", filename, "error", err)
				return
			}
			env.Models[name] = result
			r.logger.Info("backend extraction complete",
				"backend", name, "file", filename, "pages", len(result.Pages))
		}(name, backend)
	}

	wg.Wait()

	if len(env.Errors) == 0 {
		env.Errors = nil
	}
	env.SummaryMarkdown = Summary(env.Models)
	return env
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
