// Package endpoints defines the HTTP API surface. Each endpoint
// implements api.Endpoint so the same definition serves the HTTP mux
// and the CLI command tree.
package endpoints

import (
	"github.com/docpeek/docpeek/internal/api"
)

// All returns every endpoint the server exposes.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},
		&UploadEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&DocumentFileEndpoint{},
		&ExtractEndpoint{},
		&PageImageEndpoint{},
		&ListResultsEndpoint{},
		&GetResultEndpoint{},
		&BackendsEndpoint{},
	}
}
