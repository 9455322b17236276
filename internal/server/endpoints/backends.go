package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/docpeek/docpeek/internal/api"
	"github.com/docpeek/docpeek/internal/svcctx"
)

// BackendsResponse lists the registered extraction backends.
type BackendsResponse struct {
	Backends []string `json:"backends"`
}

// BackendsEndpoint handles GET /api/backends.
type BackendsEndpoint struct{}

var _ api.Endpoint = (*BackendsEndpoint)(nil)

func (e *BackendsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/backends", e.handler
}

func (e *BackendsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List available extraction backends
//	@Tags			extraction
//	@Produce		json
//	@Success		200	{object}	BackendsResponse
//	@Router			/api/backends [get]
func (e *BackendsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := BackendsResponse{Backends: []string{}}
	if registry := svcctx.RegistryFrom(r.Context()); registry != nil {
		resp.Backends = registry.List()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *BackendsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available extraction backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp BackendsResponse
			if err := client.Get(cmd.Context(), "/api/backends", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
