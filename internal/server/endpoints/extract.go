package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docpeek/docpeek/internal/api"
	"github.com/docpeek/docpeek/internal/docstore"
	"github.com/docpeek/docpeek/internal/extract"
	"github.com/docpeek/docpeek/internal/svcctx"
)

// ExtractRequest selects which backends to run.
type ExtractRequest struct {
	Backends []string `json:"backends"`
}

// ExtractResponse is the extraction envelope plus the id under which it
// was stored for later retrieval.
type ExtractResponse struct {
	*extract.Envelope
	ResultID string `json:"result_id,omitempty"`
}

// ExtractEndpoint handles POST /api/documents/{id}/extract.
type ExtractEndpoint struct{}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Run extraction backends on a document
//	@Description	Runs each requested backend independently and merges the results
//	@Tags			extraction
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			request	body		ExtractRequest	true	"Backends to run"
//	@Success		200		{object}	ExtractResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/documents/{id}/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Backends) == 0 {
		req.Backends = []string{extract.PlumberName}
	}

	store := svcctx.StoreFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	runner := svcctx.RunnerFrom(r.Context())
	if store == nil || homeDir == nil || runner == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	doc, err := store.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown document: %s", id))
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	pdfPath := homeDir.DocumentPath(doc.ID, doc.OriginalName)
	envelope := runner.Run(r.Context(), doc.OriginalName, pdfPath, req.Backends)

	resp := ExtractResponse{Envelope: envelope}

	// Persist the envelope; a storage failure is logged but never costs
	// the caller their extraction output.
	if blob, err := json.Marshal(envelope); err == nil {
		result := docstore.Result{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Backends:   req.Backends,
			Envelope:   blob,
			CreatedAt:  time.Now().UTC(),
		}
		if err := store.SaveResult(r.Context(), result); err == nil {
			resp.ResultID = result.ID
		} else if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Error("failed to persist extraction result", "document_id", doc.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var backends []string
	cmd := &cobra.Command{
		Use:   "extract <document-id>",
		Short: "Run extraction backends on an uploaded document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			path := fmt.Sprintf("/api/documents/%s/extract", args[0])
			if err := client.Post(cmd.Context(), path, ExtractRequest{Backends: backends}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringSliceVarP(&backends, "backends", "b",
		[]string{extract.PlumberName}, "Backends to run")
	return cmd
}
