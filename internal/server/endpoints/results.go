package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/docpeek/docpeek/internal/api"
	"github.com/docpeek/docpeek/internal/docstore"
	"github.com/docpeek/docpeek/internal/extract"
	"github.com/docpeek/docpeek/internal/svcctx"
)

// ListResultsResponse is the response for listing stored results.
type ListResultsResponse struct {
	Results []docstore.Result `json:"results"`
	Total   int               `json:"total"`
}

// ListResultsEndpoint handles GET /api/documents/{id}/results.
type ListResultsEndpoint struct{}

var _ api.Endpoint = (*ListResultsEndpoint)(nil)

func (e *ListResultsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/results", e.handler
}

func (e *ListResultsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List stored extraction results for a document
//	@Tags			results
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	ListResultsResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/documents/{id}/results [get]
func (e *ListResultsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not initialized")
		return
	}

	if _, err := store.GetDocument(r.Context(), id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown document: %s", id))
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	results, err := store.ListResults(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []docstore.Result{}
	}

	writeJSON(w, http.StatusOK, ListResultsResponse{Results: results, Total: len(results)})
}

func (e *ListResultsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "results <document-id>",
		Short: "List stored extraction results for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListResultsResponse
			path := fmt.Sprintf("/api/documents/%s/results", args[0])
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetResultEndpoint handles GET /api/results/{id}. The format query
// parameter selects the representation: json (the stored envelope),
// markdown (the summary alone), or html (the summary rendered).
type GetResultEndpoint struct{}

var _ api.Endpoint = (*GetResultEndpoint)(nil)

func (e *GetResultEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/results/{id}", e.handler
}

func (e *GetResultEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a stored extraction result
//	@Tags			results
//	@Produce		json
//	@Param			id		path	string	true	"Result ID"
//	@Param			format	query	string	false	"json, markdown, or html"	default(json)
//	@Success		200		{object}	extract.Envelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/results/{id} [get]
func (e *GetResultEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not initialized")
		return
	}

	result, err := store.GetResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown result: %s", id))
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(result.Envelope)
	case "markdown", "html":
		var envelope extract.Envelope
		if err := json.Unmarshal(result.Envelope, &envelope); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("stored envelope is corrupt: %v", err))
			return
		}
		if format == "markdown" {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, envelope.SummaryMarkdown)
			return
		}
		var buf bytes.Buffer
		if err := summaryHTML.Convert([]byte(envelope.SummaryMarkdown), &buf); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("markdown rendering failed: %v", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown format %q (want json, markdown, or html)", format))
	}
}

func (e *GetResultEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "result <result-id>",
		Short: "Get a stored extraction result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp extract.Envelope
			if err := client.Get(cmd.Context(), "/api/results/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// summaryHTML renders summary markdown, tables included, for browser
// viewing of stored results.
var summaryHTML = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)
