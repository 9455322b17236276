package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docpeek/docpeek/internal/api"
	"github.com/docpeek/docpeek/internal/docstore"
	"github.com/docpeek/docpeek/internal/render"
	"github.com/docpeek/docpeek/internal/svcctx"
)

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	PageCount    int    `json:"page_count"`
	SizeBytes    int64  `json:"size_bytes"`
}

// UploadEndpoint handles POST /api/documents with a multipart file upload.
type UploadEndpoint struct{}

var _ api.Endpoint = (*UploadEndpoint)(nil)

func (e *UploadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

func (e *UploadEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Upload a PDF document
//	@Description	Upload a PDF for later extraction and preview
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"PDF file"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/documents [post]
func (e *UploadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(100) << 20
	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		if mb := cm.Get().Extraction.MaxUploadMB; mb > 0 {
			maxBytes = mb << 20
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", header.Filename))
		return
	}

	homeDir := svcctx.HomeFrom(r.Context())
	store := svcctx.StoreFrom(r.Context())
	if homeDir == nil || store == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	// A fresh id per upload keeps concurrent uploads of the same file
	// from writing conflicting artifacts.
	id := uuid.New().String()
	destPath := homeDir.DocumentPath(id, header.Filename)

	dst, err := os.Create(destPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create file: %v", err))
		return
	}
	size, err := io.Copy(dst, file)
	dst.Close()
	if err != nil {
		os.Remove(destPath)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}

	pageCount, err := render.PageCount(destPath)
	if err != nil {
		os.Remove(destPath)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid PDF: %v", err))
		return
	}

	doc := docstore.Document{
		ID:           id,
		OriginalName: header.Filename,
		PageCount:    pageCount,
		SizeBytes:    size,
		UploadedAt:   time.Now().UTC(),
	}
	if err := store.CreateDocument(r.Context(), doc); err != nil {
		os.Remove(destPath)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record document: %v", err))
		return
	}

	if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
		logger.Info("document uploaded",
			"id", id, "name", header.Filename, "pages", pageCount, "bytes", size)
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		ID:           id,
		OriginalName: header.Filename,
		PageCount:    pageCount,
		SizeBytes:    size,
	})
}

func (e *UploadEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp UploadResponse
			if err := client.UploadFile(cmd.Context(), "/api/documents", "file", args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
