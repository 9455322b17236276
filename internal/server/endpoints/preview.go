package endpoints

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/docpeek/docpeek/internal/api"
	"github.com/docpeek/docpeek/internal/docstore"
	"github.com/docpeek/docpeek/internal/svcctx"
)

// PageImageEndpoint handles GET /api/documents/{id}/pages/{page}/image.
type PageImageEndpoint struct{}

var _ api.Endpoint = (*PageImageEndpoint)(nil)

func (e *PageImageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/pages/{page}/image", e.handler
}

func (e *PageImageEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a page preview image
//	@Description	Render a page (0-indexed) to PNG at the configured DPI, optionally downscaled to a display width
//	@Tags			preview
//	@Produce		image/png
//	@Param			id		path	string	true	"Document ID"
//	@Param			page	path	int		true	"Page index (0-based)"
//	@Param			width	query	int		false	"Display width in pixels"
//	@Success		200		{file}	binary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/documents/{id}/pages/{page}/image [get]
func (e *PageImageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pageIndex, err := strconv.Atoi(r.PathValue("page"))
	if err != nil || pageIndex < 0 {
		writeError(w, http.StatusBadRequest, "page must be a non-negative integer")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	renderer := svcctx.RendererFrom(r.Context())
	if store == nil || homeDir == nil || renderer == nil {
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

	if pageIndex >= doc.PageCount {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("page %d out of range (document has %d pages)", pageIndex, doc.PageCount))
		return
	}

	previewPath := homeDir.PreviewPath(doc.ID, pageIndex, renderer.DPI())
	if _, err := os.Stat(previewPath); err != nil {
		pdfPath := homeDir.DocumentPath(doc.ID, doc.OriginalName)
		if err := renderer.RenderPage(r.Context(), pdfPath, pageIndex, previewPath); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("preview generation failed: %v", err))
			return
		}
	}

	if widthStr := r.URL.Query().Get("width"); widthStr != "" {
		width, err := strconv.Atoi(widthStr)
		if err != nil || width <= 0 {
			writeError(w, http.StatusBadRequest, "width must be a positive integer")
			return
		}
		data, err := os.ReadFile(previewPath)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		scaled, err := resizePNG(data, width)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("resize failed: %v", err))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(scaled)
		return
	}

	file, err := os.Open(previewPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	http.ServeContent(w, r, fmt.Sprintf("%s_p%d.png", doc.ID, pageIndex), info.ModTime(), file)
}

func (e *PageImageEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// resizePNG scales a PNG to the given display width, preserving aspect
// ratio. The same displayWidth/width factor applies to overlay boxes,
// so the raster and the boxes stay aligned.
func resizePNG(data []byte, width int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == width {
		return data, nil
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
