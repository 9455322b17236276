// Package render rasterizes PDF pages to PNG using pdftoppm
// (poppler-utils) and reports page counts via pdfcpu.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Renderer renders PDF pages at a fixed DPI. The DPI determines the
// pixel coordinate system of everything derived from the raster, so one
// Renderer is shared by previews and OCR.
type Renderer struct {
	dpi int
}

// New creates a renderer. A non-positive dpi falls back to 150.
func New(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = 150
	}
	return &Renderer{dpi: dpi}
}

// DPI returns the raster resolution.
func (r *Renderer) DPI() int {
	return r.dpi
}

// Available reports whether pdftoppm is installed on this host.
func (r *Renderer) Available() error {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return fmt.Errorf("pdftoppm not found in PATH: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF. It fails on files
// pdfcpu cannot parse, which doubles as upload validation.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// RenderPage renders one page (0-indexed) to a PNG at outPath.
func (r *Renderer) RenderPage(ctx context.Context, pdfPath string, pageIndex int, outPath string) error {
	data, err := r.RenderPageBytes(ctx, pdfPath, pageIndex)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	// Write via temp file so a crashed render never leaves a truncated
	// PNG in the preview cache.
	tmp := outPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	return os.Rename(tmp, outPath)
}

// RenderPageBytes renders one page (0-indexed) and returns the PNG bytes.
func (r *Renderer) RenderPageBytes(ctx context.Context, pdfPath string, pageIndex int) ([]byte, error) {
	if pageIndex < 0 {
		return nil, fmt.Errorf("page index must not be negative")
	}

	tmpDir, err := os.MkdirTemp("", "docpeek-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// pdftoppm pages are 1-indexed; -singlefile drops the page suffix.
	pageStr := fmt.Sprintf("%d", pageIndex+1)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", r.dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	srcPath := outputPrefix + ".png"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}
