package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"
)

// PlumberName is the digital-text backend identifier. The name follows
// the Python tool whose output shape this backend mirrors, so existing
// overlay clients keep working unchanged.
const PlumberName = "pdfplumber"

// PlumberBackend extracts laid-out words and tables from digitally
// created PDFs. Coordinates are points at native page resolution with a
// top-left origin.
type PlumberBackend struct{}

// NewPlumberBackend creates the digital-text backend.
func NewPlumberBackend() *PlumberBackend {
	return &PlumberBackend{}
}

// Name returns "pdfplumber".
func (b *PlumberBackend) Name() string { return PlumberName }

// Extract parses the PDF and produces one Page per document page, with
// word boxes in point units and any detected tables as row/cell grids.
func (b *PlumberBackend) Extract(ctx context.Context, pdfPath string) (*BackendResult, error) {
	r, err := reader.Open(pdfPath)
	if err != nil {
		return nil, &ProcessingError{Backend: PlumberName, Err: fmt.Errorf("open PDF: %w", err)}
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, &ProcessingError{Backend: PlumberName, Err: fmt.Errorf("page count: %w", err)}
	}

	result := &BackendResult{Pages: make([]Page, 0, count)}
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := r.GetPage(i)
		if err != nil {
			return nil, &ProcessingError{Backend: PlumberName, Err: fmt.Errorf("page %d: %w", i, err)}
		}

		width, height, err := pageSize(page.MediaBox())
		if err != nil {
			return nil, &ProcessingError{Backend: PlumberName, Err: fmt.Errorf("page %d: %w", i, err)}
		}

		fragments, err := r.ExtractTextFragments(page)
		if err != nil {
			return nil, &ProcessingError{Backend: PlumberName, Err: fmt.Errorf("page %d: extract text: %w", i, err)}
		}

		result.Pages = append(result.Pages, pageFromFragments(i, width, height, fragments))
	}

	return result, nil
}

// pageSize derives width/height in points from a MediaBox [x1 y1 x2 y2].
func pageSize(box []float64, err error) (float64, float64, error) {
	if err != nil {
		return 0, 0, fmt.Errorf("media box: %w", err)
	}
	if len(box) != 4 {
		return 0, 0, fmt.Errorf("media box has %d entries, want 4", len(box))
	}
	width := box[2] - box[0]
	height := box[3] - box[1]
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("media box %v has non-positive dimensions", box)
	}
	return width, height, nil
}

// pageFromFragments converts extracted text fragments into a Page.
// Fragment coordinates use the PDF convention (origin bottom-left);
// word boxes are flipped to a top-left origin so they overlay directly
// onto rendered rasters.
func pageFromFragments(index int, width, height float64, fragments []text.TextFragment) Page {
	page := Page{
		Index: index,
		Dims:  Points(width, height),
	}

	var parts []string
	for _, f := range fragments {
		t := strings.TrimSpace(f.Text)
		if t == "" {
			continue
		}
		h := f.Height
		if h <= 0 {
			h = f.FontSize
		}
		box := BBox{
			X0: f.X,
			Y0: height - f.Y - h,
			X1: f.X + f.Width,
			Y1: height - f.Y,
		}
		page.Words = append(page.Words, Word{Text: t, BBox: clampBox(box, width, height)})
		parts = append(parts, t)
	}
	page.Text = strings.Join(parts, " ")
	page.Tables = detectTables(width, height, fragments)
	return page
}

// clampBox constrains a box to the page rectangle. Glyphs protruding
// past the media box (common with decorative fonts) would otherwise
// violate the page-bounds contract consumers scale against.
func clampBox(b BBox, width, height float64) BBox {
	b.X0 = clamp(b.X0, 0, width)
	b.X1 = clamp(b.X1, 0, width)
	b.Y0 = clamp(b.Y0, 0, height)
	b.Y1 = clamp(b.Y1, 0, height)
	if b.X1 < b.X0 {
		b.X0, b.X1 = b.X1, b.X0
	}
	if b.Y1 < b.Y0 {
		b.Y0, b.Y1 = b.Y1, b.Y0
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// detectTables runs geometric table detection over the page fragments.
// Detection failures degrade to "no tables": a page without tables is a
// normal outcome, not an extraction error.
func detectTables(width, height float64, fragments []text.TextFragment) []Table {
	if len(fragments) == 0 {
		return nil
	}

	mp := model.NewPage(width, height)
	mp.RawText = make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		mp.RawText[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}

	detector := tables.NewGeometricDetector()
	detected, err := detector.Detect(mp)
	if err != nil {
		return nil
	}

	out := make([]Table, 0, len(detected))
	for _, t := range detected {
		table := Table{Rows: make([][]string, 0, len(t.Rows))}
		for _, row := range t.Rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				cells = append(cells, strings.TrimSpace(cell.Text))
			}
			table.Rows = append(table.Rows, cells)
		}
		out = append(out, table)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
