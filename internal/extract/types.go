// Package extract defines the extraction data model and runs extraction
// backends against uploaded PDF documents.
package extract

import (
	"encoding/json"
	"fmt"
)

// BBox is a bounding box (x0, y0, x1, y1) with a top-left origin.
// It marshals as a 4-element JSON array, the wire shape overlay
// clients consume.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// Valid reports whether the box is well-formed (x0 <= x1 and y0 <= y1).
func (b BBox) Valid() bool {
	return b.X0 <= b.X1 && b.Y0 <= b.Y1
}

// Scale returns the box with all four coordinates multiplied by factor.
func (b BBox) Scale(factor float64) BBox {
	return BBox{
		X0: b.X0 * factor,
		Y0: b.Y0 * factor,
		X1: b.X1 * factor,
		Y1: b.Y1 * factor,
	}
}

// MarshalJSON encodes the box as [x0, y0, x1, y1].
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X0, b.Y0, b.X1, b.Y1})
}

// UnmarshalJSON decodes a [x0, y0, x1, y1] array.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var coords [4]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("bbox must be a 4-element array: %w", err)
	}
	b.X0, b.Y0, b.X1, b.Y1 = coords[0], coords[1], coords[2], coords[3]
	return nil
}

// Unit identifies the coordinate system of a page's dimensions and boxes.
type Unit int

const (
	// UnitPoints means PDF native resolution (1/72 inch).
	UnitPoints Unit = iota
	// UnitPixels means raster resolution at the DPI the page was rendered at.
	UnitPixels
)

// String returns the unit name.
func (u Unit) String() string {
	if u == UnitPixels {
		return "pixels"
	}
	return "points"
}

// Dimensions are page dimensions tagged with their unit. Every box on a
// page is expressed in the same unit as its dimensions, so overlay
// scaling is always displayWidth / Width regardless of backend.
type Dimensions struct {
	Unit   Unit
	Width  float64
	Height float64
}

// Points returns point-unit dimensions.
func Points(width, height float64) Dimensions {
	return Dimensions{Unit: UnitPoints, Width: width, Height: height}
}

// Pixels returns pixel-unit dimensions.
func Pixels(width, height float64) Dimensions {
	return Dimensions{Unit: UnitPixels, Width: width, Height: height}
}

// Word is one recognized word with its bounding box. Confidence is set
// only by backends that produce one (OCR), on a 0-100 scale.
type Word struct {
	Text       string   `json:"text"`
	BBox       BBox     `json:"bbox"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Table is a detected table as a row/cell grid.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Page is the normalized output of one backend for one page.
type Page struct {
	Index  int
	Dims   Dimensions
	Text   string
	Words  []Word
	Tables []Table
}

// ScaleFactor returns the uniform factor mapping page coordinates onto a
// raster displayed at displayWidth.
func (p *Page) ScaleFactor(displayWidth float64) float64 {
	if p.Dims.Width <= 0 {
		return 0
	}
	return displayWidth / p.Dims.Width
}

// ScaledWords returns the page's words with boxes scaled for display at
// displayWidth. The factor applies uniformly to all four coordinates.
func (p *Page) ScaledWords(displayWidth float64) []Word {
	factor := p.ScaleFactor(displayWidth)
	out := make([]Word, len(p.Words))
	for i, w := range p.Words {
		out[i] = Word{Text: w.Text, BBox: w.BBox.Scale(factor), Confidence: w.Confidence}
	}
	return out
}

// pageJSON is the wire shape of Page. Exactly one dimension pair is
// populated, declaring the unit system of the page's boxes.
type pageJSON struct {
	Index     int      `json:"page"`
	WidthPts  *float64 `json:"width_pts,omitempty"`
	HeightPts *float64 `json:"height_pts,omitempty"`
	WidthPx   *float64 `json:"width_px,omitempty"`
	HeightPx  *float64 `json:"height_px,omitempty"`
	Text      string   `json:"text"`
	Words     []Word   `json:"words"`
	Tables    []Table  `json:"tables"`
}

// MarshalJSON emits width_pts/height_pts or width_px/height_px depending
// on the page's unit.
func (p Page) MarshalJSON() ([]byte, error) {
	words := p.Words
	if words == nil {
		words = []Word{}
	}
	tables := p.Tables
	if tables == nil {
		tables = []Table{}
	}
	out := pageJSON{Index: p.Index, Text: p.Text, Words: words, Tables: tables}
	w, h := p.Dims.Width, p.Dims.Height
	switch p.Dims.Unit {
	case UnitPixels:
		out.WidthPx, out.HeightPx = &w, &h
	default:
		out.WidthPts, out.HeightPts = &w, &h
	}
	return json.Marshal(out)
}

// UnmarshalJSON detects which dimension pair is present. When both
// appear, pixels win: overlays target rasters, so the pixel pair is the
// one consumers scale against.
func (p *Page) UnmarshalJSON(data []byte) error {
	var in pageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.Index = in.Index
	p.Text = in.Text
	p.Words = in.Words
	p.Tables = in.Tables
	switch {
	case in.WidthPx != nil && in.HeightPx != nil:
		p.Dims = Pixels(*in.WidthPx, *in.HeightPx)
	case in.WidthPts != nil && in.HeightPts != nil:
		p.Dims = Points(*in.WidthPts, *in.HeightPts)
	default:
		return fmt.Errorf("page %d: missing dimensions", in.Index)
	}
	return nil
}

// BackendResult is the normalized output of one backend for one document.
type BackendResult struct {
	Pages []Page `json:"pages"`
}

// Envelope is the merged multi-backend response for one extraction
// request. Backends that failed appear in Errors instead of Models.
type Envelope struct {
	Filename        string                    `json:"filename"`
	Models          map[string]*BackendResult `json:"models"`
	Errors          map[string]string         `json:"errors,omitempty"`
	SummaryMarkdown string                    `json:"summary_markdown"`
}
