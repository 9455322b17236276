package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/docpeek/docpeek/internal/render"
)

// TesseractName is the OCR backend identifier.
const TesseractName = "tesseract"

// TesseractBackend rasterizes pages and runs Tesseract OCR on them.
// Coordinates are pixels at the renderer's DPI with a top-left origin;
// each word carries a 0-100 confidence.
type TesseractBackend struct {
	renderer  *render.Renderer
	languages []string

	// clientFactory is a seam so recognition can be stubbed in tests.
	clientFactory func() *gosseract.Client
}

// NewTesseractBackend creates the OCR backend. languages are tesseract
// language codes; empty means the engine default (eng).
func NewTesseractBackend(renderer *render.Renderer, languages []string) *TesseractBackend {
	return &TesseractBackend{
		renderer:      renderer,
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Name returns "tesseract".
func (b *TesseractBackend) Name() string { return TesseractName }

// Extract renders each page to a PNG and runs word-level OCR on it.
func (b *TesseractBackend) Extract(ctx context.Context, pdfPath string) (*BackendResult, error) {
	if err := b.renderer.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	count, err := render.PageCount(pdfPath)
	if err != nil {
		return nil, &ProcessingError{Backend: TesseractName, Err: err}
	}

	result := &BackendResult{Pages: make([]Page, 0, count)}
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := b.extractPage(ctx, pdfPath, i)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page)
	}

	return result, nil
}

func (b *TesseractBackend) extractPage(ctx context.Context, pdfPath string, pageIndex int) (Page, error) {
	imgData, err := b.renderer.RenderPageBytes(ctx, pdfPath, pageIndex)
	if err != nil {
		return Page{}, &ProcessingError{Backend: TesseractName,
			Err: fmt.Errorf("render page %d: %w", pageIndex, err)}
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(imgData))
	if err != nil {
		return Page{}, &ProcessingError{Backend: TesseractName,
			Err: fmt.Errorf("decode page %d raster: %w", pageIndex, err)}
	}

	client := b.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(imgData); err != nil {
		return Page{}, &ProcessingError{Backend: TesseractName,
			Err: fmt.Errorf("page %d: set image: %w", pageIndex, err)}
	}
	if len(b.languages) > 0 {
		if err := client.SetLanguage(b.languages...); err != nil {
			return Page{}, fmt.Errorf("%w: set languages %v: %v", ErrBackendUnavailable, b.languages, err)
		}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Page{}, &ProcessingError{Backend: TesseractName,
			Err: fmt.Errorf("page %d: recognize: %w", pageIndex, err)}
	}

	words := wordsFromBoxes(boxes)
	return Page{
		Index: pageIndex,
		Dims:  Pixels(float64(cfg.Width), float64(cfg.Height)),
		Text:  joinWords(words),
		Words: words,
	}, nil
}

// wordsFromBoxes converts tesseract word boxes to Words. Empty
// recognitions are dropped so an empty page is represented by an empty
// word list, and negative confidences (tesseract's "no estimate"
// sentinel) are carried as absent.
func wordsFromBoxes(boxes []gosseract.BoundingBox) []Word {
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		w := Word{
			Text: text,
			BBox: BBox{
				X0: float64(box.Box.Min.X),
				Y0: float64(box.Box.Min.Y),
				X1: float64(box.Box.Max.X),
				Y1: float64(box.Box.Max.Y),
			},
		}
		if box.Confidence >= 0 {
			conf := box.Confidence
			w.Confidence = &conf
		}
		words = append(words, w)
	}
	return words
}

func joinWords(words []Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}
