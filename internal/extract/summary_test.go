package extract

import (
	"strings"
	"testing"
)

func TestSummary_Deterministic(t *testing.T) {
	models := map[string]*BackendResult{
		"tesseract": {Pages: []Page{
			{Index: 0, Dims: Pixels(1000, 1400), Words: []Word{{Text: "Hello"}, {Text: "World"}}},
		}},
		"pdfplumber": {Pages: []Page{
			{Index: 0, Dims: Points(612, 792), Text: "Hello World"},
			{Index: 1, Dims: Points(612, 792), Text: "Page two"},
		}},
	}

	first := Summary(models)
	for i := 0; i < 10; i++ {
		if got := Summary(models); got != first {
			t.Fatalf("Summary is not deterministic:\nfirst: %q\nrun %d: %q", first, i, got)
		}
	}

	// Backends render in sorted name order regardless of map iteration.
	pIdx := strings.Index(first, "## pdfplumber - page 0")
	tIdx := strings.Index(first, "## tesseract - page 0")
	if pIdx < 0 || tIdx < 0 {
		t.Fatalf("missing backend headings in summary:\n%s", first)
	}
	if pIdx > tIdx {
		t.Errorf("backends not in sorted order:\n%s", first)
	}
	if !strings.Contains(first, "## pdfplumber - page 1") {
		t.Errorf("second page heading missing:\n%s", first)
	}
}

func TestSummary_PageText(t *testing.T) {
	t.Run("prefers page text", func(t *testing.T) {
		models := map[string]*BackendResult{
			"pdfplumber": {Pages: []Page{{Index: 0, Dims: Points(1, 1), Text: "from text field", Words: []Word{{Text: "ignored"}}}}},
		}
		got := Summary(models)
		if !strings.Contains(got, "from text field") {
			t.Errorf("summary ignored page text:\n%s", got)
		}
		if strings.Contains(got, "ignored") {
			t.Errorf("summary used words despite text field:\n%s", got)
		}
	})

	t.Run("falls back to words", func(t *testing.T) {
		models := map[string]*BackendResult{
			"tesseract": {Pages: []Page{{Index: 0, Dims: Pixels(1, 1), Words: []Word{{Text: "Hello"}, {Text: "World"}}}}},
		}
		if got := Summary(models); !strings.Contains(got, "Hello World") {
			t.Errorf("summary did not join words:\n%s", got)
		}
	})

	t.Run("empty page", func(t *testing.T) {
		models := map[string]*BackendResult{
			"pdfplumber": {Pages: []Page{{Index: 0, Dims: Points(1, 1)}}},
		}
		if got := Summary(models); !strings.Contains(got, "_no text_") {
			t.Errorf("empty page missing placeholder:\n%s", got)
		}
	})
}

func TestSummary_Tables(t *testing.T) {
	models := map[string]*BackendResult{
		"pdfplumber": {Pages: []Page{{
			Index: 0,
			Dims:  Points(612, 792),
			Text:  "t",
			Tables: []Table{{Rows: [][]string{
				{"Name", "Qty"},
				{"Widget", "3"},
				{"Pipe|Cell", "1"},
			}}},
		}}},
	}

	got := Summary(models)
	if !strings.Contains(got, "| Name | Qty |") {
		t.Errorf("header row missing:\n%s", got)
	}
	if !strings.Contains(got, "| --- | --- |") {
		t.Errorf("separator row missing:\n%s", got)
	}
	if !strings.Contains(got, `| Pipe\|Cell | 1 |`) {
		t.Errorf("pipe not escaped in cell:\n%s", got)
	}
}

func TestSummary_Empty(t *testing.T) {
	if got := Summary(nil); got != "" {
		t.Errorf("Summary(nil) = %q, want empty", got)
	}
	if got := Summary(map[string]*BackendResult{"x": nil}); got != "" {
		t.Errorf("Summary with nil result = %q, want empty", got)
	}
}
