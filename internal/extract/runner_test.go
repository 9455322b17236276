package extract

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeBackend returns a canned result or error.
type fakeBackend struct {
	name   string
	result *BackendResult
	err    error
	calls  atomic.Int32
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Extract(ctx context.Context, pdfPath string) (*BackendResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRunner(backends ...Backend) *Runner {
	reg := NewRegistry()
	for _, b := range backends {
		reg.Register(b)
	}
	return NewRunner(reg, nil)
}

func TestRunner_Run(t *testing.T) {
	ok := &fakeBackend{
		name:   "pdfplumber",
		result: &BackendResult{Pages: []Page{{Index: 0, Dims: Points(612, 792), Text: "Hello World"}}},
	}

	env := newTestRunner(ok).Run(context.Background(), "hello.pdf", "/tmp/hello.pdf", []string{"pdfplumber"})

	if env.Filename != "hello.pdf" {
		t.Errorf("filename = %q, want hello.pdf", env.Filename)
	}
	if env.Errors != nil {
		t.Errorf("errors = %v, want nil", env.Errors)
	}
	result, ok2 := env.Models["pdfplumber"]
	if !ok2 {
		t.Fatalf("models missing pdfplumber entry: %v", env.Models)
	}
	if len(result.Pages) != 1 || result.Pages[0].Text != "Hello World" {
		t.Errorf("unexpected result: %+v", result)
	}
	if !strings.Contains(env.SummaryMarkdown, "## pdfplumber - page 0") {
		t.Errorf("summary missing backend heading: %q", env.SummaryMarkdown)
	}
}

func TestRunner_Run_UnknownBackendDoesNotFailSiblings(t *testing.T) {
	ok := &fakeBackend{
		name:   "pdfplumber",
		result: &BackendResult{Pages: []Page{{Index: 0, Dims: Points(612, 792), Text: "hi"}}},
	}

	env := newTestRunner(ok).Run(context.Background(), "a.pdf", "/tmp/a.pdf", []string{"pdfplumber", "nonexistent"})

	if _, found := env.Models["pdfplumber"]; !found {
		t.Error("known backend missing from models")
	}
	if _, found := env.Models["nonexistent"]; found {
		t.Error("unknown backend appeared in models")
	}
	msg, found := env.Errors["nonexistent"]
	if !found {
		t.Fatalf("unknown backend missing from errors: %v", env.Errors)
	}
	if !strings.Contains(msg, "unknown backend") {
		t.Errorf("error message = %q, want mention of unknown backend", msg)
	}
}

func TestRunner_Run_FailingBackendDoesNotFailSiblings(t *testing.T) {
	ok := &fakeBackend{
		name:   "pdfplumber",
		result: &BackendResult{Pages: []Page{{Index: 0, Dims: Points(612, 792), Text: "hi"}}},
	}
	failing := &fakeBackend{
		name: "tesseract",
		err:  &ProcessingError{Backend: "tesseract", Err: errors.New("boom")},
	}

	env := newTestRunner(ok, failing).Run(context.Background(), "a.pdf", "/tmp/a.pdf",
		[]string{"pdfplumber", "tesseract"})

	if _, found := env.Models["pdfplumber"]; !found {
		t.Error("healthy backend missing from models")
	}
	if _, found := env.Models["tesseract"]; found {
		t.Error("failed backend appeared in models")
	}
	if msg := env.Errors["tesseract"]; !strings.Contains(msg, "boom") {
		t.Errorf("error entry = %q, want the backend failure", msg)
	}
	// Summary covers successful models only.
	if strings.Contains(env.SummaryMarkdown, "tesseract") {
		t.Errorf("summary mentions failed backend: %q", env.SummaryMarkdown)
	}
}

func TestRunner_Run_DeduplicatesRequests(t *testing.T) {
	ok := &fakeBackend{
		name:   "pdfplumber",
		result: &BackendResult{},
	}

	newTestRunner(ok).Run(context.Background(), "a.pdf", "/tmp/a.pdf",
		[]string{"pdfplumber", "pdfplumber", "pdfplumber"})

	if got := ok.calls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}
}

func TestRunner_Run_NoBackends(t *testing.T) {
	env := newTestRunner().Run(context.Background(), "a.pdf", "/tmp/a.pdf", nil)
	if len(env.Models) != 0 {
		t.Errorf("models = %v, want empty", env.Models)
	}
	if env.SummaryMarkdown != "" {
		t.Errorf("summary = %q, want empty", env.SummaryMarkdown)
	}
}
