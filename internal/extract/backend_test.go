package extract

import (
	"errors"
	"testing"
)

func TestRegistry_RegisterGet(t *testing.T) {
	reg := NewRegistry()
	b := &fakeBackend{name: "pdfplumber"}
	reg.Register(b)

	got, err := reg.Get("pdfplumber")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != b {
		t.Error("Get returned a different backend")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nope")
	if err == nil {
		t.Fatal("Get on empty registry succeeded")
	}
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("error = %v, want ErrUnknownBackend", err)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeBackend{name: "tesseract"})
	reg.Unregister("tesseract")

	if _, err := reg.Get("tesseract"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("backend still resolvable after Unregister: %v", err)
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeBackend{name: "tesseract"})
	reg.Register(&fakeBackend{name: "pdfplumber"})

	got := reg.List()
	want := []string{"pdfplumber", "tesseract"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestProcessingError_Unwrap(t *testing.T) {
	inner := errors.New("parse failed")
	err := &ProcessingError{Backend: "pdfplumber", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("ProcessingError does not unwrap to inner error")
	}
	if msg := err.Error(); msg != "pdfplumber: processing failed: parse failed" {
		t.Errorf("Error() = %q", msg)
	}
}
