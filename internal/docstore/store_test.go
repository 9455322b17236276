package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_DocumentRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := Document{
		ID:           "doc-1",
		OriginalName: "scan.pdf",
		PageCount:    3,
		SizeBytes:    1024,
		UploadedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	got, err := s.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.OriginalName != doc.OriginalName || got.PageCount != doc.PageCount || got.SizeBytes != doc.SizeBytes {
		t.Errorf("got %+v, want %+v", got, doc)
	}
	if !got.UploadedAt.Equal(doc.UploadedAt) {
		t.Errorf("uploaded_at = %v, want %v", got.UploadedAt, doc.UploadedAt)
	}
}

func TestStore_GetDocument_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetDocument(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetDocument on empty store succeeded")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListDocuments_MostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		doc := Document{
			ID:           id,
			OriginalName: id + ".pdf",
			PageCount:    1,
			UploadedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.CreateDocument(ctx, doc); err != nil {
			t.Fatalf("CreateDocument(%s) failed: %v", id, err)
		}
	}

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}
	if docs[0].ID != "new" || docs[2].ID != "old" {
		t.Errorf("order = [%s %s %s], want [new mid old]", docs[0].ID, docs[1].ID, docs[2].ID)
	}
}

func TestStore_ResultRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := Document{ID: "doc-1", OriginalName: "a.pdf", PageCount: 1, UploadedAt: time.Now().UTC()}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	envelope := json.RawMessage(`{"filename":"a.pdf","models":{},"summary_markdown":""}`)
	res := Result{
		ID:         "res-1",
		DocumentID: "doc-1",
		Backends:   []string{"pdfplumber", "tesseract"},
		Envelope:   envelope,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.SaveResult(ctx, res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	got, err := s.GetResult(ctx, "res-1")
	if err != nil {
		t.Fatalf("GetResult failed: %v", err)
	}
	if got.DocumentID != "doc-1" {
		t.Errorf("document_id = %q, want doc-1", got.DocumentID)
	}
	if len(got.Backends) != 2 || got.Backends[0] != "pdfplumber" {
		t.Errorf("backends = %v, want [pdfplumber tesseract]", got.Backends)
	}
	if string(got.Envelope) != string(envelope) {
		t.Errorf("envelope = %s, want %s", got.Envelope, envelope)
	}
}

func TestStore_GetResult_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetResult(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListResults_OmitsEnvelope(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := Document{ID: "doc-1", OriginalName: "a.pdf", PageCount: 1, UploadedAt: time.Now().UTC()}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2"} {
		res := Result{
			ID:         id,
			DocumentID: "doc-1",
			Backends:   []string{"pdfplumber"},
			Envelope:   json.RawMessage(`{"big":"payload"}`),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveResult(ctx, res); err != nil {
			t.Fatalf("SaveResult(%s) failed: %v", id, err)
		}
	}

	results, err := s.ListResults(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "r2" {
		t.Errorf("order = [%s %s], want most recent first", results[0].ID, results[1].ID)
	}
	for _, r := range results {
		if len(r.Envelope) != 0 {
			t.Errorf("result %s carries envelope in listing", r.ID)
		}
	}

	// Unknown document just lists empty.
	empty, err := s.ListResults(ctx, "nope")
	if err != nil {
		t.Fatalf("ListResults for unknown document failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d results for unknown document, want 0", len(empty))
	}
}

func TestStore_Ping(t *testing.T) {
	s := openTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
