// Package docstore persists uploaded document metadata and extraction
// results in a SQLite database.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a document or result id is unknown.
var ErrNotFound = errors.New("not found")

// Document is an uploaded PDF. The id is unique per upload, so two
// uploads of the same file never collide on disk or in the store.
type Document struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	PageCount    int       `json:"page_count"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Result is a stored extraction envelope for one document.
type Result struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Backends   []string        `json:"backends"`
	Envelope   json.RawMessage `json:"envelope,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Store manages the docpeek SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			original_name TEXT NOT NULL,
			page_count INTEGER NOT NULL,
			size_bytes INTEGER NOT NULL,
			uploaded_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id),
			backends TEXT NOT NULL,
			envelope TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_document_id ON results(document_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// CreateDocument inserts a document record.
func (s *Store) CreateDocument(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, original_name, page_count, size_bytes, uploaded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.OriginalName, doc.PageCount, doc.SizeBytes,
		doc.UploadedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// GetDocument fetches a document by id. Returns ErrNotFound for unknown ids.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, original_name, page_count, size_bytes, uploaded_at
		 FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all documents, most recent first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, original_name, page_count, size_bytes, uploaded_at
		 FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// SaveResult stores an extraction envelope for a document.
func (s *Store) SaveResult(ctx context.Context, res Result) error {
	backends, err := json.Marshal(res.Backends)
	if err != nil {
		return fmt.Errorf("encoding backends: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (id, document_id, backends, envelope, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		res.ID, res.DocumentID, string(backends), string(res.Envelope),
		res.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

// GetResult fetches a stored result by id. Returns ErrNotFound for
// unknown ids.
func (s *Store) GetResult(ctx context.Context, id string) (*Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, backends, envelope, created_at
		 FROM results WHERE id = ?`, id)

	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("result %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching result: %w", err)
	}
	return res, nil
}

// ListResults returns result metadata for a document, most recent
// first. Envelope blobs are omitted; fetch individual results for the
// full payload.
func (s *Store) ListResults(ctx context.Context, documentID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, backends, created_at
		 FROM results WHERE document_id = ? ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			res       Result
			backends  string
			createdAt string
		)
		if err := rows.Scan(&res.ID, &res.DocumentID, &backends, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := json.Unmarshal([]byte(backends), &res.Backends); err != nil {
			return nil, fmt.Errorf("decoding backends: %w", err)
		}
		res.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc        Document
		uploadedAt string
	)
	if err := row.Scan(&doc.ID, &doc.OriginalName, &doc.PageCount, &doc.SizeBytes, &uploadedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing uploaded_at: %w", err)
	}
	doc.UploadedAt = t
	return &doc, nil
}

func scanResult(row scanner) (*Result, error) {
	var (
		res       Result
		backends  string
		envelope  string
		createdAt string
	)
	if err := row.Scan(&res.ID, &res.DocumentID, &backends, &envelope, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(backends), &res.Backends); err != nil {
		return nil, fmt.Errorf("decoding backends: %w", err)
	}
	res.Envelope = json.RawMessage(envelope)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	res.CreatedAt = t
	return &res, nil
}
