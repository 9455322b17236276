// Package home manages the docpeek home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the docpeek home directory.
	DefaultDirName = ".docpeek"

	// UploadsDirName is the subdirectory holding uploaded PDFs.
	UploadsDirName = "uploads"

	// PreviewsDirName is the subdirectory holding rendered page previews.
	PreviewsDirName = "previews"

	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "docpeek.db"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the docpeek home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.docpeek).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// UploadsPath returns the path to the uploads directory.
func (d *Dir) UploadsPath() string {
	return filepath.Join(d.path, UploadsDirName)
}

// PreviewsPath returns the path to the previews directory.
func (d *Dir) PreviewsPath() string {
	return filepath.Join(d.path, PreviewsDirName)
}

// DatabasePath returns the path to the SQLite database file.
func (d *Dir) DatabasePath() string {
	return filepath.Join(d.path, DatabaseFileName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, p := range []string{d.UploadsPath(), d.PreviewsPath()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// DocumentPath returns the on-disk path for an uploaded document.
// Documents are stored as <id>_<original name> so an id is never reused
// across uploads even when the same file is uploaded twice.
func (d *Dir) DocumentPath(id, originalName string) string {
	return filepath.Join(d.UploadsPath(), fmt.Sprintf("%s_%s", id, filepath.Base(originalName)))
}

// PreviewPath returns the cache path for a rendered page preview.
// Page indexes are 0-based; dpi is baked into the name so DPI changes
// never serve stale rasters.
func (d *Dir) PreviewPath(docID string, pageIndex, dpi int) string {
	return filepath.Join(d.PreviewsPath(), fmt.Sprintf("%s_p%d_%ddpi.png", docID, pageIndex, dpi))
}
