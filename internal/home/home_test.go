package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_DefaultPath(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	userHome, _ := os.UserHomeDir()
	want := filepath.Join(userHome, DefaultDirName)
	if d.Path() != want {
		t.Errorf("Path() = %q, want %q", d.Path(), want)
	}
}

func TestDir_Layout(t *testing.T) {
	d, err := New("/data/docpeek")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := d.UploadsPath(); got != filepath.Join("/data/docpeek", "uploads") {
		t.Errorf("UploadsPath() = %q", got)
	}
	if got := d.PreviewsPath(); got != filepath.Join("/data/docpeek", "previews") {
		t.Errorf("PreviewsPath() = %q", got)
	}
	if got := d.DatabasePath(); got != filepath.Join("/data/docpeek", "docpeek.db") {
		t.Errorf("DatabasePath() = %q", got)
	}
	if got := d.ConfigPath(); got != filepath.Join("/data/docpeek", "config.yaml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestDir_DocumentPath(t *testing.T) {
	d, _ := New("/data/docpeek")

	got := d.DocumentPath("abc-123", "scan.pdf")
	want := filepath.Join("/data/docpeek", "uploads", "abc-123_scan.pdf")
	if got != want {
		t.Errorf("DocumentPath = %q, want %q", got, want)
	}

	// Path components in the original name are stripped.
	got = d.DocumentPath("abc-123", "../../etc/passwd.pdf")
	want = filepath.Join("/data/docpeek", "uploads", "abc-123_passwd.pdf")
	if got != want {
		t.Errorf("DocumentPath with traversal = %q, want %q", got, want)
	}
}

func TestDir_PreviewPath(t *testing.T) {
	d, _ := New("/data/docpeek")

	got := d.PreviewPath("abc-123", 2, 150)
	want := filepath.Join("/data/docpeek", "previews", "abc-123_p2_150dpi.png")
	if got != want {
		t.Errorf("PreviewPath = %q, want %q", got, want)
	}
}

func TestDir_EnsureExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "home")
	d, _ := New(root)

	if d.Exists() {
		t.Fatal("Exists() = true before EnsureExists")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !d.Exists() {
		t.Error("Exists() = false after EnsureExists")
	}

	for _, p := range []string{d.UploadsPath(), d.PreviewsPath()} {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("stat %s failed: %v", p, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", p)
		}
	}

	// Idempotent.
	if err := d.EnsureExists(); err != nil {
		t.Errorf("second EnsureExists failed: %v", err)
	}
}

func TestDir_ConfigExists(t *testing.T) {
	d, _ := New(t.TempDir())
	if d.ConfigExists() {
		t.Fatal("ConfigExists() = true with no config file")
	}
	if err := os.WriteFile(d.ConfigPath(), []byte("server:\n  port: \"9000\"\n"), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	if !d.ConfigExists() {
		t.Error("ConfigExists() = false after writing config")
	}
}
