package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Extraction.PreviewDPI != 150 {
		t.Errorf("default preview DPI = %d, want 150", cfg.Extraction.PreviewDPI)
	}
	if len(cfg.Extraction.Languages) != 1 || cfg.Extraction.Languages[0] != "eng" {
		t.Errorf("default languages = %v, want [eng]", cfg.Extraction.Languages)
	}
	if cfg.Extraction.MaxUploadMB != 100 {
		t.Errorf("default max upload = %d, want 100", cfg.Extraction.MaxUploadMB)
	}
}

func TestConfig_BackendEnabled(t *testing.T) {
	cfg := &Config{
		Extraction: ExtractionConfig{
			Backends: map[string]BackendConfig{
				"pdfplumber": {Enabled: true},
				"tesseract":  {Enabled: false},
			},
		},
	}

	if !cfg.BackendEnabled("pdfplumber") {
		t.Error("enabled backend reported disabled")
	}
	if cfg.BackendEnabled("tesseract") {
		t.Error("disabled backend reported enabled")
	}
	// Backends the config never mentions default to enabled.
	if !cfg.BackendEnabled("future-backend") {
		t.Error("unconfigured backend reported disabled")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("DOCPEEK_TEST_VALUE", "resolved")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"${DOCPEEK_TEST_VALUE}", "resolved"},
		{"prefix-${DOCPEEK_TEST_VALUE}-suffix", "prefix-resolved-suffix"},
		{"${DOCPEEK_UNSET_VALUE}", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config failed: %v", err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "# docpeek configuration") {
		t.Errorf("config missing header comment:\n%s", s)
	}
	for _, want := range []string{"server:", "extraction:", "preview_dpi: 150", "pdfplumber:", "tesseract:"} {
		if !strings.Contains(s, want) {
			t.Errorf("config missing %q:\n%s", want, s)
		}
	}
}
