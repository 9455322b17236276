package config

// DefaultPreviewDPI is the raster resolution used for previews and OCR
// when no override is configured. Pixel bounding boxes from the OCR
// backend are expressed at this resolution.
const DefaultPreviewDPI = 150

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Extraction: ExtractionConfig{
			PreviewDPI:  DefaultPreviewDPI,
			Languages:   []string{"eng"},
			MaxUploadMB: 100,
			Backends: map[string]BackendConfig{
				"pdfplumber": {Enabled: true},
				"tesseract":  {Enabled: true},
			},
		},
	}
}
