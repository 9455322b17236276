package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docpeek/docpeek/internal/api"
	"github.com/docpeek/docpeek/internal/config"
	"github.com/docpeek/docpeek/internal/home"
	"github.com/docpeek/docpeek/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docpeek",
	Short: "PDF extraction playground with digital text and OCR backends",
	Long: `Docpeek extracts text, word bounding boxes, and tables from PDFs
and serves them over HTTP for side-by-side comparison.

Two backends are available:
  - pdfplumber: digital text extraction from the PDF content streams
  - tesseract:  OCR over rasterized pages (needs tesseract and pdftoppm)

Every backend normalizes to the same page/word/bbox shape, so a browser
frontend can overlay any backend's boxes on the page preview images.`,
	Version: version.GitRelease,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the docpeek home directory and a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if h.ConfigExists() {
			fmt.Printf("Config already exists at %s\n", h.ConfigPath())
			return nil
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docpeek/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "docpeek home directory (default: ~/.docpeek)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
