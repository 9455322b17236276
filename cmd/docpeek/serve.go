package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docpeek/docpeek/internal/config"
	"github.com/docpeek/docpeek/internal/home"
	"github.com/docpeek/docpeek/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docpeek server",
	Long: `Start the docpeek HTTP server.

Uploads, page previews, and the document database live under the home
directory (~/.docpeek by default). Configuration is hot-reloaded, so
backends can be enabled or disabled without a restart.

The server provides:
  - /health - Basic server health check
  - /ready  - Readiness check (includes storage status)

Examples:
  docpeek serve                    # Start on default port 8080
  docpeek serve --port 3000        # Start on custom port
  docpeek serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load config with hot reload
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		// Flags override config; config overrides built-in defaults.
		host := serveHost
		port := servePort
		sc := cm.Get().Server
		if host == "" {
			host = sc.Host
		}
		if port == "" {
			port = sc.Port
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Home:          h,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config: 127.0.0.1)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config: 8080)")

	rootCmd.AddCommand(serveCmd)
}
