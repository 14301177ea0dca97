package cli

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/sectionref-mcp/internal/config"
	"github.com/dshills/sectionref-mcp/internal/mcp"
	"github.com/dshills/sectionref-mcp/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Index the configured files and serve the MCP tools over stdio.
Stdout carries the protocol; logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(baseDir)
	if err != nil {
		return err
	}

	slog.Info("starting MCP server",
		"name", mcp.ServerName,
		"version", mcp.ServerVersion,
		"base_dir", cfg.BaseDir,
		"sqlite_driver", storage.DriverName)

	server, err := mcp.NewServer(ctx, cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("MCP server ready, listening on stdio")
		errCh <- server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		return nil
	case err := <-errCh:
		return err
	}
}
