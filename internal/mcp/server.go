package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/sectionref-mcp/internal/config"
	"github.com/dshills/sectionref-mcp/internal/indexer"
	"github.com/dshills/sectionref-mcp/internal/storage"
	"github.com/dshills/sectionref-mcp/internal/watcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "sectionref-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp   *server.MCPServer
	state *indexer.State
	store *storage.Store
	cfg   *config.Config
}

// NewServer builds the full service: snapshot store, initial index,
// file watcher, and the MCP tool registrations. The snapshot store is
// best-effort; a broken cache degrades to full scans, never to a
// startup failure.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	files, err := cfg.ResolveFiles()
	if err != nil {
		return nil, fmt.Errorf("resolving configured files: %w", err)
	}

	var opts []indexer.Option
	store, err := storage.Open(cfg.CachePath)
	if err != nil {
		slog.Warn("snapshot store unavailable, running without cache",
			"path", cfg.CachePath, "error", err)
		store = nil
	} else {
		opts = append(opts, indexer.WithCache(store))
	}

	state, err := indexer.NewState(ctx, files, opts...)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("building initial index: %w", err)
	}

	w, err := watcher.New(files, watcher.DefaultDebounce, state.MarkStale)
	if err != nil {
		slog.Warn("file watching unavailable, index refreshes require restart", "error", err)
	} else {
		state.SetWatchHandle(w)
	}

	s := &Server{
		mcp:   server.NewMCPServer(ServerName, ServerVersion),
		state: state,
		store: store,
		cfg:   cfg,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the watch handle and the snapshot store.
func (s *Server) Close() error {
	err := s.state.Close()
	if s.store != nil {
		if cerr := s.store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(getSectionsTool(), s.handleGetSections)
	s.mcp.AddTool(locateSectionsTool(), s.handleLocateSections)
	s.mcp.AddTool(checkFormatTool(), s.handleCheckFormat)
	s.mcp.AddTool(validateIndexTool(), s.handleValidateIndex)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
}
