package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/sectionref-mcp/internal/config"
	"github.com/dshills/sectionref-mcp/internal/indexer"
	"github.com/dshills/sectionref-mcp/internal/resolver"
	"github.com/dshills/sectionref-mcp/internal/storage"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

// service bundles the loaded configuration, the index state, and the
// snapshot store for one-shot commands.
type service struct {
	cfg   *config.Config
	state *indexer.State
	store *storage.Store
}

func openService(ctx context.Context) (*service, error) {
	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, err
	}
	files, err := cfg.ResolveFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files matched the configured patterns under %s", cfg.BaseDir)
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
		return nil, fmt.Errorf("building index: %w", err)
	}

	return &service{cfg: cfg, state: state, store: store}, nil
}

func (s *service) Close() {
	_ = s.state.Close()
	if s.store != nil {
		_ = s.store.Close()
	}
}

// resolve runs a resolution over a fresh index. In lenient mode,
// unresolvable references are logged and dropped.
func (s *service) resolve(ctx context.Context, refs []string, strict bool) ([]types.GatheredSection, error) {
	ix, err := s.state.EnsureFresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("refreshing index: %w", err)
	}
	return resolver.New(ix).Resolve(refs, resolver.Options{
		Lenient: !strict,
		Warn: func(ref string, err error) {
			slog.Warn("skipping reference", "ref", ref, "error", err)
		},
	})
}
