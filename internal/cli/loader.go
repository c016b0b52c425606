package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/refdata"
	"github.com/roach88/beltline/internal/store"
)

// loadCatalog reads the --ref document. Without --ref it falls back to
// the reference path recorded in the store by import, when st is set.
func loadCatalog(ctx context.Context, f *OutputFormatter, opts *RootOptions, st *store.Store) (*refdata.Catalog, error) {
	path := opts.Reference
	if path == "" && st != nil {
		stored, ok, err := st.Setting(ctx, store.SettingReference)
		if err != nil {
			return nil, f.fail(ExitCommandError, ErrCodeStore, "failed to read settings", err)
		}
		if ok {
			path = stored
			f.VerboseLog("using reference data recorded in %s: %s", opts.Database, path)
		}
	}
	if path == "" {
		return nil, f.fail(ExitCommandError, ErrCodeBadReference, "--ref is required", nil)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, f.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("reference file not found: %s", path), nil)
	}
	catalog, err := refdata.Load(path)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeBadReference, "failed to load reference data", err)
	}
	stats := catalog.Stats()
	slog.Debug("reference data loaded",
		"path", path,
		"items", stats.Items,
		"recipes", stats.Recipes,
		"machines", stats.Machines,
	)
	return catalog, nil
}

// graphSource is where a command's graph came from. st is nil for YAML
// files; the caller closes it otherwise.
type graphSource struct {
	g  *graph.Graph
	st *store.Store
}

func (s *graphSource) Close() {
	if s.st == nil {
		return
	}
	if err := s.st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// loadGraph reads the graph from a YAML file when one is given as
// argument, and from the --db store otherwise.
func loadGraph(ctx context.Context, f *OutputFormatter, opts *RootOptions, args []string) (*graphSource, error) {
	if len(args) > 0 {
		path := args[0]
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, f.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("graph file not found: %s", path), nil)
		}
		g, err := graph.LoadDocument(path)
		if err != nil {
			return nil, f.fail(ExitCommandError, ErrCodeBadGraph, "failed to load graph", err)
		}
		slog.Debug("graph loaded", "path", path)
		return &graphSource{g: g}, nil
	}

	if opts.Database == "" {
		return nil, f.fail(ExitCommandError, ErrCodeGeneric, "a graph file argument or --db is required", nil)
	}
	st, err := openStore(f, opts)
	if err != nil {
		return nil, err
	}
	g, err := st.LoadGraph(ctx)
	if err != nil {
		st.Close()
		return nil, f.fail(ExitCommandError, ErrCodeBadGraph, "failed to load graph from store", err)
	}
	slog.Debug("graph loaded", "db", opts.Database)
	return &graphSource{g: g, st: st}, nil
}

// openStore opens the --db store, creating it if needed.
func openStore(f *OutputFormatter, opts *RootOptions) (*store.Store, error) {
	if opts.Database == "" {
		return nil, f.fail(ExitCommandError, ErrCodeGeneric, "--db is required", nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}
