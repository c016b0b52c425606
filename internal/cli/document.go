package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/store"
)

// DocumentStats is the output of import and export.
type DocumentStats struct {
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
	Path  string `json:"path,omitempty"`

	// Reference is the reference document recorded by import.
	Reference string `json:"reference,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <graph.yaml>",
		Short: "Replace the graph in the --db store with a YAML document",
		Long: `Validate a YAML graph document and write it into the SQLite store,
replacing the stored nodes and edges. Annotations of edges that survive
the import are kept.

With --ref the absolute path of the reference document is recorded in the
store, and later compute/check runs against the same --db may omit --ref.

Example:
  beltline import factory.yaml --db factory.db --ref reference.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), rootOpts, args[0], cmd)
		},
	}
}

func runImport(ctx context.Context, opts *RootOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	src, err := loadGraph(ctx, f, opts, []string{path})
	if err != nil {
		return err
	}
	st, err := openStore(f, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveGraph(ctx, src.g.Document()); err != nil {
		return f.fail(ExitCommandError, ErrCodeStore, "failed to save graph", err)
	}

	var ref string
	if opts.Reference != "" {
		if ref, err = filepath.Abs(opts.Reference); err != nil {
			return f.fail(ExitCommandError, ErrCodeGeneric, "failed to resolve --ref path", err)
		}
		if err := st.PutSetting(ctx, store.SettingReference, ref); err != nil {
			return f.fail(ExitCommandError, ErrCodeStore, "failed to save settings", err)
		}
	}

	nodes, edges := src.g.Len()
	slog.Info("graph imported", "path", path, "db", opts.Database, "nodes", nodes, "edges", edges, "reference", ref)
	stats := DocumentStats{Nodes: nodes, Edges: edges, Path: path, Reference: ref}
	return f.Report("", stats, nil, func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d node(s) and %d edge(s) into %s\n", nodes, edges, opts.Database)
		if ref != "" {
			fmt.Fprintf(w, "Reference data: %s\n", ref)
		}
	})
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the graph in the --db store as a YAML document",
		Long: `Read the nodes and edges from the SQLite store and write them as a YAML
graph document, to stdout or to the --output file. With --format json the
document is wrapped in the JSON envelope instead.

Example:
  beltline export --db factory.db -o factory.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(f, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	g, err := st.LoadGraph(ctx)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeBadGraph, "failed to load graph from store", err)
	}
	nodes, edges := g.Len()

	if opts.Output != "" {
		if err := g.SaveDocument(opts.Output); err != nil {
			return f.fail(ExitCommandError, ErrCodeGeneric, "failed to write graph", err)
		}
		stats := DocumentStats{Nodes: nodes, Edges: edges, Path: opts.Output}
		return f.Report("", stats, nil, func(w io.Writer) {
			fmt.Fprintf(w, "Exported %d node(s) and %d edge(s) to %s\n", nodes, edges, opts.Output)
		})
	}

	if opts.Format == "json" {
		return f.Success(g.Document())
	}
	return encodeGraph(cmd.OutOrStdout(), g)
}

func encodeGraph(w io.Writer, g *graph.Graph) error {
	if err := g.Encode(w); err != nil {
		return WrapExitError(ExitCommandError, "failed to encode graph", err)
	}
	return nil
}
