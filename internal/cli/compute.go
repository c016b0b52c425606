package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/beltline/internal/engine"
	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/ir"
)

// ComputeOptions holds flags for the compute and check commands.
type ComputeOptions struct {
	*RootOptions

	// RunIDs overrides the compute-run id generator (for testing).
	// If nil, defaults to engine.UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// EdgeSummary is one edge of a compute summary.
type EdgeSummary struct {
	ID      string           `json:"id"`
	Source  string           `json:"source"`
	Target  string           `json:"target"`
	State   ir.EdgeState     `json:"state"`
	Label   string           `json:"label,omitempty"`
	Message string           `json:"message,omitempty"`
	Items   []ir.ItemBalance `json:"items,omitempty"`
}

// ComputeSummary is the output of compute and check.
type ComputeSummary struct {
	RunID       string                  `json:"runId"`
	Nodes       int                     `json:"nodes"`
	Flows       map[string]ir.NodeFlows `json:"flows"`
	Edges       []EdgeSummary           `json:"edges"`
	Diagnostics []ir.Diagnostic         `json:"diagnostics"`
	Efficiency  []engine.Efficiency     `json:"efficiency,omitempty"`
	Loops       []graph.Loop            `json:"loops,omitempty"`
	Unbalanced  int                     `json:"unbalanced"`
	Errors      int                     `json:"errors"`
}

// NewComputeCommand creates the compute command.
func NewComputeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComputeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compute [graph.yaml]",
		Short: "Compute flows and edge balance for a factory graph",
		Long: `Compute the flow rates of every node and the balance of every edge.

The graph is read from the YAML file argument, or from the --db store when
no file is given. Computing from a store also persists the edge annotations
back into it.

Examples:
  beltline compute --ref reference.json factory.yaml
  beltline compute --ref reference.json --db factory.db
  beltline compute --ref reference.json factory.yaml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd.Context(), opts, args, cmd, false)
		},
	}
	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComputeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [graph.yaml]",
		Short: "Fail when any edge is unbalanced",
		Long: `Compute the graph like compute and fail when any edge is not balanced
or any error diagnostic was emitted.

Exit codes:
  0 - Every edge balanced
  1 - Unbalanced edges or error diagnostics
  2 - Command error (invalid paths, bad reference data, etc.)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd.Context(), opts, args, cmd, true)
		},
	}
	return cmd
}

func runCompute(ctx context.Context, opts *ComputeOptions, args []string, cmd *cobra.Command, strict bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	src, err := loadGraph(ctx, f, opts.RootOptions, args)
	if err != nil {
		return err
	}
	defer src.Close()
	catalog, err := loadCatalog(ctx, f, opts.RootOptions, src.st)
	if err != nil {
		return err
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	diags := &engine.Diagnostics{}
	ectx := engine.New(src.g, catalog,
		engine.WithSink(engine.NewLogSink(nil, diags)),
		engine.WithRunIDGenerator(runIDs),
	)
	rep := ectx.ComputeGraph()

	if src.st != nil {
		if err := src.st.SaveAnnotations(ctx, rep.RunID, rep.Edges); err != nil {
			return f.fail(ExitCommandError, ErrCodeStore, "failed to save annotations", err)
		}
		if err := src.st.SaveResults(ctx, rep.RunID, rep.Results); err != nil {
			return f.fail(ExitCommandError, ErrCodeStore, "failed to save results", err)
		}
		f.VerboseLog("saved %d annotations and %d results to %s", len(rep.Edges), len(rep.Results), opts.Database)
	}

	summary := summarize(src.g, rep, diags, ectx.ItemEfficiency())

	var failure *CLIError
	if strict && (summary.Unbalanced > 0 || summary.Errors > 0) {
		failure = &CLIError{
			Code:    ErrCodeUnbalanced,
			Message: fmt.Sprintf("%d edge(s) unbalanced, %d error diagnostic(s)", summary.Unbalanced, summary.Errors),
		}
	}
	if err := f.Report(rep.RunID, summary, failure, func(w io.Writer) {
		writeSummaryText(w, summary)
	}); err != nil {
		return err
	}
	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

func summarize(g *graph.Graph, rep *engine.Report, diags *engine.Diagnostics, eff []engine.Efficiency) ComputeSummary {
	nodes, _ := g.Len()
	s := ComputeSummary{
		RunID:       rep.RunID,
		Nodes:       nodes,
		Flows:       make(map[string]ir.NodeFlows, len(rep.Results)),
		Edges:       []EdgeSummary{},
		Diagnostics: diags.All(),
		Efficiency:  eff,
		Loops:       g.FeedbackLoops(),
		Errors:      diags.Count(ir.SeverityError),
	}
	if s.Diagnostics == nil {
		s.Diagnostics = []ir.Diagnostic{}
	}
	for id, res := range rep.Results {
		if res != nil {
			s.Flows[id] = res.Flows()
		}
	}
	for _, id := range g.EdgeIDs() {
		e, _ := g.Edge(id)
		es := EdgeSummary{ID: id, Source: e.Source, Target: e.Target}
		if ann := rep.Edges[id]; ann != nil {
			es.State = ann.State
			es.Label = ann.Label
			es.Message = ann.Message
			es.Items = ann.Items
		}
		if es.State == ir.EdgeStateWarning || es.State == ir.EdgeStateError {
			s.Unbalanced++
		}
		s.Edges = append(s.Edges, es)
	}
	return s
}

func writeSummaryText(w io.Writer, s ComputeSummary) {
	fmt.Fprintf(w, "Run %s: %d node(s), %d edge(s)\n", s.RunID, s.Nodes, len(s.Edges))

	writeFlowsText(w, s.Flows)

	if len(s.Edges) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Edges:")
	}
	for _, e := range s.Edges {
		state := string(e.State)
		if state == "" {
			state = "-"
		}
		fmt.Fprintf(w, "  %-8s %s -> %s  %s", state, e.Source, e.Target, e.ID)
		if e.Label != "" {
			fmt.Fprintf(w, "  %s", e.Label)
		}
		if e.Message != "" {
			fmt.Fprintf(w, " (%s)", e.Message)
		}
		fmt.Fprintln(w)
	}

	if len(s.Efficiency) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Efficiency:")
		for _, e := range s.Efficiency {
			fmt.Fprintf(w, "  %s %s %s/%s per min (%.1f%%)\n",
				e.NodeID, e.ItemKey, engine.FormatRate(e.Speed), engine.FormatRate(e.Available), e.Efficiency*100)
		}
	}

	if len(s.Loops) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Feedback loops:")
		for _, l := range s.Loops {
			fmt.Fprintf(w, "  %s\n", strings.Join(l.Path, " -> "))
		}
	}

	if len(s.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Diagnostics:")
		for _, d := range s.Diagnostics {
			fmt.Fprintf(w, "  %-7s %s %s\n", d.Severity, d.Code, d.Message)
		}
	}

	fmt.Fprintln(w)
	if s.Unbalanced == 0 {
		fmt.Fprintln(w, "All edges balanced")
		return
	}
	fmt.Fprintf(w, "%d edge(s) unbalanced\n", s.Unbalanced)
}

// writeFlowsText prints the flow at every handle, actual where the node
// distributed and expected otherwise.
func writeFlowsText(w io.Writer, flows map[string]ir.NodeFlows) {
	if len(flows) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flows:")

	ids := make([]string, 0, len(flows))
	for id := range flows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		nf := flows[id]
		view := nf.Expected
		if len(nf.Actual) > 0 {
			view = nf.Actual
		}
		handles := make([]string, 0, len(view))
		for h := range view {
			handles = append(handles, string(h))
		}
		sort.Strings(handles)

		for _, h := range handles {
			fmt.Fprintf(w, "  %s %s %s\n", id, h, formatRates(view[ir.HandleID(h)]))
		}
	}
}

func formatRates(rates map[string]int64) string {
	if _, ok := rates[ir.AnyKey]; ok && len(rates) == 1 {
		return ir.AnyKey
	}
	if len(rates) == 0 {
		return "-"
	}
	items := make([]string, 0, len(rates))
	for item := range rates {
		items = append(items, item)
	}
	sort.Strings(items)

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s=%s/min", item, engine.FormatRate(rates[item])))
	}
	return strings.Join(parts, " ")
}
