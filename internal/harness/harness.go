package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/beltline/internal/engine"
	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/refdata"
	"github.com/roach88/beltline/internal/store"
	"github.com/roach88/beltline/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the reference catalog
//  2. Validate the layout and save it into a fresh in-memory store
//  3. Load it back and compute every node and edge with a fixed run id
//  4. Persist the edge annotations
//  5. Evaluate assertions
//
// A returned error means the scenario could not be executed at all;
// failed assertions are reported on the Result.
func Run(scenario *Scenario) (*Result, error) {
	catalog, err := refdata.Load(scenario.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	layout, err := graph.FromDocument(scenario.Graph)
	if err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	if err := st.SaveGraph(ctx, layout.Document()); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}
	g, err := st.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	diags := &engine.Diagnostics{}
	ectx := engine.New(g, catalog,
		engine.WithSink(engine.NewLogSink(logger, diags)),
		engine.WithRunIDGenerator(testutil.NewFixedRunID(scenario.RunID)),
	)

	rep := ectx.ComputeGraph()
	if err := st.SaveAnnotations(ctx, rep.RunID, rep.Edges); err != nil {
		return nil, fmt.Errorf("failed to save annotations: %w", err)
	}

	result := NewResult()
	result.record(rep, diags.All(), ectx.ItemEfficiency())

	logger.Info("scenario computed",
		"scenario", scenario.Name,
		"run_id", rep.RunID,
		"results", len(rep.Results),
		"diagnostics", len(result.Diagnostics),
	)

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}
