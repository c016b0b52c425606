package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/ir"
)

// SaveGraph replaces the stored nodes and edges with doc in one
// transaction. Annotations of edges that no longer exist go with them,
// and stored node results are cleared since they describe the old graph.
func (s *Store) SaveGraph(ctx context.Context, doc graph.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	defer tx.Rollback()

	if err := replaceDocument(ctx, tx, doc); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	return nil
}

func replaceDocument(ctx context.Context, tx *sql.Tx, doc graph.Document) error {
	keepEdges := make(map[string]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		keepEdges[e.ID] = true
	}

	// Stash annotations of surviving edges: deleting the edges cascades.
	kept, err := readAnnotations(ctx, tx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return fmt.Errorf("clear edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}

	for _, n := range doc.Nodes {
		cfg, err := marshalNodeConfig(n)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO nodes (id, kind, position_x, position_y, config)
			VALUES (?, ?, ?, ?, ?)
		`, n.ID, string(n.Kind), n.Position.X, n.Position.Y, cfg)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	for _, e := range doc.Edges {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO edges (id, source, source_handle, target, target_handle)
			VALUES (?, ?, ?, ?, ?)
		`, e.ID, e.Source, string(e.SourceHandle), e.Target, string(e.TargetHandle))
		if err != nil {
			return fmt.Errorf("insert edge %s: %w", e.ID, err)
		}
	}

	for edgeID, a := range kept {
		if !keepEdges[edgeID] {
			continue
		}
		if err := upsertAnnotation(ctx, tx, a.runID, edgeID, &a.EdgeAnnotation); err != nil {
			return err
		}
	}
	return nil
}

// SaveAnnotations records the edge annotations of a compute run.
// A nil annotation clears any stored one for that edge.
func (s *Store) SaveAnnotations(ctx context.Context, runID string, annotations map[string]*ir.EdgeAnnotation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save annotations: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(annotations))
	for id := range annotations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, edgeID := range ids {
		a := annotations[edgeID]
		if a == nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM annotations WHERE edge_id = ?`, edgeID); err != nil {
				return fmt.Errorf("save annotations: %w", err)
			}
			continue
		}
		if err := upsertAnnotation(ctx, tx, runID, edgeID, a); err != nil {
			return fmt.Errorf("save annotations: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save annotations: %w", err)
	}
	return nil
}

func upsertAnnotation(ctx context.Context, tx *sql.Tx, runID, edgeID string, a *ir.EdgeAnnotation) error {
	items := a.Items
	if items == nil {
		items = []ir.ItemBalance{}
	}
	itemsJSON, err := marshalJSON(items)
	if err != nil {
		return fmt.Errorf("marshal annotation %s: %w", edgeID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO annotations (edge_id, run_id, state, label, message, items)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(edge_id) DO UPDATE SET
			run_id = excluded.run_id,
			state = excluded.state,
			label = excluded.label,
			message = excluded.message,
			items = excluded.items
	`, edgeID, runID, string(a.State), a.Label, a.Message, itemsJSON)
	if err != nil {
		return fmt.Errorf("upsert annotation %s: %w", edgeID, err)
	}
	return nil
}

// SaveResults replaces the stored node results with those of a compute
// run. Nodes absent from results (unconfigured, or missing reference data)
// end up with no stored result.
func (s *Store) SaveResults(ctx context.Context, runID string, results map[string]*ir.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	ids := make([]string, 0, len(results))
	for id, r := range results {
		if r != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, nodeID := range ids {
		flows := results[nodeID].Flows()
		expected, err := marshalJSON(nonNilFlows(flows.Expected))
		if err != nil {
			return fmt.Errorf("marshal result %s: %w", nodeID, err)
		}
		actual, err := marshalJSON(nonNilFlows(flows.Actual))
		if err != nil {
			return fmt.Errorf("marshal result %s: %w", nodeID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results (node_id, run_id, based_on, expected, actual)
			VALUES (?, ?, ?, ?, ?)
		`, nodeID, runID, results[nodeID].BasedOn, expected, actual)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", nodeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}

func nonNilFlows(p ir.PersistedFlows) ir.PersistedFlows {
	if p == nil {
		return ir.PersistedFlows{}
	}
	return p
}

// PutSetting stores a setting, replacing any previous value.
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}
