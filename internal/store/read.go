package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/ir"
)

// Annotation is a stored edge annotation and the run that wrote it.
type Annotation struct {
	ir.EdgeAnnotation
	runID string
}

// RunID returns the compute run that produced the annotation.
func (a Annotation) RunID() string {
	return a.runID
}

// NodeResult is a stored node result and the run that wrote it.
type NodeResult struct {
	NodeID   string
	RunID    string
	BasedOn  string
	Expected ir.HandleFlows
	Actual   ir.HandleFlows
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// LoadDocument reads the stored nodes and edges, ordered by id.
func (s *Store) LoadDocument(ctx context.Context) (graph.Document, error) {
	doc := graph.Document{Nodes: []ir.Node{}, Edges: []ir.Edge{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, position_x, position_y, config
		FROM nodes
		ORDER BY id ASC
	`)
	if err != nil {
		return doc, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n          ir.Node
			kind, data string
		)
		if err := rows.Scan(&n.ID, &kind, &n.Position.X, &n.Position.Y, &data); err != nil {
			return doc, fmt.Errorf("scan node: %w", err)
		}
		n.Kind = ir.NodeKind(kind)
		if err := unmarshalNodeConfig(n.ID, data, &n); err != nil {
			return doc, err
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return doc, fmt.Errorf("iterate nodes: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx, `
		SELECT id, source, source_handle, target, target_handle
		FROM edges
		ORDER BY id ASC
	`)
	if err != nil {
		return doc, fmt.Errorf("load edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var (
			e          ir.Edge
			srcH, dstH string
		)
		if err := edgeRows.Scan(&e.ID, &e.Source, &srcH, &e.Target, &dstH); err != nil {
			return doc, fmt.Errorf("scan edge: %w", err)
		}
		e.SourceHandle, e.TargetHandle = ir.HandleID(srcH), ir.HandleID(dstH)
		doc.Edges = append(doc.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return doc, fmt.Errorf("iterate edges: %w", err)
	}

	return doc, nil
}

// LoadGraph reads the stored document and rebuilds the graph, validating
// every edge.
func (s *Store) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	doc, err := s.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	g, err := graph.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return g, nil
}

// Annotations returns the stored edge annotations keyed by edge id.
func (s *Store) Annotations(ctx context.Context) (map[string]Annotation, error) {
	return readAnnotations(ctx, s.db)
}

func readAnnotations(ctx context.Context, q queryer) (map[string]Annotation, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT edge_id, run_id, state, label, message, items
		FROM annotations
		ORDER BY edge_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Annotation)
	for rows.Next() {
		var (
			edgeID, state, items string
			a                    Annotation
		)
		if err := rows.Scan(&edgeID, &a.runID, &state, &a.Label, &a.Message, &items); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.State = ir.EdgeState(state)
		if err := json.Unmarshal([]byte(items), &a.Items); err != nil {
			return nil, fmt.Errorf("unmarshal annotation %s: %w", edgeID, err)
		}
		if len(a.Items) == 0 {
			a.Items = nil
		}
		out[edgeID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}
	return out, nil
}

// Results returns the stored node results keyed by node id. Flows are
// parsed back from their persisted form, so unconstrained handles come
// back as ir.Unconstrained.
func (s *Store) Results(ctx context.Context) (map[string]NodeResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, run_id, based_on, expected, actual
		FROM results
		ORDER BY node_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	out := make(map[string]NodeResult)
	for rows.Next() {
		var (
			r                NodeResult
			expected, actual string
		)
		if err := rows.Scan(&r.NodeID, &r.RunID, &r.BasedOn, &expected, &actual); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var exp, act ir.PersistedFlows
		if err := json.Unmarshal([]byte(expected), &exp); err != nil {
			return nil, fmt.Errorf("unmarshal result %s: %w", r.NodeID, err)
		}
		if err := json.Unmarshal([]byte(actual), &act); err != nil {
			return nil, fmt.Errorf("unmarshal result %s: %w", r.NodeID, err)
		}
		r.Expected = exp.Flows()
		if len(act) > 0 {
			r.Actual = act.Flows()
		}
		out[r.NodeID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// SettingReference is the setting key holding the path of the reference
// document the stored graph was imported with.
const SettingReference = "reference"

// Setting returns a stored setting and whether it exists.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Settings returns every stored setting.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}
