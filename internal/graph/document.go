package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/beltline/internal/ir"
)

// Document is the portable YAML form of a graph.
type Document struct {
	Nodes []ir.Node `json:"nodes" yaml:"nodes"`
	Edges []ir.Edge `json:"edges" yaml:"edges"`
}

// FromDocument builds a graph, validating every edge with Connect.
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for _, n := range doc.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Edges {
		if _, err := g.Connect(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Document returns the graph's nodes and edges sorted by id.
// Edge annotations are derived data and are not included.
func (g *Graph) Document() Document {
	doc := Document{
		Nodes: make([]ir.Node, 0, len(g.nodes)),
		Edges: make([]ir.Edge, 0, len(g.edges)),
	}
	for _, id := range g.NodeIDs() {
		doc.Nodes = append(doc.Nodes, *g.nodes[id])
	}
	for _, id := range g.EdgeIDs() {
		e := *g.edges[id]
		e.Annotation = nil
		doc.Edges = append(doc.Edges, e)
	}
	return doc
}

// Decode parses a YAML graph document. Unknown fields are rejected.
func Decode(r io.Reader) (*Graph, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse graph YAML: %w", err)
	}
	return FromDocument(doc)
}

// LoadDocument reads a YAML graph document from path.
func LoadDocument(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Encode writes g as a YAML document.
func (g *Graph) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.Document()); err != nil {
		return fmt.Errorf("failed to encode graph YAML: %w", err)
	}
	return enc.Close()
}

// SaveDocument writes g as a YAML document to path.
func (g *Graph) SaveDocument(path string) error {
	var buf bytes.Buffer
	if err := g.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	return nil
}
