package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Serialization types
// =============================================================================

// Document is the JSON form of a graph, used by the CLI for inspection.
type Document struct {
	Nodes []NodeDoc `json:"nodes"`
	Edges []EdgeDoc `json:"edges"`
}

// NodeDoc is a serialized node.
type NodeDoc struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// EdgeDoc is a serialized edge.
type EdgeDoc struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Line   string  `json:"line"`
	FromT  float64 `json:"from_t"`
	ToT    float64 `json:"to_t"`
	Length float64 `json:"length"`
}

// Export converts the graph to its serialization format, preserving
// registration order.
func (g *Graph) Export() Document {
	doc := Document{
		Nodes: make([]NodeDoc, 0, len(g.order)),
		Edges: make([]EdgeDoc, 0, len(g.edges)),
	}
	for _, k := range g.order {
		n := g.nodes[k]
		doc.Nodes = append(doc.Nodes, NodeDoc{ID: k.String(), Kind: k.Kind.String(), X: n.Pos.X, Y: n.Pos.Y})
	}
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, EdgeDoc{
			From:   e.From.String(),
			To:     e.To.String(),
			Line:   e.Line.String(),
			FromT:  e.FromT,
			ToT:    e.ToT,
			Length: e.Length(),
		})
	}
	return doc
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalJSON converts a graph to indented JSON bytes.
func MarshalJSON(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes a graph as JSON to an io.Writer.
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.Export()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSONFile writes a graph to a JSON file.
func WriteJSONFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
