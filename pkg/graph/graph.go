package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal converts a forest to indented JSON bytes.
func Marshal(f *forest.Forest) ([]byte, error) {
	return json.MarshalIndent(FromForest(f), "", "  ")
}

// Write writes a forest as indented JSON to w.
func Write(f *forest.Forest, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FromForest(f))
}

// WriteFile writes a forest as JSON to path.
func WriteFile(f *forest.Forest, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return Write(f, out)
}

// Unmarshal decodes the wire format. The result is a plain value: it is not
// converted back into a forest.
func Unmarshal(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Children returns the ids of id's children in edge order.
func (g *Graph) Children(id int) []int {
	var out []int
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}
