package graph

import (
	"slices"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
)

// =============================================================================
// Graph - Intent Forest Serialization
// =============================================================================

// Graph is the wire format of an intent forest. It is what the HTTP API
// returns and what `intentgraph build` prints: every node with its display
// state, and every parent→child edge.
type Graph struct {
	Scenario string `json:"scenario"`
	Version  uint64 `json:"version,omitempty"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// =============================================================================
// Node
// =============================================================================

// Node is one intent or record with its display state.
type Node struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"`
	Label       string  `json:"label"`
	Confirmed   bool    `json:"confirmed"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	Opacity     float64 `json:"opacity"`
	Highlighted bool    `json:"highlighted,omitempty"`
	Parent      int     `json:"parent,omitempty"` // 0 for roots
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Record      *Record `json:"record,omitempty"`
}

// Record is the payload of a record node.
type Record struct {
	Content   string `json:"content,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Context   string `json:"context,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == 0 }

// =============================================================================
// Edge
// =============================================================================

// Edge is a parent→child relation. It is confirmed when both endpoints are.
type Edge struct {
	ID        int  `json:"id"`
	From      int  `json:"from"`
	To        int  `json:"to"`
	Confirmed bool `json:"confirmed"`
}

// =============================================================================
// Layout
// =============================================================================

// Layout is the wire format of a positions map.
type Layout struct {
	Orientation string     `json:"orientation"`
	Width       float64    `json:"width,omitempty"`
	Height      float64    `json:"height,omitempty"`
	Positions   []Position `json:"positions"`
}

// Position is one node center.
type Position struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromForest converts f to its wire format. Nodes and edges are ordered by
// id for deterministic output.
func FromForest(f *forest.Forest) Graph {
	nodes := f.Nodes()
	slices.SortFunc(nodes, func(a, b *forest.Node) int { return int(a.ID) - int(b.ID) })

	out := Graph{
		Scenario: f.Scenario,
		Nodes:    make([]Node, len(nodes)),
		Edges:    make([]Edge, 0, f.EdgeCount()),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromForest(f, n)
	}

	edges := f.Edges()
	slices.SortFunc(edges, func(a, b forest.Edge) int { return int(a.ID) - int(b.ID) })
	for _, e := range edges {
		out.Edges = append(out.Edges, Edge{
			ID:        int(e.ID),
			From:      int(e.From),
			To:        int(e.To),
			Confirmed: f.EdgeConfirmed(e),
		})
	}
	return out
}

// FromPositions converts a positions map to its wire format, ordered by id.
func FromPositions(pos layout.Positions, opts layout.Options) Layout {
	out := Layout{
		Orientation: opts.Orientation.String(),
		Width:       opts.Viewport.Width,
		Height:      opts.Viewport.Height,
		Positions:   make([]Position, 0, len(pos)),
	}
	for id, p := range pos {
		out.Positions = append(out.Positions, Position{ID: int(id), X: p.X, Y: p.Y})
	}
	slices.SortFunc(out.Positions, func(a, b Position) int { return a.ID - b.ID })
	return out
}

func nodeFromForest(f *forest.Forest, n *forest.Node) Node {
	out := Node{
		ID:          int(n.ID),
		Type:        n.Type.String(),
		Label:       n.Label,
		Confirmed:   n.Confirmed,
		X:           n.Position.X,
		Y:           n.Position.Y,
		Size:        n.Size,
		Opacity:     n.Opacity,
		Highlighted: n.Highlighted,
		Description: n.Description,
		Priority:    n.Priority,
	}
	if p, ok := f.Parent(n.ID); ok {
		out.Parent = int(p)
	}
	if n.Record != nil {
		out.Record = &Record{
			Content:   n.Record.Content,
			Comment:   n.Record.Comment,
			Context:   n.Record.Context,
			Timestamp: n.Record.Timestamp,
		}
	}
	return out
}
