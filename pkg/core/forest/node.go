package forest

import (
	"fmt"
	"math"
)

// NodeID identifies a node within one forest. Ids are allocated sequentially
// from 1 and are not stable across rebuilds.
type NodeID int

// EdgeID identifies an edge within one forest.
type EdgeID int

// NodeType is the closed set of node variants. Every switch on it is
// exhaustive.
type NodeType int

const (
	// HighIntent is a top-level intent. It never has a parent.
	HighIntent NodeType = iota
	// LowIntent is a sub-intent. Its parent is always a HighIntent.
	LowIntent
	// Record is a user snippet. Records never have children.
	Record
)

// Default visual diameters per node type.
const (
	SizeHighIntent = 60.0
	SizeLowIntent  = 44.0
	SizeRecord     = 28.0
)

// NodeTypes lists every variant in tier order.
var NodeTypes = []NodeType{HighIntent, LowIntent, Record}

// String returns the wire name of the type.
func (t NodeType) String() string {
	switch t {
	case HighIntent:
		return "high-intent"
	case LowIntent:
		return "low-intent"
	case Record:
		return "record"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Tier returns the layout tier: 0 for HighIntent, 1 for LowIntent, 2 for Record.
func (t NodeType) Tier() int { return int(t) }

// IsIntent reports whether t is HighIntent or LowIntent.
func (t NodeType) IsIntent() bool { return t == HighIntent || t == LowIntent }

// DefaultSize returns the visual diameter for t.
func (t NodeType) DefaultSize() float64 {
	switch t {
	case HighIntent:
		return SizeHighIntent
	case LowIntent:
		return SizeLowIntent
	case Record:
		return SizeRecord
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(b []byte) error {
	v, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseNodeType parses a wire name produced by [NodeType.String].
func ParseNodeType(s string) (NodeType, error) {
	switch s {
	case "high-intent":
		return HighIntent, nil
	case "low-intent":
		return LowIntent, nil
	case "record":
		return Record, nil
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// Point is a position in layout space.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// DistanceTo returns the Euclidean distance to q.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// RecordData holds the payload of a Record node.
type RecordData struct {
	Content   string
	Comment   string
	Context   string
	Timestamp string
}

// Node is a vertex of the intent forest.
//
// Record is non-nil iff Type == Record. Confirmed is a per-node flag and is
// never inferred from descendants.
type Node struct {
	ID          NodeID
	Type        NodeType
	Label       string
	Confirmed   bool
	Position    Point
	Size        float64
	Opacity     float64
	Highlighted bool
	Description string
	Priority    string
	Record      *RecordData
}

// Radius returns half the node's visual diameter.
func (n *Node) Radius() float64 { return n.Size / 2 }

func (n *Node) clone() *Node {
	c := *n
	if n.Record != nil {
		rd := *n.Record
		c.Record = &rd
	}
	return &c
}

func (n *Node) equal(o *Node) bool {
	if n.ID != o.ID || n.Type != o.Type || n.Label != o.Label || n.Confirmed != o.Confirmed ||
		n.Position != o.Position || n.Size != o.Size || n.Opacity != o.Opacity ||
		n.Highlighted != o.Highlighted || n.Description != o.Description || n.Priority != o.Priority {
		return false
	}
	if (n.Record == nil) != (o.Record == nil) {
		return false
	}
	return n.Record == nil || *n.Record == *o.Record
}

// Edge is a directed parent → child link.
type Edge struct {
	ID   EdgeID
	From NodeID
	To   NodeID
}
