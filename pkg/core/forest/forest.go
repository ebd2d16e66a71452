package forest

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownSourceNode is returned by [Forest.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Forest.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrHasParent is returned by [Forest.AddEdge] when the To node already
	// has a parent. Detach it first.
	ErrHasParent = errors.New("node already has a parent")

	// ErrSelfEdge is returned by [Forest.AddEdge] for a loop edge.
	ErrSelfEdge = errors.New("edge endpoints are the same node")

	// ErrInvalidEdgeEndpoint is returned by [Forest.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrIndexMismatch is returned by [Forest.Validate] when the relation
	// maps disagree with the edge table.
	ErrIndexMismatch = errors.New("relation index does not match edges")

	// ErrGraphHasCycle is returned by [Forest.Validate] when a cycle is
	// detected using white/gray/black depth-first search.
	ErrGraphHasCycle = errors.New("graph contains a cycle")

	// ErrRecordHasChildren is returned by [Forest.Validate] when a Record
	// is the parent of another node.
	ErrRecordHasChildren = errors.New("record has children")

	// ErrHighIntentHasParent is returned by [Forest.Validate] when a
	// HighIntent is not a root.
	ErrHighIntentHasParent = errors.New("high intent has a parent")

	// ErrBadParentType is returned by [Forest.Validate] when a LowIntent's
	// parent is not a HighIntent, or a Record's parent is not an intent.
	ErrBadParentType = errors.New("parent has the wrong type")

	// ErrOrphan is returned by [Forest.Validate] for a LowIntent or Record
	// without a parent.
	ErrOrphan = errors.New("node has no parent")

	// ErrRecordData is returned by [Forest.Validate] when the record payload
	// disagrees with the node type.
	ErrRecordData = errors.New("record payload does not match node type")
)

// Forest is the graph state: a node table, an edge table and the relation
// maps derived from them. Every node has at most one parent.
//
// The zero value is not usable - use New to create a valid Forest.
// Forest is not safe for concurrent use without external synchronization.
type Forest struct {
	Scenario string

	nodes      map[NodeID]*Node
	order      []NodeID
	edges      map[EdgeID]Edge
	edgeOrder  []EdgeID
	parent     map[NodeID]NodeID
	parentEdge map[NodeID]EdgeID
	children   map[NodeID][]NodeID
	nextNode   NodeID
	nextEdge   EdgeID
}

// New creates an empty forest.
func New(scenario string) *Forest {
	return &Forest{
		Scenario:   scenario,
		nodes:      make(map[NodeID]*Node),
		edges:      make(map[EdgeID]Edge),
		parent:     make(map[NodeID]NodeID),
		parentEdge: make(map[NodeID]EdgeID),
		children:   make(map[NodeID][]NodeID),
		nextNode:   1,
		nextEdge:   1,
	}
}

// =============================================================================
// Mutation
// =============================================================================

// AddNode inserts n with a freshly allocated id and returns the stored node.
// A zero Size defaults to the type's diameter and a zero Opacity to 1.
func (f *Forest) AddNode(n Node) *Node {
	n.ID = f.nextNode
	f.nextNode++
	if n.Size == 0 {
		n.Size = n.Type.DefaultSize()
	}
	if n.Opacity == 0 {
		n.Opacity = 1
	}
	if n.Type == Record && n.Record == nil {
		n.Record = &RecordData{}
	}
	node := &n
	f.nodes[node.ID] = node
	f.order = append(f.order, node.ID)
	return node
}

// AddEdge links from → to, appending to to from's ordered children.
func (f *Forest) AddEdge(from, to NodeID) (EdgeID, error) {
	if _, ok := f.nodes[from]; !ok {
		return 0, ErrUnknownSourceNode
	}
	if _, ok := f.nodes[to]; !ok {
		return 0, ErrUnknownTargetNode
	}
	if from == to {
		return 0, ErrSelfEdge
	}
	if _, ok := f.parent[to]; ok {
		return 0, ErrHasParent
	}
	id := f.nextEdge
	f.nextEdge++
	f.edges[id] = Edge{ID: id, From: from, To: to}
	f.edgeOrder = append(f.edgeOrder, id)
	f.parent[to] = from
	f.parentEdge[to] = id
	f.children[from] = append(f.children[from], to)
	return id, nil
}

// Detach removes the parent edge of id, if any. It reports whether an edge
// was removed.
func (f *Forest) Detach(id NodeID) bool {
	eid, ok := f.parentEdge[id]
	if !ok {
		return false
	}
	p := f.parent[id]
	f.removeEdge(eid)
	delete(f.parent, id)
	delete(f.parentEdge, id)
	f.children[p] = slices.DeleteFunc(f.children[p], func(c NodeID) bool { return c == id })
	if len(f.children[p]) == 0 {
		delete(f.children, p)
	}
	return true
}

// Reparent detaches id and attaches it as the last child of parent.
func (f *Forest) Reparent(id, parent NodeID) error {
	if _, ok := f.nodes[parent]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := f.nodes[id]; !ok {
		return ErrUnknownTargetNode
	}
	f.Detach(id)
	_, err := f.AddEdge(parent, id)
	return err
}

// Retype changes a node's type and resets its size to the type default.
// The record payload follows the type.
func (f *Forest) Retype(id NodeID, t NodeType) bool {
	n, ok := f.nodes[id]
	if !ok {
		return false
	}
	n.Type = t
	n.Size = t.DefaultSize()
	switch t {
	case Record:
		if n.Record == nil {
			n.Record = &RecordData{Content: n.Label}
		}
	case HighIntent, LowIntent:
		n.Record = nil
	}
	return true
}

// RemoveNode deletes id together with its edges and relation entries. Its
// children become roots.
func (f *Forest) RemoveNode(id NodeID) bool {
	if _, ok := f.nodes[id]; !ok {
		return false
	}
	f.Detach(id)
	for _, c := range slices.Clone(f.children[id]) {
		f.Detach(c)
	}
	delete(f.children, id)
	delete(f.nodes, id)
	f.order = slices.DeleteFunc(f.order, func(n NodeID) bool { return n == id })
	return true
}

// RemoveSubtree deletes id and every descendant. It returns the removed ids
// in pre-order.
func (f *Forest) RemoveSubtree(id NodeID) []NodeID {
	if _, ok := f.nodes[id]; !ok {
		return nil
	}
	ids := f.Subtree(id)
	for i := len(ids) - 1; i >= 0; i-- {
		f.RemoveNode(ids[i])
	}
	return ids
}

func (f *Forest) removeEdge(id EdgeID) {
	delete(f.edges, id)
	f.edgeOrder = slices.DeleteFunc(f.edgeOrder, func(e EdgeID) bool { return e == id })
}

// =============================================================================
// Queries
// =============================================================================

// Node returns the node with the given id. The pointer refers to the stored
// node, so modifications affect the forest.
func (f *Forest) Node(id NodeID) (*Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (f *Forest) Nodes() []*Node {
	out := make([]*Node, len(f.order))
	for i, id := range f.order {
		out[i] = f.nodes[id]
	}
	return out
}

// NodeIDs returns all node ids in insertion order.
func (f *Forest) NodeIDs() []NodeID { return slices.Clone(f.order) }

// Edge returns the edge with the given id.
func (f *Forest) Edge(id EdgeID) (Edge, bool) {
	e, ok := f.edges[id]
	return e, ok
}

// Edges returns a copy of all edges in insertion order.
func (f *Forest) Edges() []Edge {
	out := make([]Edge, len(f.edgeOrder))
	for i, id := range f.edgeOrder {
		out[i] = f.edges[id]
	}
	return out
}

// NodeCount returns the number of nodes.
func (f *Forest) NodeCount() int { return len(f.nodes) }

// EdgeCount returns the number of edges.
func (f *Forest) EdgeCount() int { return len(f.edges) }

// Parent returns the parent of id.
func (f *Forest) Parent(id NodeID) (NodeID, bool) {
	p, ok := f.parent[id]
	return p, ok
}

// ParentEdge returns the edge linking id to its parent.
func (f *Forest) ParentEdge(id NodeID) (EdgeID, bool) {
	e, ok := f.parentEdge[id]
	return e, ok
}

// Children returns a copy of id's ordered children.
func (f *Forest) Children(id NodeID) []NodeID { return slices.Clone(f.children[id]) }

// ChildCount returns the number of children of id.
func (f *Forest) ChildCount(id NodeID) int { return len(f.children[id]) }

// TypeOf returns the type of id.
func (f *Forest) TypeOf(id NodeID) (NodeType, bool) {
	n, ok := f.nodes[id]
	if !ok {
		return 0, false
	}
	return n.Type, true
}

// Roots returns parentless nodes in insertion order.
func (f *Forest) Roots() []NodeID {
	var roots []NodeID
	for _, id := range f.order {
		if _, ok := f.parent[id]; !ok {
			roots = append(roots, id)
		}
	}
	return roots
}

// Root returns the root of the tree containing id.
func (f *Forest) Root(id NodeID) NodeID {
	for {
		p, ok := f.parent[id]
		if !ok {
			return id
		}
		id = p
	}
}

// Subtree returns id followed by every transitive descendant in pre-order.
// Returns nil if id does not exist.
func (f *Forest) Subtree(id NodeID) []NodeID {
	if _, ok := f.nodes[id]; !ok {
		return nil
	}
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		out = append(out, n)
		for _, c := range f.children[n] {
			walk(c)
		}
	}
	walk(id)
	return out
}

// Descendants returns every transitive descendant of id in pre-order.
func (f *Forest) Descendants(id NodeID) []NodeID {
	sub := f.Subtree(id)
	if len(sub) == 0 {
		return nil
	}
	return sub[1:]
}

// DescendantsOfType returns the descendants of id with type t, in pre-order.
func (f *Forest) DescendantsOfType(id NodeID, t NodeType) []NodeID {
	var out []NodeID
	for _, d := range f.Descendants(id) {
		if f.nodes[d].Type == t {
			out = append(out, d)
		}
	}
	return out
}

// IsAncestor reports whether a is a proper ancestor of b.
func (f *Forest) IsAncestor(a, b NodeID) bool {
	for {
		p, ok := f.parent[b]
		if !ok {
			return false
		}
		if p == a {
			return true
		}
		b = p
	}
}

// EdgeConfirmed reports whether both endpoints of e are confirmed.
func (f *Forest) EdgeConfirmed(e Edge) bool {
	from, okF := f.nodes[e.From]
	to, okT := f.nodes[e.To]
	return okF && okT && from.Confirmed && to.Confirmed
}

// FindByLabel returns the first node in insertion order carrying label.
func (f *Forest) FindByLabel(label string) (*Node, bool) {
	for _, id := range f.order {
		if n := f.nodes[id]; n.Label == label {
			return n, true
		}
	}
	return nil, false
}

// =============================================================================
// Snapshots
// =============================================================================

// Clone returns a deep copy with the same id counters.
func (f *Forest) Clone() *Forest {
	c := &Forest{
		Scenario:   f.Scenario,
		nodes:      make(map[NodeID]*Node, len(f.nodes)),
		order:      slices.Clone(f.order),
		edges:      make(map[EdgeID]Edge, len(f.edges)),
		edgeOrder:  slices.Clone(f.edgeOrder),
		parent:     make(map[NodeID]NodeID, len(f.parent)),
		parentEdge: make(map[NodeID]EdgeID, len(f.parentEdge)),
		children:   make(map[NodeID][]NodeID, len(f.children)),
		nextNode:   f.nextNode,
		nextEdge:   f.nextEdge,
	}
	for id, n := range f.nodes {
		c.nodes[id] = n.clone()
	}
	for id, e := range f.edges {
		c.edges[id] = e
	}
	for id, p := range f.parent {
		c.parent[id] = p
	}
	for id, e := range f.parentEdge {
		c.parentEdge[id] = e
	}
	for id, ch := range f.children {
		c.children[id] = slices.Clone(ch)
	}
	return c
}

// Equal reports whether f and o hold the same full state: nodes with every
// attribute, edges, child order, insertion order and id counters.
func (f *Forest) Equal(o *Forest) bool {
	if f.Scenario != o.Scenario || f.nextNode != o.nextNode || f.nextEdge != o.nextEdge {
		return false
	}
	if !slices.Equal(f.order, o.order) || !slices.Equal(f.edgeOrder, o.edgeOrder) {
		return false
	}
	for _, id := range f.order {
		if !f.nodes[id].equal(o.nodes[id]) {
			return false
		}
		if !slices.Equal(f.children[id], o.children[id]) {
			return false
		}
	}
	for _, id := range f.edgeOrder {
		if f.edges[id] != o.edges[id] {
			return false
		}
	}
	return true
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the forest invariants and returns nil if they hold:
//
//  1. Every edge endpoint exists and the relation maps match the edges
//  2. The graph is acyclic
//  3. Records have no children
//  4. A HighIntent has no parent
//  5. A LowIntent's parent is a HighIntent and a Record's parent is an intent
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (f *Forest) Validate() error {
	if err := f.validateEdgeConsistency(); err != nil {
		return err
	}
	if err := f.detectCycles(); err != nil {
		return err
	}
	return f.validateTypes()
}

func (f *Forest) validateEdgeConsistency() error {
	if len(f.edges) != len(f.parent) {
		return ErrIndexMismatch
	}
	for _, id := range f.edgeOrder {
		e := f.edges[id]
		if _, ok := f.nodes[e.From]; !ok {
			return fmt.Errorf("edge %d: %w", id, ErrInvalidEdgeEndpoint)
		}
		if _, ok := f.nodes[e.To]; !ok {
			return fmt.Errorf("edge %d: %w", id, ErrInvalidEdgeEndpoint)
		}
		if f.parent[e.To] != e.From || f.parentEdge[e.To] != id {
			return fmt.Errorf("edge %d: %w", id, ErrIndexMismatch)
		}
		if !slices.Contains(f.children[e.From], e.To) {
			return fmt.Errorf("edge %d: %w", id, ErrIndexMismatch)
		}
	}
	return nil
}

func (f *Forest) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int, len(f.nodes))
	var hasCycle bool

	var dfs func(id NodeID)
	dfs = func(id NodeID) {
		color[id] = gray
		for _, child := range f.children[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range f.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

func (f *Forest) validateTypes() error {
	for _, id := range f.order {
		n := f.nodes[id]
		if (n.Type == Record) != (n.Record != nil) {
			return fmt.Errorf("node %d: %w", id, ErrRecordData)
		}
		p, hasParent := f.parent[id]
		switch n.Type {
		case HighIntent:
			if hasParent {
				return fmt.Errorf("node %d: %w", id, ErrHighIntentHasParent)
			}
		case LowIntent:
			if !hasParent {
				return fmt.Errorf("node %d: %w", id, ErrOrphan)
			}
			if f.nodes[p].Type != HighIntent {
				return fmt.Errorf("node %d: %w", id, ErrBadParentType)
			}
		case Record:
			if len(f.children[id]) > 0 {
				return fmt.Errorf("node %d: %w", id, ErrRecordHasChildren)
			}
			if !hasParent {
				return fmt.Errorf("node %d: %w", id, ErrOrphan)
			}
			if !f.nodes[p].Type.IsIntent() {
				return fmt.Errorf("node %d: %w", id, ErrBadParentType)
			}
		}
	}
	return nil
}
