package forest

import (
	"errors"
	"reflect"
	"testing"
)

// travel builds Travel → Barcelona → "see Gaudí works" plus Spain tips → "visit Toledo".
func travel() (*Forest, map[string]NodeID) {
	f := New("trip")
	ids := map[string]NodeID{}
	add := func(key string, n Node) NodeID {
		id := f.AddNode(n).ID
		ids[key] = id
		return id
	}
	t := add("travel", Node{Type: HighIntent, Label: "Travel"})
	b := add("barcelona", Node{Type: LowIntent, Label: "Barcelona"})
	g := add("gaudi", Node{Type: Record, Label: "see Gaudí works", Record: &RecordData{Content: "see Gaudí works"}})
	s := add("spain", Node{Type: HighIntent, Label: "Spain tips"})
	r := add("toledo", Node{Type: Record, Label: "visit Toledo", Record: &RecordData{Content: "visit Toledo"}})
	mustEdge(f, t, b)
	mustEdge(f, b, g)
	mustEdge(f, s, r)
	return f, ids
}

func mustEdge(f *Forest, from, to NodeID) {
	if _, err := f.AddEdge(from, to); err != nil {
		panic(err)
	}
}

func TestAddNodeDefaults(t *testing.T) {
	f := New("")
	tests := []struct {
		typ  NodeType
		size float64
	}{
		{HighIntent, 60},
		{LowIntent, 44},
		{Record, 28},
	}
	for i, tt := range tests {
		n := f.AddNode(Node{Type: tt.typ})
		if n.ID != NodeID(i+1) {
			t.Errorf("ID = %d, want %d", n.ID, i+1)
		}
		if n.Size != tt.size {
			t.Errorf("%v Size = %v, want %v", tt.typ, n.Size, tt.size)
		}
		if n.Radius() != tt.size/2 {
			t.Errorf("%v Radius = %v, want %v", tt.typ, n.Radius(), tt.size/2)
		}
		if n.Opacity != 1 {
			t.Errorf("Opacity = %v, want 1", n.Opacity)
		}
		if (n.Record != nil) != (tt.typ == Record) {
			t.Errorf("%v Record payload = %v", tt.typ, n.Record)
		}
	}
}

func TestNodeTypeString(t *testing.T) {
	for _, typ := range NodeTypes {
		parsed, err := ParseNodeType(typ.String())
		if err != nil {
			t.Fatalf("ParseNodeType(%q): %v", typ.String(), err)
		}
		if parsed != typ {
			t.Errorf("ParseNodeType(%q) = %v, want %v", typ.String(), parsed, typ)
		}
	}
	if _, err := ParseNodeType("intent"); err == nil {
		t.Error("ParseNodeType(intent) error = nil, want error")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	f, ids := travel()
	tests := []struct {
		name     string
		from, to NodeID
		want     error
	}{
		{"unknown source", 99, ids["gaudi"], ErrUnknownSourceNode},
		{"unknown target", ids["travel"], 99, ErrUnknownTargetNode},
		{"self", ids["travel"], ids["travel"], ErrSelfEdge},
		{"second parent", ids["spain"], ids["barcelona"], ErrHasParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.AddEdge(tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRelations(t *testing.T) {
	f, ids := travel()

	if p, ok := f.Parent(ids["gaudi"]); !ok || p != ids["barcelona"] {
		t.Errorf("Parent(gaudi) = %v, %v, want %v", p, ok, ids["barcelona"])
	}
	if _, ok := f.Parent(ids["travel"]); ok {
		t.Error("Parent(travel) ok = true, want false")
	}
	if got := f.Roots(); !reflect.DeepEqual(got, []NodeID{ids["travel"], ids["spain"]}) {
		t.Errorf("Roots() = %v", got)
	}
	if got := f.Subtree(ids["travel"]); !reflect.DeepEqual(got, []NodeID{ids["travel"], ids["barcelona"], ids["gaudi"]}) {
		t.Errorf("Subtree(travel) = %v", got)
	}
	if !f.IsAncestor(ids["travel"], ids["gaudi"]) {
		t.Error("IsAncestor(travel, gaudi) = false, want true")
	}
	if f.IsAncestor(ids["gaudi"], ids["travel"]) {
		t.Error("IsAncestor(gaudi, travel) = true, want false")
	}
	if got := f.Root(ids["gaudi"]); got != ids["travel"] {
		t.Errorf("Root(gaudi) = %v, want %v", got, ids["travel"])
	}
	if typ, _ := f.TypeOf(ids["barcelona"]); typ != LowIntent {
		t.Errorf("TypeOf(barcelona) = %v, want %v", typ, LowIntent)
	}
	if got := f.DescendantsOfType(ids["travel"], Record); !reflect.DeepEqual(got, []NodeID{ids["gaudi"]}) {
		t.Errorf("DescendantsOfType = %v", got)
	}
}

func TestRemoveNode(t *testing.T) {
	f, ids := travel()
	f.RemoveNode(ids["barcelona"])

	if _, ok := f.Node(ids["barcelona"]); ok {
		t.Error("barcelona still present")
	}
	if f.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", f.EdgeCount())
	}
	if _, ok := f.Parent(ids["gaudi"]); ok {
		t.Error("gaudi still has a parent")
	}
	if f.ChildCount(ids["travel"]) != 0 {
		t.Errorf("ChildCount(travel) = %d, want 0", f.ChildCount(ids["travel"]))
	}
	// gaudi is now an orphan record
	if err := f.Validate(); !errors.Is(err, ErrOrphan) {
		t.Errorf("Validate() = %v, want %v", err, ErrOrphan)
	}
}

func TestRemoveSubtree(t *testing.T) {
	f, ids := travel()
	removed := f.RemoveSubtree(ids["travel"])
	if len(removed) != 3 {
		t.Errorf("removed = %v, want 3 ids", removed)
	}
	if f.NodeCount() != 2 || f.EdgeCount() != 1 {
		t.Errorf("counts = %d nodes, %d edges, want 2, 1", f.NodeCount(), f.EdgeCount())
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Forest, ids map[string]NodeID)
		want   error
	}{
		{"valid", func(*Forest, map[string]NodeID) {}, nil},
		{"record with child", func(f *Forest, ids map[string]NodeID) {
			r := f.AddNode(Node{Type: Record, Label: "x"}).ID
			mustEdge(f, ids["gaudi"], r)
		}, ErrRecordHasChildren},
		{"high intent with parent", func(f *Forest, ids map[string]NodeID) {
			mustEdge(f, ids["travel"], ids["spain"])
		}, ErrHighIntentHasParent},
		{"low under low", func(f *Forest, ids map[string]NodeID) {
			l := f.AddNode(Node{Type: LowIntent, Label: "nested"}).ID
			mustEdge(f, ids["barcelona"], l)
		}, ErrBadParentType},
		{"orphan low", func(f *Forest, ids map[string]NodeID) {
			f.Detach(ids["barcelona"])
		}, ErrOrphan},
		{"cycle", func(f *Forest, ids map[string]NodeID) {
			a := f.AddNode(Node{Type: LowIntent, Label: "a"}).ID
			b := f.AddNode(Node{Type: LowIntent, Label: "b"}).ID
			mustEdge(f, a, b)
			mustEdge(f, b, a)
		}, ErrGraphHasCycle},
		{"record payload on intent", func(f *Forest, ids map[string]NodeID) {
			n, _ := f.Node(ids["travel"])
			n.Record = &RecordData{}
		}, ErrRecordData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ids := travel()
			tt.mutate(f, ids)
			if err := f.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	f, ids := travel()
	c := f.Clone()
	if !f.Equal(c) {
		t.Fatal("clone not Equal to original")
	}

	n, _ := c.Node(ids["gaudi"])
	n.Record.Content = "changed"
	n.Position = Point{X: 5}
	if err := c.Reparent(ids["gaudi"], ids["spain"]); err != nil {
		t.Fatalf("Reparent: %v", err)
	}

	orig, _ := f.Node(ids["gaudi"])
	if orig.Record.Content != "see Gaudí works" || orig.Position != (Point{}) {
		t.Error("mutating clone changed original node")
	}
	if p, _ := f.Parent(ids["gaudi"]); p != ids["barcelona"] {
		t.Error("mutating clone changed original relations")
	}
	if f.Equal(c) {
		t.Error("Equal() = true after divergence")
	}
}

func TestRetype(t *testing.T) {
	f, ids := travel()
	f.Retype(ids["spain"], LowIntent)
	n, _ := f.Node(ids["spain"])
	if n.Type != LowIntent || n.Size != SizeLowIntent {
		t.Errorf("Retype: type %v size %v", n.Type, n.Size)
	}
}

func TestEdgeConfirmed(t *testing.T) {
	f, ids := travel()
	tn, _ := f.Node(ids["travel"])
	bn, _ := f.Node(ids["barcelona"])
	eid, _ := f.ParentEdge(ids["barcelona"])
	e, _ := f.Edge(eid)

	if f.EdgeConfirmed(e) {
		t.Error("EdgeConfirmed = true with no confirmed endpoints")
	}
	tn.Confirmed = true
	if f.EdgeConfirmed(e) {
		t.Error("EdgeConfirmed = true with one confirmed endpoint")
	}
	bn.Confirmed = true
	if !f.EdgeConfirmed(e) {
		t.Error("EdgeConfirmed = false with both endpoints confirmed")
	}
}

func TestConfirmedLabels(t *testing.T) {
	f, ids := travel()
	n, _ := f.Node(ids["spain"])
	n.Confirmed = true
	r, _ := f.Node(ids["toledo"])
	r.Confirmed = true

	got := f.ConfirmedLabels()
	if !reflect.DeepEqual(got.Labels(), []string{"Spain tips"}) {
		t.Errorf("ConfirmedLabels() = %v, want [Spain tips]", got.Labels())
	}
	if LabelSet(nil).Has("x") {
		t.Error("nil LabelSet Has = true")
	}
}

func TestPointDistance(t *testing.T) {
	p := Point{X: 0, Y: 0}
	q := Point{X: 3, Y: 4}
	if d := p.DistanceTo(q); d != 5 {
		t.Errorf("DistanceTo = %v, want 5", d)
	}
	if got := q.Sub(p).Add(q); got != (Point{X: 6, Y: 8}) {
		t.Errorf("Sub/Add = %v", got)
	}
}
