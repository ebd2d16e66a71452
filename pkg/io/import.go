package io

import (
	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// BuildGraph converts an intent tree into a validated forest.
//
// The build runs in two phases so that parent references resolve regardless
// of item order:
//
//  1. High pass: every item at level "1" (the default) becomes a HighIntent
//     labeled with its intent field, or its item name when that is empty.
//     The item's id and name are recorded for parent lookup.
//  2. Low pass: every item at level "2" resolves its parent through the id
//     map, falling back to the name map, and becomes a LowIntent under it.
//     An item whose parent cannot be resolved is promoted to a HighIntent so
//     its records are not lost.
//
// After each intent node is created its child and group members are
// expanded: child members carrying an intent become LowIntents under a
// HighIntent, or flatten into records under a LowIntent; everything else
// becomes a Record.
//
// A node is confirmed when its entry is immutable or its label is in prior.
// Items with a reserved name are skipped.
//
// BuildGraph returns an INVALID_TREE_STRUCTURE error for a nil tree, an
// unknown level or an item without a label, and INVARIANT_VIOLATION if the result fails validation.
func BuildGraph(t *tree.Tree, prior forest.LabelSet) (*forest.Forest, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "tree is nil")
	}
	for _, it := range t.Items {
		if tree.IsReserved(it.Name) {
			continue
		}
		if lvl := it.Entry.Level(); lvl != tree.LevelHigh && lvl != tree.LevelLow {
			return nil, errors.New(errors.ErrCodeInvalidTree, "item %q: unknown level %q", it.Name, lvl)
		}
		if labelOf(it.Entry, it.Name) == "" {
			return nil, errors.New(errors.ErrCodeInvalidTree, "item with id %q has neither a name nor an intent", it.Entry.ID)
		}
	}

	b := &builder{
		f:      forest.New(t.Scenario),
		prior:  prior,
		byID:   make(map[string]forest.NodeID),
		byName: make(map[string]forest.NodeID),
	}

	for _, it := range t.Items {
		if tree.IsReserved(it.Name) || it.Entry.Level() != tree.LevelHigh {
			continue
		}
		b.addTop(it)
	}

	for _, it := range t.Items {
		if tree.IsReserved(it.Name) || it.Entry.Level() != tree.LevelLow {
			continue
		}
		parent, ok := b.resolve(it.Entry.Parent)
		if !ok {
			b.addTop(it)
			continue
		}
		n := b.intent(forest.LowIntent, labelOf(it.Entry, it.Name), it.Entry)
		b.link(parent, n.ID)
		b.expand(n, it.Entry)
	}

	if err := b.f.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvariantViolation, err, "built graph is invalid")
	}
	return b.f, nil
}

type builder struct {
	f      *forest.Forest
	prior  forest.LabelSet
	byID   map[string]forest.NodeID
	byName map[string]forest.NodeID
}

func (b *builder) addTop(it tree.Item) {
	n := b.intent(forest.HighIntent, labelOf(it.Entry, it.Name), it.Entry)
	if it.Entry.ID != "" {
		if _, dup := b.byID[string(it.Entry.ID)]; !dup {
			b.byID[string(it.Entry.ID)] = n.ID
		}
	}
	if _, dup := b.byName[it.Name]; !dup {
		b.byName[it.Name] = n.ID
	}
	b.expand(n, it.Entry)
}

func (b *builder) resolve(ref tree.Flex) (forest.NodeID, bool) {
	if ref == "" {
		return 0, false
	}
	if id, ok := b.byID[string(ref)]; ok {
		return id, true
	}
	id, ok := b.byName[string(ref)]
	return id, ok
}

func (b *builder) intent(t forest.NodeType, label string, e tree.Entry) *forest.Node {
	return b.f.AddNode(forest.Node{
		Type:        t,
		Label:       label,
		Confirmed:   e.Immutable || b.prior.Has(label),
		Description: e.Description,
		Priority:    string(e.Priority),
	})
}

func (b *builder) record(parent forest.NodeID, e tree.Entry) {
	label := e.Content
	if label == "" {
		label = e.Intent
	}
	n := b.f.AddNode(forest.Node{
		Type:      forest.Record,
		Label:     label,
		Confirmed: e.Immutable || b.prior.Has(label),
		Record: &forest.RecordData{
			Content:   label,
			Comment:   e.Comment,
			Context:   e.Context,
			Timestamp: string(e.Timestamp),
		},
	})
	b.link(parent, n.ID)
}

// expand is the leaf pass for one intent node.
func (b *builder) expand(n *forest.Node, e tree.Entry) {
	for _, c := range e.Child {
		switch {
		case !c.CarriesIntent():
			b.record(n.ID, c)
		case n.Type == forest.HighIntent:
			low := b.intent(forest.LowIntent, c.Intent, c)
			b.link(n.ID, low.ID)
			b.expand(low, c)
		default:
			b.flatten(n.ID, c)
		}
	}
	for _, g := range e.Group {
		b.record(n.ID, g)
	}
}

// flatten attaches every record below e directly to parent. The hierarchy
// is capped at three tiers.
func (b *builder) flatten(parent forest.NodeID, e tree.Entry) {
	for _, c := range e.Child {
		if c.CarriesIntent() {
			b.flatten(parent, c)
			continue
		}
		b.record(parent, c)
	}
	for _, g := range e.Group {
		b.record(parent, g)
	}
}

func (b *builder) link(parent, child forest.NodeID) {
	// child is always freshly created, so AddEdge cannot fail.
	_, _ = b.f.AddEdge(parent, child)
}

func labelOf(e tree.Entry, name string) string {
	if e.Intent != "" {
		return e.Intent
	}
	return name
}

// ReadTree builds a forest from a tree file.
func ReadTree(path string, prior forest.LabelSet) (*forest.Forest, error) {
	t, err := tree.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return BuildGraph(t, prior)
}
