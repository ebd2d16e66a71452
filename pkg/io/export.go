package io

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// Serialize converts a forest back into the canonical intent tree.
//
// Roots are emitted in insertion order as top-level items keyed by label.
// When two roots share a label the later one is keyed "label#id"; its intent
// field still carries the real label. Intents emit their confirmed flag as
// immutable; records emit immutable only when confirmed.
//
// Serialize is the inverse of [BuildGraph] up to isomorphism: building the
// serialized tree again yields the same labels, confirmed flags, record
// payloads and shape (see [Isomorphic]).
func Serialize(f *forest.Forest) *tree.Tree {
	t := &tree.Tree{Scenario: f.Scenario}
	used := make(map[string]bool)
	for _, id := range f.Roots() {
		n, _ := f.Node(id)
		key := n.Label
		switch {
		case tree.IsReserved(key):
			key = fmt.Sprintf("intent#%d", n.ID)
		case used[key]:
			key = fmt.Sprintf("%s#%d", n.Label, n.ID)
		}
		used[key] = true
		t.Items = append(t.Items, tree.Item{Name: key, Entry: entryFor(f, n)})
	}
	return t
}

func entryFor(f *forest.Forest, n *forest.Node) tree.Entry {
	id := tree.Flex(strconv.Itoa(int(n.ID)))
	switch n.Type {
	case forest.Record:
		e := tree.Entry{ID: id, IsLeafNode: true, Immutable: n.Confirmed}
		if n.Record != nil {
			e.Content = n.Record.Content
			e.Comment = n.Record.Comment
			e.Context = n.Record.Context
			e.Timestamp = tree.Flex(n.Record.Timestamp)
		}
		if e.Content == "" {
			e.Content = n.Label
		}
		return e
	case forest.HighIntent, forest.LowIntent:
		children := f.Children(n.ID)
		e := tree.Entry{
			ID:          id,
			Intent:      n.Label,
			Description: n.Description,
			Immutable:   n.Confirmed,
			ChildNum:    len(children),
			Priority:    tree.Flex(n.Priority),
		}
		for _, c := range children {
			cn, _ := f.Node(c)
			e.Child = append(e.Child, entryFor(f, cn))
		}
		return e
	}
	return tree.Entry{ID: id}
}

// WriteTree serializes f and writes it as indented JSON to path.
func WriteTree(f *forest.Forest, path string) error {
	return tree.WriteFile(Serialize(f), path)
}

// Isomorphic reports whether a and b have the same shape: roots in the same
// order, and per node the same type, label, confirmed flag, record payload
// and ordered children. Ids and positions are ignored.
func Isomorphic(a, b *forest.Forest) bool {
	ra, rb := a.Roots(), b.Roots()
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if !sameSubtree(a, b, ra[i], rb[i]) {
			return false
		}
	}
	return true
}

func sameSubtree(a, b *forest.Forest, x, y forest.NodeID) bool {
	nx, _ := a.Node(x)
	ny, _ := b.Node(y)
	if nx.Type != ny.Type || nx.Label != ny.Label || nx.Confirmed != ny.Confirmed {
		return false
	}
	if (nx.Record == nil) != (ny.Record == nil) {
		return false
	}
	if nx.Record != nil && *nx.Record != *ny.Record {
		return false
	}
	cx, cy := a.Children(x), b.Children(y)
	if len(cx) != len(cy) {
		return false
	}
	for i := range cx {
		if !sameSubtree(a, b, cx[i], cy[i]) {
			return false
		}
	}
	return true
}
