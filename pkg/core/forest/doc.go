// Package forest provides the intent graph state: a three-tier forest of
// HighIntent, LowIntent and Record nodes.
//
// # Overview
//
// A [Forest] holds three tables:
//
//   - NodeTable: [NodeID] → [Node] (type, label, confirmed flag, position, size)
//   - EdgeTable: [EdgeID] → [Edge] (parent → child)
//   - RelationMaps: [Forest.Parent], [Forest.Children] (ordered) and
//     [Forest.TypeOf]
//
// Ids are allocated sequentially from 1 per forest. They are not stable
// across rebuilds; labels are the only identity that survives a rebuild,
// which is why confirmation is re-attached through a [LabelSet].
//
// # Node Types
//
// [NodeType] is a closed enum. Its tier index doubles as the layout tier:
//
//	HighIntent  tier 0, diameter 60
//	LowIntent   tier 1, diameter 44
//	Record      tier 2, diameter 28
//
// # Invariants
//
// [Forest.Validate] checks the invariants every mutation must preserve:
//
//  1. No cycles, and each non-root node has exactly one parent
//  2. Records have no children
//  3. A HighIntent has no parent
//  4. Every edge endpoint exists
//  5. A LowIntent's parent is a HighIntent
//
// Removing a node removes its edges and relation entries. Confirmation is a
// per-node flag and is never inferred from descendants; an edge is
// confirmed when both endpoints are ([Forest.EdgeConfirmed]).
//
// # Snapshots
//
// [Forest.Clone] returns a deep copy with the same id counters. Callers that
// mutate optimistically keep a clone and swap it back on failure;
// [Forest.Equal] compares the full state for tests and assertions.
//
// # Concurrency
//
// Forest is not safe for concurrent use. The editing session serializes
// access and hands readers clones.
package forest
