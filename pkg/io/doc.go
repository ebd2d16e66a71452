// Package io converts between the persisted intent tree and the in-memory
// intent forest.
//
// # Overview
//
// Two functions form the boundary between storage and the engine:
//
//   - [BuildGraph]: tree.Tree → forest.Forest (the graph builder)
//   - [Serialize]: forest.Forest → tree.Tree (the tree serializer)
//
// Together they round-trip: BuildGraph(Serialize(BuildGraph(T))) is
// isomorphic to BuildGraph(T). [Isomorphic] checks this property and is used
// by tests and by the CLI's validate command.
//
// # Build Phases
//
// Items are processed twice. The first pass creates HighIntents for level
// "1" items (the default level); the second pass creates LowIntents for level
// "2" items and resolves their parent by id, then by name. Running the high
// pass first means a low item may appear before its parent in the document.
//
//	{
//	  "item": {
//	    "Food":   {"level": "2", "parent": "7", "group": ["tapas"]},
//	    "Travel": {"id": 7, "child": ["visit Toledo"]}
//	  }
//	}
//
// builds Travel → {visit Toledo, Food → tapas}.
//
// # Confirmation Continuity
//
// Node ids are not stable across rebuilds. Confirmation is carried by label:
// BuildGraph takes the labels confirmed in the previous forest
// ([forest.Forest.ConfirmedLabels]) and re-confirms any node whose label
// matches, in addition to nodes whose entry is immutable.
//
// # Serialized Shape
//
// Serialize emits one item per root, keyed by label. A duplicate label is
// keyed "label#id". Intents carry intent, immutable, child and child_num;
// records carry content, comment, context, timestamp, isLeafNode: true, and
// immutable only when confirmed.
//
// # Files
//
// [ReadTree] and [WriteTree] wrap the above for tree files on disk.
package io
