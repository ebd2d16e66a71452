// Package tree provides the persisted intent-tree document and its JSON codec.
//
// # Overview
//
// The intent tree is the canonical persisted form of a user's organization of
// records. It is a nested document keyed by intent name:
//
//	{
//	  "scenario": "trip planning",
//	  "item": {
//	    "Travel": {
//	      "id": 1,
//	      "intent": "Travel",
//	      "immutable": true,
//	      "child": [
//	        {"intent": "Barcelona", "child": [{"content": "see Gaudí works", "isLeafNode": true}]}
//	      ]
//	    },
//	    "Spain tips": {"group": ["visit Toledo"]}
//	  }
//	}
//
// Item order is meaningful: the graph builder walks items in source order, so
// [Parse] decodes the "item" object with a streaming decoder and keeps the
// keys in the order they appear. [Tree.MarshalJSON] writes them back in the
// same order.
//
// # Entries
//
// [Entry] is the union of every shape the document carries. An entry "carries
// an intent" when its intent field is non-empty ([Entry.CarriesIntent]);
// everything else is a record. A bare JSON string inside child or group is a
// record whose content is that string.
//
// The fields id, parent, level and timestamp accept either a JSON string or a
// JSON number. They are held as [Flex] strings.
//
// # Reserved Names
//
// Item names starting with [ReservedPrefix] are bookkeeping slots written by
// other tools and are skipped by the graph builder.
//
// # Errors
//
// Decoding failures are reported with code INVALID_TREE_STRUCTURE from
// pkg/errors. A document without a top-level "item" object is rejected.
package tree
