// Package graph provides the wire format for intent forests and layouts.
//
// The engine works on pkg/core/forest; this package is the serialization
// boundary used by the HTTP API and the CLI's JSON output:
//
//   - [Graph]: every node with its display state, plus parent→child edges
//   - [Layout]: node centers for one orientation and viewport
//
// Output is ordered by id, so the same forest always serializes to the same
// bytes:
//
//	{
//	  "scenario": "trip",
//	  "nodes": [
//	    {"id": 1, "type": "high-intent", "label": "Travel", "confirmed": false, ...},
//	    {"id": 2, "type": "record", "label": "visit Toledo", "parent": 1, ...}
//	  ],
//	  "edges": [{"id": 1, "from": 1, "to": 2, "confirmed": false}]
//	}
//
// Use [FromForest] and [FromPositions] to convert engine values.
package graph
