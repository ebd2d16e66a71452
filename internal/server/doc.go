// Package server exposes a [session.Session] over HTTP for a rendering
// front-end.
//
// All routes live under /api/v1 and speak JSON. Graphs are returned in the
// [graph] wire format together with the version they were read at, so a
// client can tell whether its copy is stale after a drag or a failed save.
//
// Errors carry the machine-readable code from pkg/errors:
//
//	{"error": "operation not allowed: merge of record onto record", "code": "UNSUPPORTED_MERGE_OPERATION"}
//
// Structural rejections map to 4xx, collaborator failures to 502/503.
package server
