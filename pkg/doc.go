// Package pkg provides the core libraries for intentgraph, an editable
// three-tier intent graph.
//
// # Overview
//
// An intent tree groups raw records under low-level intents, and those under
// high-level intents. intentgraph turns such a tree into a forest of typed
// nodes, lays it out, lets users reorganize it by dragging nodes onto one
// another, and writes the result back as a tree.
//
// The typical data flow:
//
//	intent tree (JSON)
//	         ↓
//	[io.BuildGraph] → [forest.Forest]
//	         ↓
//	[layout.Compute] → positions
//	         ↓
//	[drag.Session] → [reorg.Pending] → [reorg.Apply]
//	         ↓
//	[io.Serialize] → intent tree → [store.Gateway]
//
// # Packages
//
// Domain logic lives under core: [core/forest] holds the node and edge
// model, [core/layout] the tiered placement, [core/drag] collision detection
// and [core/reorg] the reorganization table. [io] converts between trees
// and forests, [graph] is the JSON wire format for clients and
// [render/nodelink] draws DOT and SVG.
//
// [session] serializes edits against one published forest and persists each
// change through [store], which supports memory, file, SQLite, Redis and
// MongoDB backends. [extract] talks to the external extraction service.
// [config], [errors], [observability] and [buildinfo] are shared plumbing.
//
// [core/forest]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/forest
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/layout
// [core/drag]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/drag
// [core/reorg]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/reorg
// [io]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/io
// [graph]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/render/nodelink
// [session]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/session
// [store]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/store
// [extract]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/extract
// [config]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/buildinfo
//
// [io.BuildGraph]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/io#BuildGraph
// [io.Serialize]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/io#Serialize
// [forest.Forest]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/forest#Forest
// [layout.Compute]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/layout#Compute
// [drag.Session]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/drag#Session
// [reorg.Pending]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/reorg#Pending
// [reorg.Apply]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/core/reorg#Apply
// [store.Gateway]: https://pkg.go.dev/github.com/matzehuels/intentgraph/pkg/store#Gateway
package pkg
